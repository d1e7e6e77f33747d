package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a delivered alert row consumed by the downstream
// delivery/push layer. Rows are written in per-user bulk batches.
type Notification struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uint64    `gorm:"not null;index:idx_notifications_user_created"`

	AlertType string  `gorm:"type:varchar(40);not null"`
	Priority  string  `gorm:"type:varchar(20);not null"`
	Title     string  `gorm:"type:varchar(200);not null"`
	Message   string  `gorm:"type:text"`
	GameID    *string `gorm:"type:varchar(100)"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index:idx_notifications_user_created"`
}

func (Notification) TableName() string {
	return "notifications"
}
