package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ReviewOpen      = "open"
	ReviewConfirmed = "confirmed"
	ReviewDismissed = "dismissed"
)

// SettlementReview surfaces a heuristically matched bet/game pair for
// manual confirmation. Fuzzy matches are never settled automatically.
type SettlementReview struct {
	ID     uint64    `gorm:"primaryKey;autoIncrement"`
	BetID  uuid.UUID `gorm:"type:uuid;not null;index"`
	GameID string    `gorm:"type:varchar(100);not null"`

	MatchScore int    `gorm:"not null"`
	Status     string `gorm:"type:varchar(20);not null;index;default:'open'"`

	// Details records what matched (team strings, score breakdown).
	Details datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (SettlementReview) TableName() string {
	return "settlement_reviews"
}
