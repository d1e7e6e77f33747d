package models

import (
	"time"

	"gorm.io/datatypes"
)

// AlertPreference controls which candidate alerts reach a user and at what
// volume. Quiet hours are minutes-of-day and may wrap past midnight
// (start > end means the quiet interval spans the day boundary).
type AlertPreference struct {
	UserID uint64 `gorm:"primaryKey"`

	PositiveEVAlerts  bool `gorm:"not null;default:true"`
	LineMoveAlerts    bool `gorm:"not null;default:true"`
	SteamAlerts       bool `gorm:"not null;default:false"`
	InjuryAlerts      bool `gorm:"not null;default:true"`
	ClosingLineAlerts bool `gorm:"not null;default:false"`

	MinEdgePct       float64 `gorm:"not null"`
	MinLineMovePts   float64 `gorm:"not null"`
	MinSteamVelocity float64 `gorm:"not null"`

	// JSON string arrays, e.g. ["NBA"] and ["Lakers","Celtics"].
	FavoriteSports datatypes.JSON `gorm:"type:jsonb"`
	FavoriteTeams  datatypes.JSON `gorm:"type:jsonb"`

	QuietHoursStart *int `gorm:""`
	QuietHoursEnd   *int `gorm:""`

	MaxAlertsPerDay int `gorm:"not null;default:10"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (AlertPreference) TableName() string {
	return "alert_preferences"
}
