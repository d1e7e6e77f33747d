package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RiskLimit holds a user's configured loss caps and rolling current-period
// losses. A nil limit means unset (no constraint). Each current loss bucket
// only accumulates losses since the corresponding last reset date; rollover
// happens before any loss is added for a new period.
type RiskLimit struct {
	UserID uint64 `gorm:"primaryKey"`

	DailyLimit   *decimal.Decimal `gorm:"type:numeric(30,10)"`
	WeeklyLimit  *decimal.Decimal `gorm:"type:numeric(30,10)"`
	MonthlyLimit *decimal.Decimal `gorm:"type:numeric(30,10)"`

	CurrentDailyLoss   decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	CurrentWeeklyLoss  decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	CurrentMonthlyLoss decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	LastResetDaily   time.Time `gorm:"type:date;not null"`
	LastResetWeekly  time.Time `gorm:"type:date;not null"`
	LastResetMonthly time.Time `gorm:"type:date;not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (RiskLimit) TableName() string {
	return "risk_limits"
}
