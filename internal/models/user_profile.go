package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserProfile carries the bankroll ledger and aggregate performance counters.
// Statistics are mutated only by settlement; the balance additionally by
// deposit/withdrawal transactions and stake deduction at placement.
type UserProfile struct {
	UserID uint64 `gorm:"primaryKey"`

	Bankroll         decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	BaselineBankroll decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	TotalBetsPlaced int `gorm:"not null"`
	TotalBetsWon    int `gorm:"not null"`
	TotalBetsLost   int `gorm:"not null"`
	TotalBetsPushed int `gorm:"not null"`

	WinRate     float64         `gorm:"not null"`
	ROI         float64         `gorm:"not null"`
	TotalProfit decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	// CurrentStreak is positive for consecutive wins, negative for
	// consecutive losses. Pushes leave it unchanged.
	CurrentStreak  int             `gorm:"not null"`
	AverageBetSize decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	LargestWin     decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	// LargestLoss is stored as a positive magnitude.
	LargestLoss decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	PendingBetCount  int             `gorm:"not null"`
	PendingBetAmount decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	CoolOffEnd      *time.Time `gorm:"type:timestamptz"`
	KellyMultiplier float64    `gorm:"not null;default:0.25"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// CoolingOff reports whether a cool-off period is active at now.
func (p *UserProfile) CoolingOff(now time.Time) bool {
	return p != nil && p.CoolOffEnd != nil && p.CoolOffEnd.After(now)
}
