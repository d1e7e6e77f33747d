package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OutcomePending = "pending"
	OutcomeWin     = "win"
	OutcomeLoss    = "loss"
	OutcomePush    = "push"
)

// Bet is a single wager. It is mutated exactly once: pending -> terminal.
// SettledAt and ActualReturn are set iff Outcome != pending.
type Bet struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uint64    `gorm:"not null;index"`

	Amount decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	// Odds is a signed American-odds integer (never zero).
	Odds int `gorm:"not null"`

	Outcome     string  `gorm:"type:varchar(20);not null;index;default:'pending'"`
	Description string  `gorm:"type:text"`
	TeamBetOn   *string `gorm:"type:varchar(100)"`
	GameID      *string `gorm:"type:varchar(100);index"`

	PotentialReturn *decimal.Decimal `gorm:"type:numeric(30,10)"`
	ActualReturn    *decimal.Decimal `gorm:"type:numeric(30,10)"`

	CreatedAt time.Time  `gorm:"type:timestamptz;autoCreateTime;index"`
	SettledAt *time.Time `gorm:"type:timestamptz"`
}

func (Bet) TableName() string {
	return "bets"
}

// Terminal reports whether the bet has reached a final outcome.
func (b *Bet) Terminal() bool {
	return b != nil && b.Outcome != OutcomePending
}

// ValidOutcome reports whether s is a recognized terminal outcome.
func ValidOutcome(s string) bool {
	switch s {
	case OutcomeWin, OutcomeLoss, OutcomePush:
		return true
	}
	return false
}
