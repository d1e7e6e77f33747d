package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionDeposit    = "deposit"
	TransactionWithdrawal = "withdrawal"
)

// BankrollTransaction is an append-only ledger entry, immutable once written.
type BankrollTransaction struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uint64    `gorm:"not null;index"`

	Type         string          `gorm:"type:varchar(20);not null"`
	Amount       decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	BalanceAfter decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (BankrollTransaction) TableName() string {
	return "bankroll_transactions"
}
