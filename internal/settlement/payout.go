package settlement

import (
	"github.com/shopspring/decimal"

	"courtside/internal/models"
)

var hundred = decimal.NewFromInt(100)

// WinPayout returns stake plus profit for a winning bet at American odds.
// Positive odds pay odds/100 per unit staked; negative odds pay 100/|odds|.
func WinPayout(amount decimal.Decimal, odds int) decimal.Decimal {
	if odds > 0 {
		return amount.Add(amount.Mul(decimal.NewFromInt(int64(odds))).Div(hundred))
	}
	if odds < 0 {
		return amount.Add(amount.Mul(hundred).Div(decimal.NewFromInt(int64(-odds))))
	}
	return amount
}

// Payout returns the total amount credited back to the bankroll for a
// terminal outcome: full payout on a win, the stake on a push, zero on a
// loss.
func Payout(amount decimal.Decimal, odds int, outcome string) decimal.Decimal {
	switch outcome {
	case models.OutcomeWin:
		return WinPayout(amount, odds)
	case models.OutcomePush:
		return amount
	default:
		return decimal.Zero
	}
}
