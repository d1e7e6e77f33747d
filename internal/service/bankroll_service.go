package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"courtside/internal/models"
	"courtside/internal/repository"
	"courtside/internal/settlement"
)

// BankrollService owns deposits, withdrawals, cool-off, and stake sizing.
// Every balance change appends an immutable BankrollTransaction row
// alongside the profile update.
type BankrollService struct {
	Repo   repository.Repository
	Locks  *settlement.UserLocks
	Logger *zap.Logger
}

// Deposit credits the bankroll, creating the profile on first deposit. The
// first deposit also sets the baseline used for drawdown reporting.
func (s *BankrollService) Deposit(ctx context.Context, userID uint64, amount decimal.Decimal) (*models.UserProfile, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if s.Locks != nil {
		s.Locks.Lock(userID)
		defer s.Locks.Unlock(userID)
	}

	var profile *models.UserProfile
	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		var err error
		profile, err = s.Repo.GetUserProfileTx(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		if profile == nil {
			profile = &models.UserProfile{
				UserID:           userID,
				Bankroll:         amount,
				BaselineBankroll: amount,
				KellyMultiplier:  0.25,
			}
		} else {
			profile.Bankroll = profile.Bankroll.Add(amount)
		}
		if err := s.Repo.SaveUserProfileTx(ctx, tx, profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		txn := &models.BankrollTransaction{
			ID:           uuid.New(),
			UserID:       userID,
			Type:         models.TransactionDeposit,
			Amount:       amount,
			BalanceAfter: profile.Bankroll,
		}
		return s.Repo.CreateBankrollTransactionTx(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.Info("deposit",
			zap.Uint64("user_id", userID),
			zap.String("amount", amount.StringFixed(2)),
			zap.String("balance", profile.Bankroll.StringFixed(2)),
		)
	}
	return profile, nil
}

// Withdraw debits the bankroll, capped at the available balance.
func (s *BankrollService) Withdraw(ctx context.Context, userID uint64, amount decimal.Decimal) (*models.UserProfile, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if s.Locks != nil {
		s.Locks.Lock(userID)
		defer s.Locks.Unlock(userID)
	}

	var profile *models.UserProfile
	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		var err error
		profile, err = s.Repo.GetUserProfileTx(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		if profile == nil {
			return ErrProfileNotFound
		}
		if profile.Bankroll.LessThan(amount) {
			return ErrInsufficientFunds
		}
		profile.Bankroll = profile.Bankroll.Sub(amount)
		if err := s.Repo.SaveUserProfileTx(ctx, tx, profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		txn := &models.BankrollTransaction{
			ID:           uuid.New(),
			UserID:       userID,
			Type:         models.TransactionWithdrawal,
			Amount:       amount,
			BalanceAfter: profile.Bankroll,
		}
		return s.Repo.CreateBankrollTransactionTx(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.Info("withdrawal",
			zap.Uint64("user_id", userID),
			zap.String("amount", amount.StringFixed(2)),
			zap.String("balance", profile.Bankroll.StringFixed(2)),
		)
	}
	return profile, nil
}

// GetProfile returns the bankroll ledger for a user.
func (s *BankrollService) GetProfile(ctx context.Context, userID uint64) (*models.UserProfile, error) {
	profile, err := s.Repo.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// ListTransactions pages the append-only ledger history.
func (s *BankrollService) ListTransactions(ctx context.Context, params repository.ListTransactionsParams) ([]models.BankrollTransaction, error) {
	return s.Repo.ListBankrollTransactions(ctx, params)
}

// SetCoolOff starts (or clears, with zero duration) a self-imposed cool-off.
// The admission gate rejects new bets until the end timestamp passes.
func (s *BankrollService) SetCoolOff(ctx context.Context, userID uint64, d time.Duration) (*models.UserProfile, error) {
	if s.Locks != nil {
		s.Locks.Lock(userID)
		defer s.Locks.Unlock(userID)
	}
	profile, err := s.Repo.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	if d <= 0 {
		profile.CoolOffEnd = nil
	} else {
		end := time.Now().UTC().Add(d)
		profile.CoolOffEnd = &end
	}
	if err := s.Repo.UpsertUserProfile(ctx, profile); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("cool-off updated",
			zap.Uint64("user_id", userID),
			zap.Duration("duration", d),
		)
	}
	return profile, nil
}

// SuggestStake sizes a stake with a fractional Kelly criterion at the given
// win probability and American odds, scaled by the user's configured
// multiplier. It returns zero when the edge is non-positive.
func (s *BankrollService) SuggestStake(ctx context.Context, userID uint64, winProb float64, odds int) (decimal.Decimal, error) {
	if winProb <= 0 || winProb >= 1 || odds == 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	profile, err := s.Repo.GetUserProfile(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if profile == nil {
		return decimal.Zero, ErrProfileNotFound
	}

	// Decimal-odds payout multiplier b (profit per unit staked).
	var b float64
	if odds > 0 {
		b = float64(odds) / 100
	} else {
		b = 100 / float64(-odds)
	}
	kelly := (winProb*b - (1 - winProb)) / b
	if kelly <= 0 {
		return decimal.Zero, nil
	}
	mult := profile.KellyMultiplier
	if mult <= 0 {
		mult = 0.25
	}
	stake := profile.Bankroll.Mul(decimal.NewFromFloat(kelly * mult))
	if stake.IsNegative() {
		stake = decimal.Zero
	}
	return stake.Round(2), nil
}
