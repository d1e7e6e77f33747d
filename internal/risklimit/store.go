package risklimit

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"courtside/internal/models"
	"courtside/internal/repository"
)

// Store owns rolling loss counters and their period rollover. Buckets roll
// on calendar boundaries: daily on date change, weekly on ISO week change,
// monthly on month/year change. The ISO-week rule replaces the ambiguous
// 7-days-elapsed-or-Monday condition so a bucket resets exactly once per
// calendar week regardless of invocation cadence.
type Store struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

// resetIfNeeded rolls over any bucket whose period has ended. It mutates rl
// in place and reports whether anything changed. Calling it again within the
// same period is a no-op.
func resetIfNeeded(rl *models.RiskLimit, now time.Time) bool {
	if rl == nil {
		return false
	}
	today := dateOf(now)
	changed := false

	if dateOf(rl.LastResetDaily).Before(today) {
		rl.CurrentDailyLoss = decimal.Zero
		rl.LastResetDaily = today
		changed = true
	}

	ny, nw := now.ISOWeek()
	ly, lw := rl.LastResetWeekly.ISOWeek()
	if ny != ly || nw != lw {
		rl.CurrentWeeklyLoss = decimal.Zero
		rl.LastResetWeekly = today
		changed = true
	}

	if now.Year() != rl.LastResetMonthly.Year() || now.Month() != rl.LastResetMonthly.Month() {
		rl.CurrentMonthlyLoss = decimal.Zero
		rl.LastResetMonthly = today
		changed = true
	}

	return changed
}

// wouldExceed reports whether adding stake to any configured bucket would
// push it over its cap, naming the first offending bucket. Unset limits
// impose no constraint. Callers must have applied rollover first.
func wouldExceed(rl *models.RiskLimit, stake decimal.Decimal) (bool, string) {
	if rl == nil {
		return false, ""
	}
	if rl.DailyLimit != nil && rl.CurrentDailyLoss.Add(stake).GreaterThan(*rl.DailyLimit) {
		return true, "daily"
	}
	if rl.WeeklyLimit != nil && rl.CurrentWeeklyLoss.Add(stake).GreaterThan(*rl.WeeklyLimit) {
		return true, "weekly"
	}
	if rl.MonthlyLimit != nil && rl.CurrentMonthlyLoss.Add(stake).GreaterThan(*rl.MonthlyLimit) {
		return true, "monthly"
	}
	return false, ""
}

// CheckLimits reports whether a candidate stake fits inside every configured
// loss bucket. Rollover is applied to an in-memory copy only, keeping the
// check free of side effects so the admission gate can call it at high
// frequency.
func (s *Store) CheckLimits(ctx context.Context, userID uint64, stake decimal.Decimal, now time.Time) (bool, string, error) {
	if s == nil || s.Repo == nil {
		return true, "", nil
	}
	rl, err := s.Repo.GetRiskLimit(ctx, userID)
	if err != nil {
		return false, "", fmt.Errorf("load risk limit: %w", err)
	}
	if rl == nil {
		return true, "", nil
	}
	copied := *rl
	resetIfNeeded(&copied, now)
	exceeded, bucket := wouldExceed(&copied, stake)
	return !exceeded, bucket, nil
}

// RecordLossTx folds a settled loss into all three buckets inside the
// caller's transaction. The record is created with the loss pre-applied when
// the user has never configured limits.
func (s *Store) RecordLossTx(ctx context.Context, tx *gorm.DB, userID uint64, stake decimal.Decimal, now time.Time) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	rl, err := s.Repo.GetRiskLimitTx(ctx, tx, userID)
	if err != nil {
		return fmt.Errorf("load risk limit: %w", err)
	}
	if rl == nil {
		today := dateOf(now)
		rl = &models.RiskLimit{
			UserID:             userID,
			CurrentDailyLoss:   stake,
			CurrentWeeklyLoss:  stake,
			CurrentMonthlyLoss: stake,
			LastResetDaily:     today,
			LastResetWeekly:    today,
			LastResetMonthly:   today,
		}
		return s.Repo.SaveRiskLimitTx(ctx, tx, rl)
	}
	resetIfNeeded(rl, now)
	rl.CurrentDailyLoss = rl.CurrentDailyLoss.Add(stake)
	rl.CurrentWeeklyLoss = rl.CurrentWeeklyLoss.Add(stake)
	rl.CurrentMonthlyLoss = rl.CurrentMonthlyLoss.Add(stake)
	return s.Repo.SaveRiskLimitTx(ctx, tx, rl)
}

// SetLimits configures a user's caps, creating the record lazily. Current
// loss counters are preserved; rollover is applied before saving so a stale
// record does not carry a previous period's losses into the new config.
func (s *Store) SetLimits(ctx context.Context, userID uint64, daily, weekly, monthly *decimal.Decimal, now time.Time) (*models.RiskLimit, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	rl, err := s.Repo.GetRiskLimit(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load risk limit: %w", err)
	}
	if rl == nil {
		today := dateOf(now)
		rl = &models.RiskLimit{
			UserID:           userID,
			LastResetDaily:   today,
			LastResetWeekly:  today,
			LastResetMonthly: today,
		}
	} else {
		resetIfNeeded(rl, now)
	}
	rl.DailyLimit = daily
	rl.WeeklyLimit = weekly
	rl.MonthlyLimit = monthly
	if err := s.Repo.UpsertRiskLimit(ctx, rl); err != nil {
		return nil, fmt.Errorf("save risk limit: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Info("risk limits configured", zap.Uint64("user_id", userID))
	}
	return rl, nil
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
