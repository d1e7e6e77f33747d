package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"courtside/internal/models"
	"courtside/internal/repository"
	"courtside/internal/risklimit"
	"courtside/internal/settlement"
)

// Reason codes carried on every gate decision.
const (
	ReasonOK                = "ok"
	ReasonCoolOffActive     = "cool_off_active"
	ReasonLimitExceeded     = "limit_exceeded"
	ReasonInsufficientFunds = "insufficient_funds"
)

// Decision is the gate's answer for one candidate stake. Bucket names the
// offending loss window when the reason is limit_exceeded.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
	Bucket  string `json:"bucket,omitempty"`
}

// Gate answers "may this user stake this amount right now". It reads the
// ledger and loss counters and mutates nothing; placement re-checks inside
// its own transaction. Checks run in a fixed order so callers see the most
// actionable rejection first: cool-off, then loss limits, then funds.
type Gate struct {
	Repo   repository.Repository
	Limits *risklimit.Store
	Locks  *settlement.UserLocks
	Logger *zap.Logger
}

// CanPlaceBet takes the user's lock so the read cannot interleave with a
// concurrent settlement, then delegates to Check.
func (g *Gate) CanPlaceBet(ctx context.Context, userID uint64, stake decimal.Decimal, now time.Time) (Decision, error) {
	if g != nil && g.Locks != nil {
		g.Locks.Lock(userID)
		defer g.Locks.Unlock(userID)
	}
	return g.Check(ctx, userID, stake, now)
}

// Check evaluates the gate without locking. Callers that already hold the
// user's lock (bet placement) use this variant.
func (g *Gate) Check(ctx context.Context, userID uint64, stake decimal.Decimal, now time.Time) (Decision, error) {
	if g == nil || g.Repo == nil {
		return Decision{Allowed: true, Reason: ReasonOK}, nil
	}

	profile, err := g.Repo.GetUserProfile(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("load profile: %w", err)
	}
	if profile != nil && profile.CoolingOff(now) {
		return g.reject(userID, Decision{Reason: ReasonCoolOffActive}), nil
	}

	if g.Limits != nil {
		ok, bucket, err := g.Limits.CheckLimits(ctx, userID, stake, now)
		if err != nil {
			return Decision{}, err
		}
		if !ok {
			return g.reject(userID, Decision{Reason: ReasonLimitExceeded, Bucket: bucket}), nil
		}
	}

	if !hasFunds(profile, stake) {
		return g.reject(userID, Decision{Reason: ReasonInsufficientFunds}), nil
	}

	return Decision{Allowed: true, Reason: ReasonOK}, nil
}

func hasFunds(profile *models.UserProfile, stake decimal.Decimal) bool {
	if profile == nil {
		return false
	}
	return profile.Bankroll.GreaterThanOrEqual(stake)
}

func (g *Gate) reject(userID uint64, d Decision) Decision {
	d.Allowed = false
	if g.Logger != nil {
		g.Logger.Debug("bet admission rejected",
			zap.Uint64("user_id", userID),
			zap.String("reason", d.Reason),
		)
	}
	return d
}
