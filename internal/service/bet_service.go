package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"courtside/internal/admission"
	"courtside/internal/models"
	"courtside/internal/repository"
	"courtside/internal/settlement"
)

// BetService owns bet placement and the manual settlement surface. Placement
// holds the user's lock across the admission check and the transaction so
// the gate's verdict cannot be invalidated by a concurrent settlement.
type BetService struct {
	Repo   repository.Repository
	Engine *settlement.Engine
	Gate   *admission.Gate
	Locks  *settlement.UserLocks
	Logger *zap.Logger
}

// PlaceBetInput carries the caller-supplied fields of a new wager.
type PlaceBetInput struct {
	UserID      uint64
	Amount      decimal.Decimal
	Odds        int
	Description string
	TeamBetOn   *string
	GameID      *string
}

// PlaceBet admits, funds, and records a new pending bet in one transaction.
// The stake leaves the bankroll immediately; settlement later credits back
// the payout (stake plus profit on a win, stake on a push, nothing on a
// loss).
func (s *BetService) PlaceBet(ctx context.Context, in PlaceBetInput) (*models.Bet, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidStake
	}
	if in.Odds == 0 {
		return nil, ErrInvalidOdds
	}

	if s.Locks != nil {
		s.Locks.Lock(in.UserID)
		defer s.Locks.Unlock(in.UserID)
	}

	now := time.Now().UTC()
	if s.Gate != nil {
		decision, err := s.Gate.Check(ctx, in.UserID, in.Amount, now)
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			return nil, admissionErr(decision)
		}
	}

	potential := settlement.WinPayout(in.Amount, in.Odds)
	bet := &models.Bet{
		ID:              uuid.New(),
		UserID:          in.UserID,
		Amount:          in.Amount,
		Odds:            in.Odds,
		Outcome:         models.OutcomePending,
		Description:     in.Description,
		TeamBetOn:       in.TeamBetOn,
		GameID:          in.GameID,
		PotentialReturn: &potential,
		CreatedAt:       now,
	}

	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		profile, err := s.Repo.GetUserProfileTx(ctx, tx, in.UserID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		if profile == nil {
			return ErrProfileNotFound
		}
		if profile.Bankroll.LessThan(in.Amount) {
			return ErrInsufficientFunds
		}

		profile.Bankroll = profile.Bankroll.Sub(in.Amount)
		profile.PendingBetCount++
		profile.PendingBetAmount = profile.PendingBetAmount.Add(in.Amount)
		profile.TotalBetsPlaced++
		n := decimal.NewFromInt(int64(profile.TotalBetsPlaced))
		profile.AverageBetSize = profile.AverageBetSize.
			Mul(n.Sub(decimal.NewFromInt(1))).
			Add(in.Amount).
			Div(n)

		if err := s.Repo.SaveUserProfileTx(ctx, tx, profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		if err := s.Repo.CreateBetTx(ctx, tx, bet); err != nil {
			return fmt.Errorf("create bet: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.Info("bet placed",
			zap.String("bet_id", bet.ID.String()),
			zap.Uint64("user_id", in.UserID),
			zap.String("amount", in.Amount.StringFixed(2)),
			zap.Int("odds", in.Odds),
		)
	}
	return bet, nil
}

// SettleBet settles a bet at the owner's request with an explicitly stated
// outcome. Ownership is enforced; idempotency and atomicity come from the
// engine.
func (s *BetService) SettleBet(ctx context.Context, userID uint64, betID uuid.UUID, outcome string) (*models.Bet, error) {
	bet, err := s.Repo.GetBetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("load bet: %w", err)
	}
	if bet == nil {
		return nil, settlement.ErrBetNotFound
	}
	if bet.UserID != userID {
		return nil, settlement.ErrNotOwner
	}
	return s.Engine.Settle(ctx, betID, outcome)
}

// GetBet returns a bet only to its owner.
func (s *BetService) GetBet(ctx context.Context, userID uint64, betID uuid.UUID) (*models.Bet, error) {
	bet, err := s.Repo.GetBetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("load bet: %w", err)
	}
	if bet == nil {
		return nil, settlement.ErrBetNotFound
	}
	if bet.UserID != userID {
		return nil, settlement.ErrNotOwner
	}
	return bet, nil
}

// ListBets pages through bets with optional filters.
func (s *BetService) ListBets(ctx context.Context, params repository.ListBetsParams) ([]models.Bet, int64, error) {
	items, err := s.Repo.ListBets(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.CountBets(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ConfirmReview settles a heuristically matched bet after confirmation.
func (s *BetService) ConfirmReview(ctx context.Context, reviewID uint64) (*models.Bet, error) {
	return s.Engine.ConfirmReview(ctx, reviewID)
}

// DismissReview closes an open review without settling; the bet stays
// pending for future passes or manual settlement.
func (s *BetService) DismissReview(ctx context.Context, reviewID uint64) error {
	review, err := s.Repo.GetSettlementReviewByID(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("load review: %w", err)
	}
	if review == nil {
		return settlement.ErrReviewNotFound
	}
	if review.Status != models.ReviewOpen {
		return settlement.ErrReviewNotOpen
	}
	return s.Repo.UpdateSettlementReviewStatus(ctx, reviewID, models.ReviewDismissed)
}

// ListReviews pages through settlement reviews.
func (s *BetService) ListReviews(ctx context.Context, params repository.ListReviewsParams) ([]models.SettlementReview, error) {
	return s.Repo.ListSettlementReviews(ctx, params)
}

func admissionErr(d admission.Decision) error {
	switch d.Reason {
	case admission.ReasonCoolOffActive:
		return ErrCoolOffActive
	case admission.ReasonLimitExceeded:
		if d.Bucket != "" {
			return fmt.Errorf("%w: %s", ErrLimitExceeded, d.Bucket)
		}
		return ErrLimitExceeded
	case admission.ReasonInsufficientFunds:
		return ErrInsufficientFunds
	default:
		return fmt.Errorf("bet rejected: %s", d.Reason)
	}
}
