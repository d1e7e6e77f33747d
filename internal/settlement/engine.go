package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"courtside/internal/config"
	"courtside/internal/models"
	"courtside/internal/repository"
	"courtside/internal/risklimit"

	"github.com/google/uuid"
)

// Engine decides the outcome and payout of a wager once a game result is
// known and propagates the result into the bankroll ledger and risk-limit
// counters. One settlement is one transaction under the owner's user lock:
// either the bet flip, ledger update, and loss recording all land, or none
// do and the bet stays pending for the next pass.
type Engine struct {
	Repo   repository.Repository
	Limits *risklimit.Store
	Locks  *UserLocks
	Logger *zap.Logger
	Config config.SettlementConfig
}

// Settle transitions a pending bet to a terminal outcome exactly once.
// Settling an already-terminal bet returns ErrAlreadySettled without
// mutating anything, which makes the scheduler's re-delivery of the same
// completed-game signal harmless.
func (e *Engine) Settle(ctx context.Context, betID uuid.UUID, outcome string) (*models.Bet, error) {
	if e == nil || e.Repo == nil {
		return nil, ErrBetNotFound
	}
	if !models.ValidOutcome(outcome) {
		return nil, ErrInvalidOutcome
	}
	bet, err := e.Repo.GetBetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("load bet: %w", err)
	}
	if bet == nil {
		return nil, ErrBetNotFound
	}
	if bet.Terminal() {
		return bet, ErrAlreadySettled
	}

	if e.Locks != nil {
		e.Locks.Lock(bet.UserID)
		defer e.Locks.Unlock(bet.UserID)
	}

	now := time.Now().UTC()
	payout := Payout(bet.Amount, bet.Odds, outcome)

	err = e.Repo.InTx(ctx, func(tx *gorm.DB) error {
		rows, err := e.Repo.MarkBetSettledTx(ctx, tx, bet.ID, outcome, payout, now)
		if err != nil {
			return fmt.Errorf("mark bet settled: %w", err)
		}
		if rows == 0 {
			return ErrAlreadySettled
		}

		profile, err := e.Repo.GetUserProfileTx(ctx, tx, bet.UserID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		if profile == nil {
			return ErrLedgerMissing
		}
		applyToLedger(profile, bet.Amount, payout, outcome)
		if err := e.Repo.SaveUserProfileTx(ctx, tx, profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}

		if outcome == models.OutcomeLoss && e.Limits != nil {
			if err := e.Limits.RecordLossTx(ctx, tx, bet.UserID, bet.Amount, now); err != nil {
				return fmt.Errorf("record loss: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if err != ErrAlreadySettled && e.Logger != nil {
			e.Logger.Warn("settlement rolled back, bet stays pending",
				zap.String("bet_id", bet.ID.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	bet.Outcome = outcome
	bet.ActualReturn = &payout
	bet.SettledAt = &now

	if e.Logger != nil {
		e.Logger.Info("bet settled",
			zap.String("bet_id", bet.ID.String()),
			zap.Uint64("user_id", bet.UserID),
			zap.String("outcome", outcome),
			zap.String("actual_return", payout.StringFixed(2)),
		)
	}
	return bet, nil
}

// applyToLedger folds one settlement into the bankroll ledger. Pushes keep
// the streak; LargestLoss holds a positive magnitude.
func applyToLedger(p *models.UserProfile, stake, payout decimal.Decimal, outcome string) {
	p.Bankroll = p.Bankroll.Add(payout)
	profit := payout.Sub(stake)
	p.TotalProfit = p.TotalProfit.Add(profit)

	switch outcome {
	case models.OutcomeWin:
		p.TotalBetsWon++
		if p.CurrentStreak > 0 {
			p.CurrentStreak++
		} else {
			p.CurrentStreak = 1
		}
		if profit.GreaterThan(p.LargestWin) {
			p.LargestWin = profit
		}
	case models.OutcomeLoss:
		p.TotalBetsLost++
		if p.CurrentStreak < 0 {
			p.CurrentStreak--
		} else {
			p.CurrentStreak = -1
		}
		if stake.GreaterThan(p.LargestLoss) {
			p.LargestLoss = stake
		}
	case models.OutcomePush:
		p.TotalBetsPushed++
	}

	p.PendingBetCount--
	if p.PendingBetCount < 0 {
		p.PendingBetCount = 0
	}
	p.PendingBetAmount = p.PendingBetAmount.Sub(stake)
	if p.PendingBetAmount.IsNegative() {
		p.PendingBetAmount = decimal.Zero
	}

	decided := p.TotalBetsWon + p.TotalBetsLost
	if decided > 0 {
		p.WinRate = float64(p.TotalBetsWon) / float64(decided)
	}
	wagered := p.AverageBetSize.Mul(decimal.NewFromInt(int64(p.TotalBetsPlaced)))
	if wagered.IsPositive() {
		roi, _ := p.TotalProfit.Div(wagered).Float64()
		p.ROI = roi
	}
}

// DeriveOutcome maps a final game onto a bet's side. A final game with no
// recorded winner is a push. Bets with no recorded side cannot be derived
// and fall through to manual review.
func DeriveOutcome(bet models.Bet, game models.Game) (string, bool) {
	if game.Status != models.GameFinal {
		return "", false
	}
	if game.WinningTeam == nil || *game.WinningTeam == "" {
		return models.OutcomePush, true
	}
	if bet.TeamBetOn == nil || *bet.TeamBetOn == "" {
		return "", false
	}
	if equalTeam(*bet.TeamBetOn, *game.WinningTeam) {
		return models.OutcomeWin, true
	}
	return models.OutcomeLoss, true
}

// PassResult summarizes one scheduled settlement pass.
type PassResult struct {
	Settled  int
	Reviewed int
	Skipped  int
	Failed   int
}

// RunPass settles every pending bet whose linked game is final. Bets with a
// game id settle automatically; bets without one are matched heuristically
// and filed for manual confirmation, never settled on a fuzzy match.
// Per-bet failures are logged and left pending for the next pass.
func (e *Engine) RunPass(ctx context.Context) (PassResult, error) {
	var result PassResult
	if e == nil || e.Repo == nil {
		return result, nil
	}
	now := time.Now().UTC()
	lookback := e.Config.GameLookback
	if lookback <= 0 {
		lookback = 48 * time.Hour
	}
	batch := e.Config.PendingBatchSize
	if batch <= 0 {
		batch = 500
	}

	pending, err := e.Repo.ListPendingBets(ctx, batch)
	if err != nil {
		return result, fmt.Errorf("list pending bets: %w", err)
	}
	if len(pending) == 0 {
		return result, nil
	}
	games, err := e.Repo.ListFinalGamesSince(ctx, now.Add(-lookback), batch)
	if err != nil {
		return result, fmt.Errorf("list final games: %w", err)
	}

	gamesByID := make(map[string]models.Game, len(games))
	for _, g := range games {
		gamesByID[g.ID] = g
	}

	for _, bet := range pending {
		if bet.GameID != nil && *bet.GameID != "" {
			// The recency window only bounds the heuristic-match scan.
			// A linked bet whose game aged out of the window is looked
			// up directly so it cannot be stranded by downtime longer
			// than the lookback.
			game, ok := gamesByID[*bet.GameID]
			if !ok {
				fetched, err := e.Repo.GetGameByID(ctx, *bet.GameID)
				if err != nil {
					result.Failed++
					if e.Logger != nil {
						e.Logger.Warn("linked game lookup failed, will retry",
							zap.String("bet_id", bet.ID.String()),
							zap.String("game_id", *bet.GameID),
							zap.Error(err),
						)
					}
					continue
				}
				if fetched == nil || fetched.Status != models.GameFinal {
					continue
				}
				game = *fetched
			}
			outcome, ok := DeriveOutcome(bet, game)
			if !ok {
				if e.fileReview(ctx, bet, game, scoreExact) {
					result.Reviewed++
				}
				continue
			}
			_, err := e.Settle(ctx, bet.ID, outcome)
			switch {
			case err == ErrAlreadySettled:
				result.Skipped++
			case err != nil:
				result.Failed++
				if e.Logger != nil {
					e.Logger.Warn("pass settlement failed, will retry",
						zap.String("bet_id", bet.ID.String()),
						zap.Error(err),
					)
				}
			default:
				result.Settled++
			}
			continue
		}

		game, score := BestMatch(bet, games)
		minScore := e.Config.ReviewMinScore
		if minScore <= 0 {
			minScore = 60
		}
		if game == nil || score < minScore {
			continue
		}
		if e.fileReview(ctx, bet, *game, score) {
			result.Reviewed++
		}
	}

	if e.Logger != nil {
		e.Logger.Info("settlement pass complete",
			zap.Int("settled", result.Settled),
			zap.Int("reviewed", result.Reviewed),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed),
		)
	}
	return result, nil
}

// fileReview records a needs-confirmation match unless one is already open.
func (e *Engine) fileReview(ctx context.Context, bet models.Bet, game models.Game, score int) bool {
	existing, err := e.Repo.GetOpenReviewByBetID(ctx, bet.ID)
	if err != nil {
		if e.Logger != nil {
			e.Logger.Warn("review lookup failed", zap.String("bet_id", bet.ID.String()), zap.Error(err))
		}
		return false
	}
	if existing != nil {
		return false
	}
	details, _ := json.Marshal(map[string]any{
		"team_bet_on": strOrEmpty(bet.TeamBetOn),
		"description": bet.Description,
		"home_team":   game.HomeTeam,
		"away_team":   game.AwayTeam,
	})
	review := &models.SettlementReview{
		BetID:      bet.ID,
		GameID:     game.ID,
		MatchScore: score,
		Status:     models.ReviewOpen,
		Details:    datatypes.JSON(details),
	}
	if err := e.Repo.CreateSettlementReview(ctx, review); err != nil {
		if e.Logger != nil {
			e.Logger.Warn("review create failed", zap.String("bet_id", bet.ID.String()), zap.Error(err))
		}
		return false
	}
	return true
}

// ConfirmReview settles a heuristically matched bet after a human confirmed
// the pairing. The outcome is derived from the reviewed game at confirm
// time.
func (e *Engine) ConfirmReview(ctx context.Context, reviewID uint64) (*models.Bet, error) {
	if e == nil || e.Repo == nil {
		return nil, ErrReviewNotFound
	}
	review, err := e.Repo.GetSettlementReviewByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("load review: %w", err)
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}
	if review.Status != models.ReviewOpen {
		return nil, ErrReviewNotOpen
	}
	bet, err := e.Repo.GetBetByID(ctx, review.BetID)
	if err != nil {
		return nil, fmt.Errorf("load bet: %w", err)
	}
	if bet == nil {
		return nil, ErrBetNotFound
	}
	game, err := e.Repo.GetGameByID(ctx, review.GameID)
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	if game == nil {
		return nil, fmt.Errorf("game %s no longer in mirror", review.GameID)
	}
	outcome, ok := DeriveOutcome(*bet, *game)
	if !ok {
		return nil, ErrInvalidOutcome
	}
	settled, err := e.Settle(ctx, bet.ID, outcome)
	if err != nil {
		return nil, err
	}
	if err := e.Repo.UpdateSettlementReviewStatus(ctx, reviewID, models.ReviewConfirmed); err != nil && e.Logger != nil {
		e.Logger.Warn("review status update failed", zap.Uint64("review_id", reviewID), zap.Error(err))
	}
	return settled, nil
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
