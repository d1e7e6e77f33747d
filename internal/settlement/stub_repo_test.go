package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"courtside/internal/models"
	"courtside/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
// InTx snapshots the mutable maps so a failing transaction body rolls back
// like the real store.
type stubRepo struct {
	bets     map[uuid.UUID]models.Bet
	profiles map[uint64]models.UserProfile
	limits   map[uint64]models.RiskLimit
	games    map[string]models.Game
	reviews  map[uint64]models.SettlementReview
	nextID   uint64

	failProfileSave bool
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		bets:     map[uuid.UUID]models.Bet{},
		profiles: map[uint64]models.UserProfile{},
		limits:   map[uint64]models.RiskLimit{},
		games:    map[string]models.Game{},
		reviews:  map[uint64]models.SettlementReview{},
	}
}

func (s *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	bets := cloneMap(s.bets)
	profiles := cloneMap(s.profiles)
	limits := cloneMap(s.limits)
	if err := fn(nil); err != nil {
		s.bets = bets
		s.profiles = profiles
		s.limits = limits
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *stubRepo) CreateBetTx(ctx context.Context, tx *gorm.DB, item *models.Bet) error {
	s.bets[item.ID] = *item
	return nil
}

func (s *stubRepo) GetBetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	if b, ok := s.bets[id]; ok {
		out := b
		return &out, nil
	}
	return nil, nil
}

func (s *stubRepo) GetBetByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Bet, error) {
	return s.GetBetByID(ctx, id)
}

func (s *stubRepo) ListBets(ctx context.Context, params repository.ListBetsParams) ([]models.Bet, error) {
	return nil, nil
}

func (s *stubRepo) CountBets(ctx context.Context, params repository.ListBetsParams) (int64, error) {
	return 0, nil
}

func (s *stubRepo) ListPendingBets(ctx context.Context, limit int) ([]models.Bet, error) {
	var out []models.Bet
	for _, b := range s.bets {
		if b.Outcome == models.OutcomePending {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubRepo) MarkBetSettledTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, outcome string, actualReturn decimal.Decimal, settledAt time.Time) (int64, error) {
	b, ok := s.bets[id]
	if !ok || b.Outcome != models.OutcomePending {
		return 0, nil
	}
	b.Outcome = outcome
	b.ActualReturn = &actualReturn
	b.SettledAt = &settledAt
	s.bets[id] = b
	return 1, nil
}

func (s *stubRepo) GetUserProfile(ctx context.Context, userID uint64) (*models.UserProfile, error) {
	if p, ok := s.profiles[userID]; ok {
		out := p
		return &out, nil
	}
	return nil, nil
}

func (s *stubRepo) GetUserProfileTx(ctx context.Context, tx *gorm.DB, userID uint64) (*models.UserProfile, error) {
	return s.GetUserProfile(ctx, userID)
}

func (s *stubRepo) SaveUserProfileTx(ctx context.Context, tx *gorm.DB, item *models.UserProfile) error {
	if s.failProfileSave {
		return errors.New("profile save failed")
	}
	s.profiles[item.UserID] = *item
	return nil
}

func (s *stubRepo) UpsertUserProfile(ctx context.Context, item *models.UserProfile) error {
	s.profiles[item.UserID] = *item
	return nil
}

func (s *stubRepo) CreateBankrollTransactionTx(ctx context.Context, tx *gorm.DB, item *models.BankrollTransaction) error {
	return nil
}

func (s *stubRepo) ListBankrollTransactions(ctx context.Context, params repository.ListTransactionsParams) ([]models.BankrollTransaction, error) {
	return nil, nil
}

func (s *stubRepo) GetRiskLimit(ctx context.Context, userID uint64) (*models.RiskLimit, error) {
	if rl, ok := s.limits[userID]; ok {
		out := rl
		return &out, nil
	}
	return nil, nil
}

func (s *stubRepo) GetRiskLimitTx(ctx context.Context, tx *gorm.DB, userID uint64) (*models.RiskLimit, error) {
	return s.GetRiskLimit(ctx, userID)
}

func (s *stubRepo) SaveRiskLimitTx(ctx context.Context, tx *gorm.DB, item *models.RiskLimit) error {
	s.limits[item.UserID] = *item
	return nil
}

func (s *stubRepo) UpsertRiskLimit(ctx context.Context, item *models.RiskLimit) error {
	s.limits[item.UserID] = *item
	return nil
}

func (s *stubRepo) GetGameByID(ctx context.Context, id string) (*models.Game, error) {
	if g, ok := s.games[id]; ok {
		out := g
		return &out, nil
	}
	return nil, nil
}

func (s *stubRepo) UpsertGame(ctx context.Context, item *models.Game) error {
	s.games[item.ID] = *item
	return nil
}

func (s *stubRepo) ListGames(ctx context.Context, params repository.ListGamesParams) ([]models.Game, error) {
	return nil, nil
}

func (s *stubRepo) ListFinalGamesSince(ctx context.Context, since time.Time, limit int) ([]models.Game, error) {
	var out []models.Game
	for _, g := range s.games {
		if g.Status == models.GameFinal && !g.ExternalUpdatedAt.Before(since) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *stubRepo) GetAlertPreference(ctx context.Context, userID uint64) (*models.AlertPreference, error) {
	return nil, nil
}

func (s *stubRepo) UpsertAlertPreference(ctx context.Context, item *models.AlertPreference) error {
	return nil
}

func (s *stubRepo) ListAlertPreferences(ctx context.Context) ([]models.AlertPreference, error) {
	return nil, nil
}

func (s *stubRepo) InsertNotifications(ctx context.Context, items []models.Notification) error {
	return nil
}

func (s *stubRepo) CountNotificationsSince(ctx context.Context, userID uint64, since time.Time) (int64, error) {
	return 0, nil
}

func (s *stubRepo) ListNotifications(ctx context.Context, params repository.ListNotificationsParams) ([]models.Notification, error) {
	return nil, nil
}

func (s *stubRepo) DeleteNotificationsBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (s *stubRepo) CreateSettlementReview(ctx context.Context, item *models.SettlementReview) error {
	s.nextID++
	item.ID = s.nextID
	s.reviews[item.ID] = *item
	return nil
}

func (s *stubRepo) GetSettlementReviewByID(ctx context.Context, id uint64) (*models.SettlementReview, error) {
	if r, ok := s.reviews[id]; ok {
		out := r
		return &out, nil
	}
	return nil, nil
}

func (s *stubRepo) GetOpenReviewByBetID(ctx context.Context, betID uuid.UUID) (*models.SettlementReview, error) {
	for _, r := range s.reviews {
		if r.BetID == betID && r.Status == models.ReviewOpen {
			out := r
			return &out, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ListSettlementReviews(ctx context.Context, params repository.ListReviewsParams) ([]models.SettlementReview, error) {
	return nil, nil
}

func (s *stubRepo) UpdateSettlementReviewStatus(ctx context.Context, id uint64, status string) error {
	r, ok := s.reviews[id]
	if !ok {
		return nil
	}
	r.Status = status
	s.reviews[id] = r
	return nil
}
