package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"courtside/internal/models"
	"courtside/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// scoped returns tx when inside a transaction, the base handle otherwise.
func (s *Store) scoped(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}

// --- Bets -------------------------------------------------------------------

func (s *Store) CreateBetTx(ctx context.Context, tx *gorm.DB, item *models.Bet) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.scoped(ctx, tx).Create(item).Error
}

func (s *Store) GetBetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	return s.GetBetByIDTx(ctx, nil, id)
}

func (s *Store) GetBetByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Bet, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Bet
	err := s.scoped(ctx, tx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListBets(ctx context.Context, params repository.ListBetsParams) ([]models.Bet, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.betQuery(ctx, params)
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Bet
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountBets(ctx context.Context, params repository.ListBetsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var n int64
	if err := s.betQuery(ctx, params).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) betQuery(ctx context.Context, params repository.ListBetsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Bet{})
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.Outcome != nil && strings.TrimSpace(*params.Outcome) != "" {
		query = query.Where("outcome = ?", strings.TrimSpace(*params.Outcome))
	}
	if params.GameID != nil && strings.TrimSpace(*params.GameID) != "" {
		query = query.Where("game_id = ?", strings.TrimSpace(*params.GameID))
	}
	return query
}

func (s *Store) ListPendingBets(ctx context.Context, limit int) ([]models.Bet, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Bet
	err := s.db.WithContext(ctx).
		Where("outcome = ?", models.OutcomePending).
		Order("created_at asc").
		Limit(normalizeLimit(limit, 500)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) MarkBetSettledTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, outcome string, actualReturn decimal.Decimal, settledAt time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.scoped(ctx, tx).
		Model(&models.Bet{}).
		Where("id = ? AND outcome = ?", id, models.OutcomePending).
		Updates(map[string]any{
			"outcome":       outcome,
			"actual_return": actualReturn,
			"settled_at":    settledAt,
		})
	return res.RowsAffected, res.Error
}

// --- User profiles ----------------------------------------------------------

func (s *Store) GetUserProfile(ctx context.Context, userID uint64) (*models.UserProfile, error) {
	return s.GetUserProfileTx(ctx, nil, userID)
}

func (s *Store) GetUserProfileTx(ctx context.Context, tx *gorm.DB, userID uint64) (*models.UserProfile, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.UserProfile
	err := s.scoped(ctx, tx).First(&item, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) SaveUserProfileTx(ctx context.Context, tx *gorm.DB, item *models.UserProfile) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.scoped(ctx, tx).Save(item).Error
}

func (s *Store) UpsertUserProfile(ctx context.Context, item *models.UserProfile) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(item).Error
}

// --- Bankroll transactions --------------------------------------------------

func (s *Store) CreateBankrollTransactionTx(ctx context.Context, tx *gorm.DB, item *models.BankrollTransaction) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.scoped(ctx, tx).Create(item).Error
}

func (s *Store) ListBankrollTransactions(ctx context.Context, params repository.ListTransactionsParams) ([]models.BankrollTransaction, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.BankrollTransaction{})
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.Type != nil && strings.TrimSpace(*params.Type) != "" {
		query = query.Where("type = ?", strings.TrimSpace(*params.Type))
	}
	var items []models.BankrollTransaction
	err := query.Order("created_at desc").
		Limit(normalizeLimit(params.Limit, 200)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- Risk limits ------------------------------------------------------------

func (s *Store) GetRiskLimit(ctx context.Context, userID uint64) (*models.RiskLimit, error) {
	return s.GetRiskLimitTx(ctx, nil, userID)
}

func (s *Store) GetRiskLimitTx(ctx context.Context, tx *gorm.DB, userID uint64) (*models.RiskLimit, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.RiskLimit
	err := s.scoped(ctx, tx).First(&item, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) SaveRiskLimitTx(ctx context.Context, tx *gorm.DB, item *models.RiskLimit) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.scoped(ctx, tx).Save(item).Error
}

func (s *Store) UpsertRiskLimit(ctx context.Context, item *models.RiskLimit) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(item).Error
}

// --- Game mirror ------------------------------------------------------------

func (s *Store) GetGameByID(ctx context.Context, id string) (*models.Game, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Game
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpsertGame(ctx context.Context, item *models.Game) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.ID) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"sport",
			"league",
			"home_team",
			"away_team",
			"home_score",
			"away_score",
			"status",
			"winning_team",
			"starts_at",
			"external_updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) ListGames(ctx context.Context, params repository.ListGamesParams) ([]models.Game, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Game{})
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	if params.Sport != nil && strings.TrimSpace(*params.Sport) != "" {
		query = query.Where("sport = ?", strings.TrimSpace(*params.Sport))
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "external_updated_at")
	var items []models.Game
	err := query.Limit(normalizeLimit(params.Limit, 200)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListFinalGamesSince(ctx context.Context, since time.Time, limit int) ([]models.Game, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Game
	err := s.db.WithContext(ctx).
		Where("status = ?", models.GameFinal).
		Where("external_updated_at >= ?", since).
		Order("external_updated_at desc").
		Limit(normalizeLimit(limit, 500)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- Alert preferences & notifications --------------------------------------

func (s *Store) GetAlertPreference(ctx context.Context, userID uint64) (*models.AlertPreference, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.AlertPreference
	err := s.db.WithContext(ctx).First(&item, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpsertAlertPreference(ctx context.Context, item *models.AlertPreference) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(item).Error
}

func (s *Store) ListAlertPreferences(ctx context.Context) ([]models.AlertPreference, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.AlertPreference
	if err := s.db.WithContext(ctx).Order("user_id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) InsertNotifications(ctx context.Context, items []models.Notification) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).CreateInBatches(items, 100).Error
}

func (s *Store) CountNotificationsSince(ctx context.Context, userID uint64, since time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Where("created_at >= ?", since).
		Count(&n).Error
	return n, err
}

func (s *Store) ListNotifications(ctx context.Context, params repository.ListNotificationsParams) ([]models.Notification, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Notification{})
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	var items []models.Notification
	err := query.Order("created_at desc").
		Limit(normalizeLimit(params.Limit, 200)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteNotificationsBefore(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

// --- Settlement reviews -----------------------------------------------------

func (s *Store) CreateSettlementReview(ctx context.Context, item *models.SettlementReview) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetSettlementReviewByID(ctx context.Context, id uint64) (*models.SettlementReview, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.SettlementReview
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetOpenReviewByBetID(ctx context.Context, betID uuid.UUID) (*models.SettlementReview, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.SettlementReview
	err := s.db.WithContext(ctx).
		Where("bet_id = ? AND status = ?", betID, models.ReviewOpen).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSettlementReviews(ctx context.Context, params repository.ListReviewsParams) ([]models.SettlementReview, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.SettlementReview{})
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	var items []models.SettlementReview
	err := query.Order("created_at desc").
		Limit(normalizeLimit(params.Limit, 200)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateSettlementReviewStatus(ctx context.Context, id uint64, status string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.SettlementReview{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// --- helpers ----------------------------------------------------------------

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 || limit > 1000 {
		return fallback
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	col := strings.TrimSpace(orderBy)
	switch col {
	case "created_at", "settled_at", "external_updated_at", "amount":
	default:
		col = fallback
	}
	dir := "desc"
	if asc != nil && *asc {
		dir = "asc"
	}
	return query.Order(col + " " + dir)
}
