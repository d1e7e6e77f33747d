package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"courtside/internal/models"
)

// Repository is the persistence surface shared by the settlement engine,
// admission gate, alert dispatcher, and HTTP handlers. Methods with a Tx
// suffix run inside a transaction opened via InTx; the settlement engine
// uses them to keep bet, ledger, and risk-limit mutations atomic.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Bets
	CreateBetTx(ctx context.Context, tx *gorm.DB, item *models.Bet) error
	GetBetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error)
	GetBetByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Bet, error)
	ListBets(ctx context.Context, params ListBetsParams) ([]models.Bet, error)
	CountBets(ctx context.Context, params ListBetsParams) (int64, error)
	ListPendingBets(ctx context.Context, limit int) ([]models.Bet, error)
	// MarkBetSettledTx flips a pending bet to a terminal outcome. The update
	// is guarded on outcome = pending; it returns the number of rows
	// changed so callers can detect a lost idempotency race.
	MarkBetSettledTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, outcome string, actualReturn decimal.Decimal, settledAt time.Time) (int64, error)

	// User profiles (bankroll ledger)
	GetUserProfile(ctx context.Context, userID uint64) (*models.UserProfile, error)
	GetUserProfileTx(ctx context.Context, tx *gorm.DB, userID uint64) (*models.UserProfile, error)
	SaveUserProfileTx(ctx context.Context, tx *gorm.DB, item *models.UserProfile) error
	UpsertUserProfile(ctx context.Context, item *models.UserProfile) error

	// Bankroll transactions (append-only)
	CreateBankrollTransactionTx(ctx context.Context, tx *gorm.DB, item *models.BankrollTransaction) error
	ListBankrollTransactions(ctx context.Context, params ListTransactionsParams) ([]models.BankrollTransaction, error)

	// Risk limits
	GetRiskLimit(ctx context.Context, userID uint64) (*models.RiskLimit, error)
	GetRiskLimitTx(ctx context.Context, tx *gorm.DB, userID uint64) (*models.RiskLimit, error)
	SaveRiskLimitTx(ctx context.Context, tx *gorm.DB, item *models.RiskLimit) error
	UpsertRiskLimit(ctx context.Context, item *models.RiskLimit) error

	// Game mirror
	GetGameByID(ctx context.Context, id string) (*models.Game, error)
	UpsertGame(ctx context.Context, item *models.Game) error
	ListGames(ctx context.Context, params ListGamesParams) ([]models.Game, error)
	ListFinalGamesSince(ctx context.Context, since time.Time, limit int) ([]models.Game, error)

	// Alert preferences & notifications
	GetAlertPreference(ctx context.Context, userID uint64) (*models.AlertPreference, error)
	UpsertAlertPreference(ctx context.Context, item *models.AlertPreference) error
	ListAlertPreferences(ctx context.Context) ([]models.AlertPreference, error)
	InsertNotifications(ctx context.Context, items []models.Notification) error
	CountNotificationsSince(ctx context.Context, userID uint64, since time.Time) (int64, error)
	ListNotifications(ctx context.Context, params ListNotificationsParams) ([]models.Notification, error)
	DeleteNotificationsBefore(ctx context.Context, before time.Time) (int64, error)

	// Settlement reviews
	CreateSettlementReview(ctx context.Context, item *models.SettlementReview) error
	GetSettlementReviewByID(ctx context.Context, id uint64) (*models.SettlementReview, error)
	GetOpenReviewByBetID(ctx context.Context, betID uuid.UUID) (*models.SettlementReview, error)
	ListSettlementReviews(ctx context.Context, params ListReviewsParams) ([]models.SettlementReview, error)
	UpdateSettlementReviewStatus(ctx context.Context, id uint64, status string) error
}

type ListBetsParams struct {
	Limit   int
	Offset  int
	UserID  *uint64
	Outcome *string
	GameID  *string
	OrderBy string
	Asc     *bool
}

type ListTransactionsParams struct {
	Limit  int
	Offset int
	UserID *uint64
	Type   *string
}

type ListGamesParams struct {
	Limit   int
	Offset  int
	Status  *string
	Sport   *string
	OrderBy string
	Asc     *bool
}

type ListNotificationsParams struct {
	Limit  int
	Offset int
	UserID *uint64
	Since  *time.Time
}

type ListReviewsParams struct {
	Limit  int
	Offset int
	Status *string
}
