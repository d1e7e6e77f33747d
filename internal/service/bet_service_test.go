package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"courtside/internal/admission"
	"courtside/internal/models"
	"courtside/internal/risklimit"
	"courtside/internal/settlement"
)

func newTestBetService(repo *stubRepo) *BetService {
	locks := settlement.NewUserLocks()
	limits := &risklimit.Store{Repo: repo}
	return &BetService{
		Repo:   repo,
		Engine: &settlement.Engine{Repo: repo, Limits: limits, Locks: locks},
		Gate:   &admission.Gate{Repo: repo, Limits: limits},
		Locks:  locks,
	}
}

func TestPlaceBet_DeductsStakeAndTracksPending(t *testing.T) {
	repo := newStubRepo()
	repo.profiles[1] = models.UserProfile{UserID: 1, Bankroll: decimal.NewFromInt(500)}
	svc := newTestBetService(repo)

	bet, err := svc.PlaceBet(context.Background(), PlaceBetInput{
		UserID: 1,
		Amount: decimal.NewFromInt(100),
		Odds:   -110,
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if bet.Outcome != models.OutcomePending {
		t.Fatalf("outcome=%q want pending", bet.Outcome)
	}
	if bet.PotentialReturn == nil || bet.PotentialReturn.Round(2).Cmp(decimal.RequireFromString("190.91")) != 0 {
		t.Fatalf("potential_return=%v want≈190.91", bet.PotentialReturn)
	}

	profile := repo.profiles[1]
	if profile.Bankroll.Cmp(decimal.NewFromInt(400)) != 0 {
		t.Fatalf("bankroll=%s want=400", profile.Bankroll.String())
	}
	if profile.PendingBetCount != 1 || profile.PendingBetAmount.Cmp(decimal.NewFromInt(100)) != 0 {
		t.Fatalf("pending=%d/%s want 1/100", profile.PendingBetCount, profile.PendingBetAmount.String())
	}
	if profile.TotalBetsPlaced != 1 || profile.AverageBetSize.Cmp(decimal.NewFromInt(100)) != 0 {
		t.Fatalf("placed=%d avg=%s want 1/100", profile.TotalBetsPlaced, profile.AverageBetSize.String())
	}
}

func TestPlaceBet_RollingAverage(t *testing.T) {
	repo := newStubRepo()
	repo.profiles[1] = models.UserProfile{UserID: 1, Bankroll: decimal.NewFromInt(1000)}
	svc := newTestBetService(repo)

	for _, amount := range []int64{100, 50} {
		if _, err := svc.PlaceBet(context.Background(), PlaceBetInput{
			UserID: 1,
			Amount: decimal.NewFromInt(amount),
			Odds:   120,
		}); err != nil {
			t.Fatalf("place %d: %v", amount, err)
		}
	}
	profile := repo.profiles[1]
	if profile.AverageBetSize.Cmp(decimal.NewFromInt(75)) != 0 {
		t.Fatalf("avg=%s want=75", profile.AverageBetSize.String())
	}
}

func TestPlaceBet_InsufficientFunds(t *testing.T) {
	repo := newStubRepo()
	repo.profiles[1] = models.UserProfile{UserID: 1, Bankroll: decimal.NewFromInt(40)}
	svc := newTestBetService(repo)

	_, err := svc.PlaceBet(context.Background(), PlaceBetInput{
		UserID: 1,
		Amount: decimal.NewFromInt(100),
		Odds:   -110,
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err=%v want ErrInsufficientFunds", err)
	}
	if len(repo.bets) != 0 {
		t.Fatalf("bet recorded despite rejection")
	}
}

func TestPlaceBet_CoolOffRejected(t *testing.T) {
	end := time.Now().UTC().Add(48 * time.Hour)
	repo := newStubRepo()
	repo.profiles[1] = models.UserProfile{UserID: 1, Bankroll: decimal.NewFromInt(500), CoolOffEnd: &end}
	svc := newTestBetService(repo)

	_, err := svc.PlaceBet(context.Background(), PlaceBetInput{
		UserID: 1,
		Amount: decimal.NewFromInt(10),
		Odds:   150,
	})
	if !errors.Is(err, ErrCoolOffActive) {
		t.Fatalf("err=%v want ErrCoolOffActive", err)
	}
}

func TestPlaceBet_ValidatesInput(t *testing.T) {
	svc := newTestBetService(newStubRepo())
	if _, err := svc.PlaceBet(context.Background(), PlaceBetInput{UserID: 1, Amount: decimal.Zero, Odds: 100}); !errors.Is(err, ErrInvalidStake) {
		t.Fatalf("err=%v want ErrInvalidStake", err)
	}
	if _, err := svc.PlaceBet(context.Background(), PlaceBetInput{UserID: 1, Amount: decimal.NewFromInt(10), Odds: 0}); !errors.Is(err, ErrInvalidOdds) {
		t.Fatalf("err=%v want ErrInvalidOdds", err)
	}
}

func TestSettleBet_OwnershipEnforced(t *testing.T) {
	repo := newStubRepo()
	repo.profiles[1] = models.UserProfile{UserID: 1, Bankroll: decimal.NewFromInt(500)}
	svc := newTestBetService(repo)

	bet, err := svc.PlaceBet(context.Background(), PlaceBetInput{
		UserID: 1,
		Amount: decimal.NewFromInt(50),
		Odds:   -110,
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if _, err := svc.SettleBet(context.Background(), 2, bet.ID, models.OutcomeWin); !errors.Is(err, settlement.ErrNotOwner) {
		t.Fatalf("err=%v want ErrNotOwner", err)
	}
	if _, err := svc.SettleBet(context.Background(), 1, bet.ID, models.OutcomeWin); err != nil {
		t.Fatalf("owner settle: %v", err)
	}
}

func TestDepositAndWithdraw(t *testing.T) {
	repo := newStubRepo()
	svc := &BankrollService{Repo: repo, Locks: settlement.NewUserLocks()}

	profile, err := svc.Deposit(context.Background(), 1, decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if profile.BaselineBankroll.Cmp(decimal.NewFromInt(1000)) != 0 {
		t.Fatalf("baseline=%s want=1000 on first deposit", profile.BaselineBankroll.String())
	}

	profile, err = svc.Deposit(context.Background(), 1, decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("second deposit: %v", err)
	}
	if profile.Bankroll.Cmp(decimal.NewFromInt(1500)) != 0 {
		t.Fatalf("bankroll=%s want=1500", profile.Bankroll.String())
	}
	if profile.BaselineBankroll.Cmp(decimal.NewFromInt(1000)) != 0 {
		t.Fatalf("baseline changed on second deposit")
	}

	if _, err := svc.Withdraw(context.Background(), 1, decimal.NewFromInt(2000)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err=%v want ErrInsufficientFunds", err)
	}
	profile, err = svc.Withdraw(context.Background(), 1, decimal.NewFromInt(300))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if profile.Bankroll.Cmp(decimal.NewFromInt(1200)) != 0 {
		t.Fatalf("bankroll=%s want=1200", profile.Bankroll.String())
	}

	if len(repo.txns) != 3 {
		t.Fatalf("ledger rows=%d want=3", len(repo.txns))
	}
	last := repo.txns[2]
	if last.Type != models.TransactionWithdrawal || last.BalanceAfter.Cmp(decimal.NewFromInt(1200)) != 0 {
		t.Fatalf("last txn=%+v want withdrawal with balance_after=1200", last)
	}
}

func TestSuggestStake_FractionalKelly(t *testing.T) {
	repo := newStubRepo()
	repo.profiles[1] = models.UserProfile{
		UserID:          1,
		Bankroll:        decimal.NewFromInt(1000),
		KellyMultiplier: 0.25,
	}
	svc := &BankrollService{Repo: repo, Locks: settlement.NewUserLocks()}

	// 55% at +100: full kelly = 0.10, quarter kelly = 0.025 of bankroll.
	stake, err := svc.SuggestStake(context.Background(), 1, 0.55, 100)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if stake.Cmp(decimal.RequireFromString("25")) != 0 {
		t.Fatalf("stake=%s want=25", stake.String())
	}

	// No edge at all suggests zero.
	stake, err = svc.SuggestStake(context.Background(), 1, 0.40, -110)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if !stake.IsZero() {
		t.Fatalf("stake=%s want=0 with negative edge", stake.String())
	}
}
