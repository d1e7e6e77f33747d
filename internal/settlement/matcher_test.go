package settlement

import (
	"testing"

	"courtside/internal/models"
)

func strp(s string) *string { return &s }

func TestMatchScore_ExactTeam(t *testing.T) {
	bet := models.Bet{TeamBetOn: strp("Lakers")}
	game := models.Game{HomeTeam: "Lakers", AwayTeam: "Celtics", Status: models.GameFinal}
	if got := MatchScore(bet, game); got != 100 {
		t.Fatalf("score=%d want=100", got)
	}
}

func TestMatchScore_TeamFieldContains(t *testing.T) {
	bet := models.Bet{TeamBetOn: strp("Los Angeles Lakers")}
	game := models.Game{HomeTeam: "Lakers", AwayTeam: "Celtics", Status: models.GameFinal}
	if got := MatchScore(bet, game); got != 90 {
		t.Fatalf("score=%d want=90", got)
	}
}

func TestMatchScore_DescriptionContains(t *testing.T) {
	bet := models.Bet{Description: "Celtics ML vs Lakers tonight"}
	game := models.Game{HomeTeam: "Lakers", AwayTeam: "Celtics", Status: models.GameFinal}
	if got := MatchScore(bet, game); got != 75 {
		t.Fatalf("score=%d want=75", got)
	}
}

func TestMatchScore_PartialTeam(t *testing.T) {
	bet := models.Bet{TeamBetOn: strp("Lakers")}
	game := models.Game{HomeTeam: "Los Angeles Lakers", AwayTeam: "Boston Celtics", Status: models.GameFinal}
	if got := MatchScore(bet, game); got != 60 {
		t.Fatalf("score=%d want=60", got)
	}
}

func TestMatchScore_NoSignal(t *testing.T) {
	bet := models.Bet{Description: "parlay leg 3"}
	game := models.Game{HomeTeam: "Lakers", AwayTeam: "Celtics", Status: models.GameFinal}
	if got := MatchScore(bet, game); got != 50 {
		t.Fatalf("score=%d want=50", got)
	}
}

func TestBestMatch_PrefersHighestScore(t *testing.T) {
	bet := models.Bet{TeamBetOn: strp("Celtics")}
	games := []models.Game{
		{ID: "g1", HomeTeam: "Warriors", AwayTeam: "Suns", Status: models.GameFinal},
		{ID: "g2", HomeTeam: "Lakers", AwayTeam: "Celtics", Status: models.GameFinal},
		{ID: "g3", HomeTeam: "Knicks", AwayTeam: "Nets", Status: models.GameInProgress},
	}
	game, score := BestMatch(bet, games)
	if game == nil || game.ID != "g2" {
		t.Fatalf("game=%v want g2", game)
	}
	if score != 100 {
		t.Fatalf("score=%d want=100", score)
	}
}

func TestBestMatch_IgnoresNonFinalGames(t *testing.T) {
	bet := models.Bet{TeamBetOn: strp("Celtics")}
	games := []models.Game{
		{ID: "g1", HomeTeam: "Lakers", AwayTeam: "Celtics", Status: models.GameInProgress},
	}
	game, _ := BestMatch(bet, games)
	if game != nil {
		t.Fatalf("game=%v want nil", game)
	}
}

func TestDeriveOutcome(t *testing.T) {
	winner := "Lakers"
	game := models.Game{ID: "g1", HomeTeam: "Lakers", AwayTeam: "Celtics", Status: models.GameFinal, WinningTeam: &winner}

	if outcome, ok := DeriveOutcome(models.Bet{TeamBetOn: strp("lakers")}, game); !ok || outcome != models.OutcomeWin {
		t.Fatalf("outcome=%q ok=%v want win", outcome, ok)
	}
	if outcome, ok := DeriveOutcome(models.Bet{TeamBetOn: strp("Celtics")}, game); !ok || outcome != models.OutcomeLoss {
		t.Fatalf("outcome=%q ok=%v want loss", outcome, ok)
	}

	tie := game
	tie.WinningTeam = nil
	if outcome, ok := DeriveOutcome(models.Bet{TeamBetOn: strp("Lakers")}, tie); !ok || outcome != models.OutcomePush {
		t.Fatalf("outcome=%q ok=%v want push", outcome, ok)
	}

	if _, ok := DeriveOutcome(models.Bet{}, game); ok {
		t.Fatalf("expected no derivation for bet without a side")
	}
}
