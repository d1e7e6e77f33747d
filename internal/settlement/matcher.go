package settlement

import (
	"strings"

	"courtside/internal/models"
)

// Match confidence tiers. Only scoreExact pairings settle automatically;
// everything below is filed for manual confirmation.
const (
	scoreExact       = 100
	scoreTeamField   = 90
	scoreDescription = 75
	scorePartial     = 60
	scoreNone        = 50
)

func equalTeam(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// MatchScore rates how confidently a bet can be paired with a game when the
// bet carries no game id. The best score across the game's two teams wins.
func MatchScore(bet models.Bet, game models.Game) int {
	best := scoreNone
	for _, team := range []string{game.HomeTeam, game.AwayTeam} {
		if team == "" {
			continue
		}
		if s := sideScore(bet, team); s > best {
			best = s
		}
	}
	return best
}

func sideScore(bet models.Bet, team string) int {
	teamLower := strings.ToLower(strings.TrimSpace(team))
	if bet.TeamBetOn != nil && *bet.TeamBetOn != "" {
		side := strings.ToLower(strings.TrimSpace(*bet.TeamBetOn))
		if side == teamLower {
			return scoreExact
		}
		if strings.Contains(side, teamLower) {
			return scoreTeamField
		}
		if strings.Contains(teamLower, side) {
			return scorePartial
		}
	}
	if bet.Description != "" && strings.Contains(strings.ToLower(bet.Description), teamLower) {
		return scoreDescription
	}
	return scoreNone
}

// BestMatch returns the highest-scoring final game for a bet, or nil when no
// final game scores above the floor.
func BestMatch(bet models.Bet, games []models.Game) (*models.Game, int) {
	var best *models.Game
	bestScore := scoreNone
	for i := range games {
		if games[i].Status != models.GameFinal {
			continue
		}
		score := MatchScore(bet, games[i])
		if score > bestScore {
			best = &games[i]
			bestScore = score
		}
	}
	return best, bestScore
}
