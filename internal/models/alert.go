package models

import "time"

const (
	AlertPositiveEV  = "positive_ev"
	AlertClosingLine = "closing_line_value"
	AlertLineMove    = "line_move"
	AlertSteamMove   = "steam_move"
	AlertInjury      = "injury"
)

// Alert is a candidate alert supplied by the alert-source collaborator.
// It is a transient value: the dispatcher filters candidates and persists
// only the notifications that pass.
type Alert struct {
	AlertType string     `json:"alert_type"`
	Priority  string     `json:"priority"`
	GameID    *string    `json:"game_id"`
	Sport     string     `json:"sport"`
	League    string     `json:"league"`
	HomeTeam  string     `json:"home_team"`
	AwayTeam  string     `json:"away_team"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Data      AlertData  `json:"data"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// AlertData carries the type-specific numeric fields checked against a
// user's configured minimums.
type AlertData struct {
	EdgePct        float64 `json:"edge_pct"`
	LineMovePts    float64 `json:"line_move_pts"`
	SteamBookCount float64 `json:"steam_book_count"`
}

// Expired reports whether the candidate is past its expiry at now.
func (a Alert) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && a.ExpiresAt.Before(now)
}
