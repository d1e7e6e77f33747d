package alert

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"courtside/internal/models"
	"courtside/internal/repository"
)

// Dispatcher fans a batch of candidate alerts out to every user whose
// preferences accept them and persists the survivors as notification rows.
// Per candidate the filters run in a fixed order, cheapest first: type
// toggle, numeric threshold, favorites intersection, daily cap, quiet
// hours. The first rejecting filter wins; later filters never see the
// candidate.
type Dispatcher struct {
	Repo   repository.Repository
	Logger *zap.Logger

	// Location anchors quiet hours and the daily-cap midnight.
	Location *time.Location
	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

// Dispatch filters candidates against every user's preferences and bulk-
// inserts the notifications that pass, one write per user. It returns the
// number of notifications written. A failed write for one user is logged
// and skipped; other users' batches still land.
func (d *Dispatcher) Dispatch(ctx context.Context, alerts []models.Alert) (int, error) {
	if d == nil || d.Repo == nil || len(alerts) == 0 {
		return 0, nil
	}
	now := d.now()

	live := alerts[:0:0]
	for _, a := range alerts {
		if !a.Expired(now) {
			live = append(live, a)
		}
	}
	if len(live) == 0 {
		return 0, nil
	}

	prefs, err := d.Repo.ListAlertPreferences(ctx)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, pref := range prefs {
		batch := d.userBatch(ctx, pref, live, now)
		if len(batch) == 0 {
			continue
		}
		if err := d.Repo.InsertNotifications(ctx, batch); err != nil {
			if d.Logger != nil {
				d.Logger.Warn("notification batch write failed",
					zap.Uint64("user_id", pref.UserID),
					zap.Int("count", len(batch)),
					zap.Error(err),
				)
			}
			continue
		}
		written += len(batch)
	}

	if d.Logger != nil {
		d.Logger.Info("alert batch dispatched",
			zap.Int("candidates", len(live)),
			zap.Int("users", len(prefs)),
			zap.Int("written", written),
		)
	}
	return written, nil
}

// userBatch runs one user's filter pipeline over the candidate set. The
// daily cap counts already-persisted notifications since local midnight
// plus everything accepted earlier in this same batch.
func (d *Dispatcher) userBatch(ctx context.Context, pref models.AlertPreference, alerts []models.Alert, now time.Time) []models.Notification {
	local := now.In(d.location())

	if inQuietHours(pref, local) {
		return nil
	}

	maxPerDay := pref.MaxAlertsPerDay
	if maxPerDay <= 0 {
		maxPerDay = 10
	}
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, d.location())
	sent, err := d.Repo.CountNotificationsSince(ctx, pref.UserID, midnight.UTC())
	if err != nil {
		if d.Logger != nil {
			d.Logger.Warn("daily cap lookup failed", zap.Uint64("user_id", pref.UserID), zap.Error(err))
		}
		return nil
	}

	sports := parseStringList(pref.FavoriteSports)
	teams := parseStringList(pref.FavoriteTeams)

	var batch []models.Notification
	for _, a := range alerts {
		if int(sent)+len(batch) >= maxPerDay {
			break
		}
		if !typeEnabled(pref, a.AlertType) {
			continue
		}
		if !meetsThreshold(pref, a) {
			continue
		}
		if !matchesFavorites(sports, teams, a) {
			continue
		}
		batch = append(batch, models.Notification{
			ID:        uuid.New(),
			UserID:    pref.UserID,
			AlertType: a.AlertType,
			Priority:  a.Priority,
			Title:     a.Title,
			Message:   a.Message,
			GameID:    a.GameID,
			CreatedAt: now,
		})
	}
	return batch
}

// typeEnabled maps an alert type onto the user's toggles. Unknown types are
// rejected rather than delivered to everyone.
func typeEnabled(pref models.AlertPreference, alertType string) bool {
	switch alertType {
	case models.AlertPositiveEV:
		return pref.PositiveEVAlerts
	case models.AlertClosingLine:
		return pref.ClosingLineAlerts
	case models.AlertLineMove:
		return pref.LineMoveAlerts
	case models.AlertSteamMove:
		return pref.SteamAlerts
	case models.AlertInjury:
		return pref.InjuryAlerts
	default:
		return false
	}
}

// meetsThreshold checks the type-specific numeric floor. Injury alerts have
// no numeric dimension and always pass.
func meetsThreshold(pref models.AlertPreference, a models.Alert) bool {
	switch a.AlertType {
	case models.AlertPositiveEV, models.AlertClosingLine:
		return a.Data.EdgePct >= pref.MinEdgePct
	case models.AlertLineMove:
		move := a.Data.LineMovePts
		if move < 0 {
			move = -move
		}
		return move >= pref.MinLineMovePts
	case models.AlertSteamMove:
		return a.Data.SteamBookCount >= pref.MinSteamVelocity
	default:
		return true
	}
}

// matchesFavorites applies the favorites filter: with no favorites
// configured everything passes; otherwise the alert's sport/league or
// either team must intersect the combined favorites.
func matchesFavorites(sports, teams []string, a models.Alert) bool {
	if len(sports) == 0 && len(teams) == 0 {
		return true
	}
	if containsFold(sports, a.Sport) || containsFold(sports, a.League) {
		return true
	}
	return containsFold(teams, a.HomeTeam) || containsFold(teams, a.AwayTeam)
}

// inQuietHours tests the local minute-of-day against the user's quiet
// window. start > end means the window wraps midnight.
func inQuietHours(pref models.AlertPreference, local time.Time) bool {
	if pref.QuietHoursStart == nil || pref.QuietHoursEnd == nil {
		return false
	}
	start, end := *pref.QuietHoursStart, *pref.QuietHoursEnd
	if start == end {
		return false
	}
	m := local.Hour()*60 + local.Minute()
	if start > end {
		return m >= start || m < end
	}
	return m >= start && m < end
}

func parseStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}

func (d *Dispatcher) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.UTC
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
