package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"courtside/internal/alert"
	"courtside/internal/models"
	"courtside/internal/repository"
)

type AlertHandler struct {
	Repo       repository.Repository
	Dispatcher *alert.Dispatcher
}

func (h *AlertHandler) Register(r *gin.Engine) {
	r.POST("/api/v1/alerts/dispatch", h.dispatch)

	prefs := r.Group("/api/v1/preferences")
	prefs.GET("/:user_id", h.getPreference)
	prefs.PUT("/:user_id", h.setPreference)

	notifs := r.Group("/api/v1/notifications")
	notifs.GET("/:user_id", h.listNotifications)
}

type dispatchRequest struct {
	Alerts []models.Alert `json:"alerts"`
}

// dispatch accepts a batch of candidate alerts from the alert source and
// fans them out through every user's preference pipeline.
func (h *AlertHandler) dispatch(c *gin.Context) {
	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if len(req.Alerts) == 0 {
		Error(c, http.StatusBadRequest, "alerts required", nil)
		return
	}
	written, err := h.Dispatcher.Dispatch(c.Request.Context(), req.Alerts)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"candidates": len(req.Alerts), "written": written}, nil)
}

func (h *AlertHandler) getPreference(c *gin.Context) {
	userID, ok := parseUint(c.Param("user_id"))
	if !ok {
		Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	pref, err := h.Repo.GetAlertPreference(c.Request.Context(), userID)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if pref == nil {
		Error(c, http.StatusNotFound, "preferences not found", nil)
		return
	}
	Ok(c, pref, nil)
}

type setPreferenceRequest struct {
	PositiveEVAlerts  bool `json:"positive_ev_alerts"`
	LineMoveAlerts    bool `json:"line_move_alerts"`
	SteamAlerts       bool `json:"steam_alerts"`
	InjuryAlerts      bool `json:"injury_alerts"`
	ClosingLineAlerts bool `json:"closing_line_alerts"`

	MinEdgePct       float64 `json:"min_edge_pct"`
	MinLineMovePts   float64 `json:"min_line_move_pts"`
	MinSteamVelocity float64 `json:"min_steam_velocity"`

	FavoriteSports []string `json:"favorite_sports"`
	FavoriteTeams  []string `json:"favorite_teams"`

	QuietHoursStart *int `json:"quiet_hours_start"`
	QuietHoursEnd   *int `json:"quiet_hours_end"`

	MaxAlertsPerDay int `json:"max_alerts_per_day"`
}

func (h *AlertHandler) setPreference(c *gin.Context) {
	userID, ok := parseUint(c.Param("user_id"))
	if !ok {
		Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	var req setPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if !validQuietMinutes(req.QuietHoursStart) || !validQuietMinutes(req.QuietHoursEnd) {
		Error(c, http.StatusBadRequest, "quiet hours must be minutes in [0,1440)", nil)
		return
	}
	if req.MaxAlertsPerDay <= 0 {
		req.MaxAlertsPerDay = 10
	}
	sportsJSON, _ := json.Marshal(req.FavoriteSports)
	teamsJSON, _ := json.Marshal(req.FavoriteTeams)
	pref := &models.AlertPreference{
		UserID:            userID,
		PositiveEVAlerts:  req.PositiveEVAlerts,
		LineMoveAlerts:    req.LineMoveAlerts,
		SteamAlerts:       req.SteamAlerts,
		InjuryAlerts:      req.InjuryAlerts,
		ClosingLineAlerts: req.ClosingLineAlerts,
		MinEdgePct:        req.MinEdgePct,
		MinLineMovePts:    req.MinLineMovePts,
		MinSteamVelocity:  req.MinSteamVelocity,
		FavoriteSports:    datatypes.JSON(sportsJSON),
		FavoriteTeams:     datatypes.JSON(teamsJSON),
		QuietHoursStart:   req.QuietHoursStart,
		QuietHoursEnd:     req.QuietHoursEnd,
		MaxAlertsPerDay:   req.MaxAlertsPerDay,
	}
	if err := h.Repo.UpsertAlertPreference(c.Request.Context(), pref); err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, pref, nil)
}

func (h *AlertHandler) listNotifications(c *gin.Context) {
	userID, ok := parseUint(c.Param("user_id"))
	if !ok {
		Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	params := repository.ListNotificationsParams{
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
		UserID: &userID,
	}
	items, err := h.Repo.ListNotifications(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

func validQuietMinutes(p *int) bool {
	return p == nil || (*p >= 0 && *p < 1440)
}
