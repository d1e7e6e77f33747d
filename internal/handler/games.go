package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"courtside/internal/models"
	"courtside/internal/repository"
)

type GameHandler struct {
	Repo repository.Repository
}

func (h *GameHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/games")
	group.GET("", h.list)
	group.GET("/:id", h.get)
	group.PUT("/:id", h.upsert)
}

func (h *GameHandler) list(c *gin.Context) {
	params := repository.ListGamesParams{
		Limit:   queryInt(c, "limit", 50),
		Offset:  queryInt(c, "offset", 0),
		OrderBy: c.Query("order_by"),
	}
	if s := strings.TrimSpace(c.Query("status")); s != "" {
		params.Status = &s
	}
	if s := strings.TrimSpace(c.Query("sport")); s != "" {
		params.Sport = &s
	}
	if s := c.Query("asc"); s != "" {
		params.Asc = boolPtr(s == "true" || s == "1")
	}
	items, err := h.Repo.ListGames(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

func (h *GameHandler) get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		Error(c, http.StatusBadRequest, "invalid game id", nil)
		return
	}
	game, err := h.Repo.GetGameByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if game == nil {
		Error(c, http.StatusNotFound, "game not found", nil)
		return
	}
	Ok(c, game, nil)
}

type upsertGameRequest struct {
	Sport       string  `json:"sport"`
	League      string  `json:"league"`
	HomeTeam    string  `json:"home_team"`
	AwayTeam    string  `json:"away_team"`
	HomeScore   int     `json:"home_score"`
	AwayScore   int     `json:"away_score"`
	Status      string  `json:"status"` // scheduled|in_progress|final
	WinningTeam *string `json:"winning_team"`
	StartsAt    *string `json:"starts_at"` // RFC3339
}

// upsert mirrors a game record pushed by the score feed. Final games become
// visible to the next settlement pass; no settlement happens inline.
func (h *GameHandler) upsert(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		Error(c, http.StatusBadRequest, "invalid game id", nil)
		return
	}
	var req upsertGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	switch status {
	case models.GameScheduled, models.GameInProgress, models.GameFinal:
	default:
		Error(c, http.StatusBadRequest, "status must be scheduled|in_progress|final", nil)
		return
	}
	game := &models.Game{
		ID:                id,
		Sport:             strings.TrimSpace(req.Sport),
		League:            strings.TrimSpace(req.League),
		HomeTeam:          strings.TrimSpace(req.HomeTeam),
		AwayTeam:          strings.TrimSpace(req.AwayTeam),
		HomeScore:         req.HomeScore,
		AwayScore:         req.AwayScore,
		Status:            status,
		WinningTeam:       trimPtr(req.WinningTeam),
		ExternalUpdatedAt: time.Now().UTC(),
	}
	if req.StartsAt != nil && strings.TrimSpace(*req.StartsAt) != "" {
		if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.StartsAt)); err == nil {
			utc := ts.UTC()
			game.StartsAt = &utc
		}
	}
	if err := h.Repo.UpsertGame(c.Request.Context(), game); err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, game, nil)
}
