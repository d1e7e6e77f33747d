package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"courtside/internal/admission"
	"courtside/internal/repository"
	"courtside/internal/risklimit"
)

type LimitHandler struct {
	Repo   repository.Repository
	Limits *risklimit.Store
	Gate   *admission.Gate
}

func (h *LimitHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/limits")
	group.GET("/:user_id", h.get)
	group.PUT("/:user_id", h.set)
	group.GET("/:user_id/check", h.check)
}

func (h *LimitHandler) get(c *gin.Context) {
	userID, ok := parseUint(c.Param("user_id"))
	if !ok {
		Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	rl, err := h.Repo.GetRiskLimit(c.Request.Context(), userID)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if rl == nil {
		Error(c, http.StatusNotFound, "no limits configured", nil)
		return
	}
	Ok(c, rl, nil)
}

type setLimitsRequest struct {
	DailyLimit   *string `json:"daily_limit"`
	WeeklyLimit  *string `json:"weekly_limit"`
	MonthlyLimit *string `json:"monthly_limit"`
}

func (h *LimitHandler) set(c *gin.Context) {
	userID, ok := parseUint(c.Param("user_id"))
	if !ok {
		Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	var req setLimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	daily, ok := parseLimit(req.DailyLimit)
	if !ok {
		Error(c, http.StatusBadRequest, "invalid daily_limit", nil)
		return
	}
	weekly, ok := parseLimit(req.WeeklyLimit)
	if !ok {
		Error(c, http.StatusBadRequest, "invalid weekly_limit", nil)
		return
	}
	monthly, ok := parseLimit(req.MonthlyLimit)
	if !ok {
		Error(c, http.StatusBadRequest, "invalid monthly_limit", nil)
		return
	}
	rl, err := h.Limits.SetLimits(c.Request.Context(), userID, daily, weekly, monthly, time.Now().UTC())
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, rl, nil)
}

// check answers whether a candidate stake would be admitted right now. It is
// read-only; placing the bet re-checks under the user's lock.
func (h *LimitHandler) check(c *gin.Context) {
	userID, ok := parseUint(c.Param("user_id"))
	if !ok {
		Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	stake, err := decimal.NewFromString(strings.TrimSpace(c.Query("stake")))
	if err != nil || !stake.IsPositive() {
		Error(c, http.StatusBadRequest, "invalid stake", nil)
		return
	}
	decision, err := h.Gate.CanPlaceBet(c.Request.Context(), userID, stake, time.Now().UTC())
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, decision, nil)
}

// parseLimit maps an absent or empty value to an unset limit.
func parseLimit(p *string) (*decimal.Decimal, bool) {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil, true
	}
	v, err := decimal.NewFromString(strings.TrimSpace(*p))
	if err != nil || !v.IsPositive() {
		return nil, false
	}
	return &v, true
}
