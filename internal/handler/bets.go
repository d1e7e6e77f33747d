package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"courtside/internal/repository"
	"courtside/internal/service"
	"courtside/internal/settlement"
)

type BetHandler struct {
	Bets *service.BetService
}

func (h *BetHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/bets")
	group.POST("", h.place)
	group.GET("", h.list)
	group.GET("/:id", h.get)
	group.POST("/:id/settle", h.settle)

	reviews := r.Group("/api/v1/reviews")
	reviews.GET("", h.listReviews)
	reviews.POST("/:id/confirm", h.confirmReview)
	reviews.POST("/:id/dismiss", h.dismissReview)
}

type placeBetRequest struct {
	UserID      uint64  `json:"user_id"`
	Amount      string  `json:"amount"`
	Odds        int     `json:"odds"`
	Description string  `json:"description"`
	TeamBetOn   *string `json:"team_bet_on"`
	GameID      *string `json:"game_id"`
}

func (h *BetHandler) place(c *gin.Context) {
	var req placeBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if req.UserID == 0 {
		Error(c, http.StatusBadRequest, "user_id required", nil)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid amount", nil)
		return
	}
	bet, err := h.Bets.PlaceBet(c.Request.Context(), service.PlaceBetInput{
		UserID:      req.UserID,
		Amount:      amount,
		Odds:        req.Odds,
		Description: strings.TrimSpace(req.Description),
		TeamBetOn:   trimPtr(req.TeamBetOn),
		GameID:      trimPtr(req.GameID),
	})
	if err != nil {
		status, msg := placeErrStatus(err)
		Error(c, status, msg, nil)
		return
	}
	Ok(c, bet, nil)
}

func (h *BetHandler) get(c *gin.Context) {
	userID, ok := parseUint(c.Query("user_id"))
	if !ok {
		Error(c, http.StatusBadRequest, "user_id required", nil)
		return
	}
	betID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid bet id", nil)
		return
	}
	bet, err := h.Bets.GetBet(c.Request.Context(), userID, betID)
	if err != nil {
		switch {
		case errors.Is(err, settlement.ErrBetNotFound):
			Error(c, http.StatusNotFound, "bet not found", nil)
		case errors.Is(err, settlement.ErrNotOwner):
			Error(c, http.StatusForbidden, "bet does not belong to user", nil)
		default:
			Error(c, http.StatusInternalServerError, err.Error(), nil)
		}
		return
	}
	Ok(c, bet, nil)
}

func (h *BetHandler) list(c *gin.Context) {
	params := repository.ListBetsParams{
		Limit:   queryInt(c, "limit", 50),
		Offset:  queryInt(c, "offset", 0),
		OrderBy: c.Query("order_by"),
	}
	if v, ok := parseUint(c.Query("user_id")); ok {
		params.UserID = &v
	}
	if s := strings.TrimSpace(c.Query("outcome")); s != "" {
		params.Outcome = &s
	}
	if s := strings.TrimSpace(c.Query("game_id")); s != "" {
		params.GameID = &s
	}
	if s := c.Query("asc"); s != "" {
		params.Asc = boolPtr(s == "true" || s == "1")
	}
	items, total, err := h.Bets.ListBets(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"total": total, "limit": params.Limit, "offset": params.Offset})
}

type settleBetRequest struct {
	UserID  uint64 `json:"user_id"`
	Outcome string `json:"outcome"` // win|loss|push
}

func (h *BetHandler) settle(c *gin.Context) {
	betID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid bet id", nil)
		return
	}
	var req settleBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if req.UserID == 0 {
		Error(c, http.StatusBadRequest, "user_id required", nil)
		return
	}
	bet, err := h.Bets.SettleBet(c.Request.Context(), req.UserID, betID, strings.ToLower(strings.TrimSpace(req.Outcome)))
	if err != nil {
		status, msg := settleErrStatus(err)
		Error(c, status, msg, nil)
		return
	}
	Ok(c, bet, nil)
}

func (h *BetHandler) listReviews(c *gin.Context) {
	params := repository.ListReviewsParams{
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	if s := strings.TrimSpace(c.Query("status")); s != "" {
		params.Status = &s
	}
	items, err := h.Bets.ListReviews(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

func (h *BetHandler) confirmReview(c *gin.Context) {
	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid review id", nil)
		return
	}
	bet, err := h.Bets.ConfirmReview(c.Request.Context(), reviewID)
	if err != nil {
		status, msg := settleErrStatus(err)
		Error(c, status, msg, nil)
		return
	}
	Ok(c, bet, nil)
}

func (h *BetHandler) dismissReview(c *gin.Context) {
	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid review id", nil)
		return
	}
	if err := h.Bets.DismissReview(c.Request.Context(), reviewID); err != nil {
		status, msg := settleErrStatus(err)
		Error(c, status, msg, nil)
		return
	}
	Ok(c, gin.H{"dismissed": true}, nil)
}

func placeErrStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidStake), errors.Is(err, service.ErrInvalidOdds):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrCoolOffActive),
		errors.Is(err, service.ErrLimitExceeded),
		errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, service.ErrProfileNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func settleErrStatus(err error) (int, string) {
	switch {
	case errors.Is(err, settlement.ErrInvalidOutcome):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, settlement.ErrBetNotFound),
		errors.Is(err, settlement.ErrReviewNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, settlement.ErrNotOwner):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, settlement.ErrAlreadySettled),
		errors.Is(err, settlement.ErrReviewNotOpen):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}
