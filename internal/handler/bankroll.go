package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"courtside/internal/repository"
	"courtside/internal/service"
)

type BankrollHandler struct {
	Bankroll *service.BankrollService
}

func (h *BankrollHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/bankroll")
	group.GET("/:user_id", h.profile)
	group.POST("/:user_id/deposit", h.deposit)
	group.POST("/:user_id/withdraw", h.withdraw)
	group.GET("/:user_id/transactions", h.transactions)
	group.POST("/:user_id/cool-off", h.coolOff)
	group.GET("/:user_id/suggest-stake", h.suggestStake)
}

func (h *BankrollHandler) profile(c *gin.Context) {
	userID, ok := parseUint(c.Param("user_id"))
	if !ok {
		Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	profile, err := h.Bankroll.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			Error(c, http.StatusNotFound, "profile not found", nil)
			return
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, profile, nil)
}

type amountRequest struct {
	Amount string `json:"amount"`
}

func (h *BankrollHandler) deposit(c *gin.Context) {
	userID, ok := parseUint(c.Param("user_id"))
	if !ok {
		Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	amount, ok := bindAmount(c)
	if !ok {
		return
	}
	profile, err := h.Bankroll.Deposit(c.Request.Context(), userID, amount)
	if err != nil {
		Error(c, bankrollErrStatus(err), err.Error(), nil)
		return
	}
	Ok(c, profile, nil)
}

func (h *BankrollHandler) withdraw(c *gin.Context) {
	userID, ok := parseUint(c.Param("user_id"))
	if !ok {
		Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	amount, ok := bindAmount(c)
	if !ok {
		return
	}
	profile, err := h.Bankroll.Withdraw(c.Request.Context(), userID, amount)
	if err != nil {
		Error(c, bankrollErrStatus(err), err.Error(), nil)
		return
	}
	Ok(c, profile, nil)
}

func (h *BankrollHandler) transactions(c *gin.Context) {
	userID, ok := parseUint(c.Param("user_id"))
	if !ok {
		Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	params := repository.ListTransactionsParams{
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
		UserID: &userID,
	}
	if s := strings.TrimSpace(c.Query("type")); s != "" {
		params.Type = &s
	}
	items, err := h.Bankroll.ListTransactions(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

type coolOffRequest struct {
	Duration string `json:"duration"` // Go duration, e.g. "72h"; "0" clears
}

func (h *BankrollHandler) coolOff(c *gin.Context) {
	userID, ok := parseUint(c.Param("user_id"))
	if !ok {
		Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	var req coolOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	d, err := time.ParseDuration(strings.TrimSpace(req.Duration))
	if err != nil || d < 0 {
		Error(c, http.StatusBadRequest, "invalid duration", nil)
		return
	}
	profile, err := h.Bankroll.SetCoolOff(c.Request.Context(), userID, d)
	if err != nil {
		Error(c, bankrollErrStatus(err), err.Error(), nil)
		return
	}
	Ok(c, profile, nil)
}

func (h *BankrollHandler) suggestStake(c *gin.Context) {
	userID, ok := parseUint(c.Param("user_id"))
	if !ok {
		Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	winProb := queryFloat(c, "win_prob")
	odds := queryInt(c, "odds", 0)
	stake, err := h.Bankroll.SuggestStake(c.Request.Context(), userID, winProb, odds)
	if err != nil {
		Error(c, bankrollErrStatus(err), err.Error(), nil)
		return
	}
	Ok(c, gin.H{"stake": stake}, nil)
}

func bindAmount(c *gin.Context) (decimal.Decimal, bool) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid amount", nil)
		return decimal.Zero, false
	}
	return amount, true
}

func bankrollErrStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrProfileNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
