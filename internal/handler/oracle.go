package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"adaura-rewards/internal/model"
	"adaura-rewards/internal/pkg/lock"
	"adaura-rewards/internal/service"
)

// OracleClient produces the paid fortune-teller texts.
type OracleClient interface {
	FinancialAdvice(ctx context.Context) string
	LuckyNumber(ctx context.Context) string
}

// OracleHandler charges for and serves oracle consultations.
type OracleHandler struct {
	accounts   *service.AccountService
	oracle     OracleClient
	locks      *lock.UserLock
	adviceCost int64
	luckyCost  int64
}

// NewOracleHandler creates a new OracleHandler instance.
func NewOracleHandler(accounts *service.AccountService, oracle OracleClient, locks *lock.UserLock, adviceCost, luckyCost int64) *OracleHandler {
	return &OracleHandler{
		accounts:   accounts,
		oracle:     oracle,
		locks:      locks,
		adviceCost: adviceCost,
		luckyCost:  luckyCost,
	}
}

// Advice charges the advice fee and returns a money tip.
func (h *OracleHandler) Advice(ctx *gin.Context) {
	h.consult(ctx, h.adviceCost, "oracle financial advice", h.oracle.FinancialAdvice)
}

// Lucky charges the lucky-number fee and returns a reading.
func (h *OracleHandler) Lucky(ctx *gin.Context) {
	h.consult(ctx, h.luckyCost, "oracle lucky number", h.oracle.LuckyNumber)
}

// consult deducts the fee, then asks the oracle. The external call runs
// after payment; a provider failure still answers with the oracle's own
// fallback text, so the user always gets a reading for their points.
func (h *OracleHandler) consult(ctx *gin.Context, cost int64, description string, ask func(context.Context) string) {
	identity := identityFrom(ctx)

	var balance int64
	err := h.locks.WithLock(identity, func() error {
		user, err := h.accounts.GetUser(ctx.Request.Context(), identity)
		if err != nil {
			return err
		}
		if user.Points < cost {
			return errInsufficientPoints
		}
		user, err = h.accounts.UpdatePoints(ctx.Request.Context(), identity, -cost, model.TxTypeOracle, description)
		if err != nil {
			return err
		}
		balance = user.Points
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, errInsufficientPoints):
			fail(ctx, http.StatusBadRequest, 40011, "not enough points")
		case errors.Is(err, service.ErrUserNotFound):
			fail(ctx, http.StatusNotFound, 40401, "account not found")
		default:
			log.Error().Err(err).Str("identity", identity).Msg("Oracle consultation failed")
			fail(ctx, http.StatusInternalServerError, 50060, "failed to consult the oracle")
		}
		return
	}

	text := ask(ctx.Request.Context())

	success(ctx, gin.H{
		"text":   text,
		"cost":   cost,
		"points": balance,
	})
}

var errInsufficientPoints = errors.New("insufficient points")
