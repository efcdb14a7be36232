package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"adaura-rewards/internal/pkg/lock"
	"adaura-rewards/internal/service"
)

// DailyHandler handles the login-streak and daily-bonus endpoints.
type DailyHandler struct {
	accounts *service.AccountService
	locks    *lock.UserLock
}

// NewDailyHandler creates a new DailyHandler instance.
func NewDailyHandler(accounts *service.AccountService, locks *lock.UserLock) *DailyHandler {
	return &DailyHandler{accounts: accounts, locks: locks}
}

// Streak rolls the login streak for today and reports the bonus state.
// The client calls this on every dashboard view.
func (h *DailyHandler) Streak(ctx *gin.Context) {
	identity := identityFrom(ctx)

	var info *service.StreakInfo
	err := h.locks.WithLock(identity, func() error {
		var err error
		info, err = h.accounts.EvaluateLoginStreak(ctx.Request.Context(), identity)
		return err
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			fail(ctx, http.StatusNotFound, 40401, "account not found")
			return
		}
		log.Error().Err(err).Str("identity", identity).Msg("Streak evaluation failed")
		fail(ctx, http.StatusInternalServerError, 50010, "failed to evaluate streak")
		return
	}

	success(ctx, info)
}

// Claim grants today's streak bonus. Claiming twice on the same day
// succeeds with a zero reward.
func (h *DailyHandler) Claim(ctx *gin.Context) {
	identity := identityFrom(ctx)

	var reward int64
	err := h.locks.WithLock(identity, func() error {
		var err error
		reward, err = h.accounts.ClaimDailyBonus(ctx.Request.Context(), identity)
		return err
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			fail(ctx, http.StatusNotFound, 40401, "account not found")
			return
		}
		log.Error().Err(err).Str("identity", identity).Msg("Daily bonus claim failed")
		fail(ctx, http.StatusInternalServerError, 50011, "failed to claim daily bonus")
		return
	}

	success(ctx, gin.H{
		"reward":  reward,
		"claimed": reward > 0,
	})
}
