package handler

import (
	"errors"
	"math/rand/v2"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"adaura-rewards/internal/game/scratch"
	"adaura-rewards/internal/game/slot"
	"adaura-rewards/internal/game/wheel"
	"adaura-rewards/internal/model"
	"adaura-rewards/internal/pkg/lock"
	"adaura-rewards/internal/service"
)

// systemRand adapts the process-wide random source to the game packages.
type systemRand struct{}

func (systemRand) IntN(n int) int { return rand.IntN(n) }

// GameHandler handles the wheel, slot, and scratch-card endpoints.
type GameHandler struct {
	accounts *service.AccountService
	rewards  *service.RewardsService
	locks    *lock.UserLock
	rng      wheel.Source
}

// NewGameHandler creates a new GameHandler instance.
func NewGameHandler(accounts *service.AccountService, rewards *service.RewardsService, locks *lock.UserLock) *GameHandler {
	return &GameHandler{
		accounts: accounts,
		rewards:  rewards,
		locks:    locks,
		rng:      systemRand{},
	}
}

// SpinWheel consumes one spin from the daily allowance, spins the wheel,
// and credits the landed segment.
func (h *GameHandler) SpinWheel(ctx *gin.Context) {
	identity := identityFrom(ctx)

	var (
		index int
		value int64
		user  *model.User
	)
	err := h.locks.WithLock(identity, func() error {
		allowed, err := h.rewards.AttemptSpin(ctx.Request.Context(), identity)
		if err != nil {
			return err
		}
		if !allowed {
			return errQuotaExhausted
		}

		index, value = wheel.Spin(h.rng)
		user, err = h.accounts.UpdatePoints(ctx.Request.Context(), identity, value, model.TxTypeWheel, "spin wheel win")
		return err
	})
	if err != nil {
		h.failGame(ctx, identity, err, "daily spin limit reached", "Wheel spin failed")
		return
	}

	success(ctx, gin.H{
		"segmentIndex": index,
		"won":          value,
		"points":       user.Points,
	})
}

// SpinSlot rolls the three reels and credits the payout. The slot machine
// has no daily allowance.
func (h *GameHandler) SpinSlot(ctx *gin.Context) {
	identity := identityFrom(ctx)

	var (
		left, middle, right string
		payout              int64
		user                *model.User
	)
	err := h.locks.WithLock(identity, func() error {
		left, middle, right = slot.Roll(h.rng)
		payout = slot.CalculatePayout(left, middle, right)
		if payout == 0 {
			var err error
			user, err = h.accounts.GetUser(ctx.Request.Context(), identity)
			return err
		}
		var err error
		user, err = h.accounts.UpdatePoints(ctx.Request.Context(), identity, payout, model.TxTypeSlot, "slot machine win")
		return err
	})
	if err != nil {
		h.failGame(ctx, identity, err, "", "Slot spin failed")
		return
	}

	success(ctx, gin.H{
		"reels":  []string{left, middle, right},
		"won":    payout,
		"points": user.Points,
	})
}

type scratchRequest struct {
	RevealedFraction float64 `json:"revealedFraction" binding:"required"`
}

// Scratch redeems a scratch card. The client reports how much of the card
// surface was scratched; a card under the reveal threshold is not redeemable
// and does not consume the daily allowance.
func (h *GameHandler) Scratch(ctx *gin.Context) {
	var req scratchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		fail(ctx, http.StatusBadRequest, 40002, "revealedFraction is required")
		return
	}
	if !scratch.Revealed(req.RevealedFraction) {
		fail(ctx, http.StatusBadRequest, 40003, "card not sufficiently revealed")
		return
	}

	identity := identityFrom(ctx)

	var (
		card scratch.Card
		user *model.User
	)
	err := h.locks.WithLock(identity, func() error {
		allowed, err := h.rewards.AttemptScratch(ctx.Request.Context(), identity)
		if err != nil {
			return err
		}
		if !allowed {
			return errQuotaExhausted
		}

		card = scratch.NewCard(h.rng)
		user, err = h.accounts.UpdatePoints(ctx.Request.Context(), identity, card.Prize, model.TxTypeScratch, "scratch card prize")
		return err
	})
	if err != nil {
		h.failGame(ctx, identity, err, "daily scratch limit reached", "Scratch failed")
		return
	}

	success(ctx, gin.H{
		"prize":  card.Prize,
		"points": user.Points,
	})
}

var errQuotaExhausted = errors.New("daily quota exhausted")

func (h *GameHandler) failGame(ctx *gin.Context, identity string, err error, quotaMsg, logMsg string) {
	switch {
	case errors.Is(err, errQuotaExhausted):
		fail(ctx, http.StatusTooManyRequests, 42901, quotaMsg)
	case errors.Is(err, service.ErrUserNotFound):
		fail(ctx, http.StatusNotFound, 40401, "account not found")
	default:
		log.Error().Err(err).Str("identity", identity).Msg(logMsg)
		fail(ctx, http.StatusInternalServerError, 50020, "game failed")
	}
}
