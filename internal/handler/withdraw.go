package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"adaura-rewards/internal/model"
	"adaura-rewards/internal/pkg/lock"
	"adaura-rewards/internal/service"
)

// WithdrawHandler handles the user-facing withdrawal endpoints.
type WithdrawHandler struct {
	withdraws         *service.WithdrawService
	locks             *lock.UserLock
	minWithdrawPoints int64
}

// NewWithdrawHandler creates a new WithdrawHandler instance.
func NewWithdrawHandler(withdraws *service.WithdrawService, locks *lock.UserLock, minWithdrawPoints int64) *WithdrawHandler {
	return &WithdrawHandler{
		withdraws:         withdraws,
		locks:             locks,
		minWithdrawPoints: minWithdrawPoints,
	}
}

type withdrawRequest struct {
	AmountPoints int64  `json:"amountPoints" binding:"required"`
	Method       string `json:"method" binding:"required"`
	Details      string `json:"details" binding:"required"`
}

// Create files a withdrawal request, deducting the points up front.
func (h *WithdrawHandler) Create(ctx *gin.Context) {
	var req withdrawRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		fail(ctx, http.StatusBadRequest, 40005, "amountPoints, method and details are required")
		return
	}
	if req.AmountPoints < h.minWithdrawPoints {
		fail(ctx, http.StatusBadRequest, 40006, "amount below the withdrawal minimum")
		return
	}

	identity := identityFrom(ctx)

	var created *model.WithdrawRequest
	err := h.locks.WithLock(identity, func() error {
		var err error
		created, err = h.withdraws.CreateRequest(ctx.Request.Context(), identity, req.AmountPoints, req.Method, req.Details)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientBalance):
			fail(ctx, http.StatusBadRequest, 40007, "insufficient balance")
		case errors.Is(err, service.ErrInvalidMethod):
			fail(ctx, http.StatusBadRequest, 40008, "invalid withdrawal method")
		case errors.Is(err, service.ErrUserNotFound):
			fail(ctx, http.StatusNotFound, 40401, "account not found")
		default:
			log.Error().Err(err).Str("identity", identity).Msg("Withdraw request failed")
			fail(ctx, http.StatusInternalServerError, 50040, "failed to create withdraw request")
		}
		return
	}

	success(ctx, created)
}

// ListMine returns the caller's withdrawal requests, oldest first.
func (h *WithdrawHandler) ListMine(ctx *gin.Context) {
	identity := identityFrom(ctx)

	reqs, err := h.withdraws.ListByIdentity(ctx.Request.Context(), identity)
	if err != nil {
		log.Error().Err(err).Str("identity", identity).Msg("Withdraw list failed")
		fail(ctx, http.StatusInternalServerError, 50041, "failed to list withdraw requests")
		return
	}

	success(ctx, reqs)
}
