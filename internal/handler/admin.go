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

// AdminHandler handles the admin-only withdrawal review endpoints.
type AdminHandler struct {
	withdraws *service.WithdrawService
	locks     *lock.UserLock
}

// NewAdminHandler creates a new AdminHandler instance.
func NewAdminHandler(withdraws *service.WithdrawService, locks *lock.UserLock) *AdminHandler {
	return &AdminHandler{withdraws: withdraws, locks: locks}
}

// ListWithdrawals returns every withdrawal request, oldest first.
func (h *AdminHandler) ListWithdrawals(ctx *gin.Context) {
	reqs, err := h.withdraws.List(ctx.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Admin withdraw list failed")
		fail(ctx, http.StatusInternalServerError, 50050, "failed to list withdraw requests")
		return
	}
	success(ctx, reqs)
}

type resolveRequest struct {
	Status string `json:"status" binding:"required"`
}

// ResolveWithdrawal approves or rejects a pending request. Rejection
// refunds the deducted points to the requester.
func (h *AdminHandler) ResolveWithdrawal(ctx *gin.Context) {
	var req resolveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		fail(ctx, http.StatusBadRequest, 40009, "status is required")
		return
	}
	if req.Status != model.WithdrawStatusApproved && req.Status != model.WithdrawStatusRejected {
		fail(ctx, http.StatusBadRequest, 40010, "status must be approved or rejected")
		return
	}

	id := ctx.Param("id")

	// Look the request up first so the refund runs under the requester's lock.
	pending, err := h.withdraws.GetByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			fail(ctx, http.StatusNotFound, 40402, "withdraw request not found")
			return
		}
		log.Error().Err(err).Str("request_id", id).Msg("Withdraw lookup failed")
		fail(ctx, http.StatusInternalServerError, 50051, "failed to resolve withdraw request")
		return
	}

	var resolved *model.WithdrawRequest
	err = h.locks.WithLock(pending.UserIdentity, func() error {
		var err error
		resolved, err = h.withdraws.Resolve(ctx.Request.Context(), id, req.Status)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyResolved):
			fail(ctx, http.StatusConflict, 40902, "withdraw request already resolved")
		case errors.Is(err, service.ErrRequestNotFound):
			fail(ctx, http.StatusNotFound, 40402, "withdraw request not found")
		default:
			log.Error().Err(err).Str("request_id", id).Msg("Withdraw resolution failed")
			fail(ctx, http.StatusInternalServerError, 50051, "failed to resolve withdraw request")
		}
		return
	}

	success(ctx, resolved)
}
