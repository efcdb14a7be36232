package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"adaura-rewards/internal/pkg/lock"
	"adaura-rewards/internal/service"
)

// ReferralHandler handles referral code claims.
type ReferralHandler struct {
	referrals *service.ReferralService
	locks     *lock.UserLock
}

// NewReferralHandler creates a new ReferralHandler instance.
func NewReferralHandler(referrals *service.ReferralService, locks *lock.UserLock) *ReferralHandler {
	return &ReferralHandler{referrals: referrals, locks: locks}
}

type referralClaimRequest struct {
	Code string `json:"code" binding:"required"`
}

// Claim links the caller to the owner of the submitted code. The response
// reports whether the bonus was paid; an unknown code, a self-referral, or
// an already-linked account all answer claimed=false without an error.
func (h *ReferralHandler) Claim(ctx *gin.Context) {
	var req referralClaimRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		fail(ctx, http.StatusBadRequest, 40004, "referral code is required")
		return
	}

	identity := identityFrom(ctx)

	var claimed bool
	err := h.locks.WithLock(identity, func() error {
		var err error
		claimed, err = h.referrals.Claim(ctx.Request.Context(), identity, req.Code)
		return err
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			fail(ctx, http.StatusNotFound, 40401, "account not found")
			return
		}
		log.Error().Err(err).Str("identity", identity).Msg("Referral claim failed")
		fail(ctx, http.StatusInternalServerError, 50030, "failed to claim referral")
		return
	}

	success(ctx, gin.H{"claimed": claimed})
}
