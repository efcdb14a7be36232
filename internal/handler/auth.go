package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"adaura-rewards/internal/model"
	"adaura-rewards/internal/pkg/token"
	"adaura-rewards/internal/service"
)

// AuthHandler handles registration, login, and session endpoints.
type AuthHandler struct {
	accounts  *service.AccountService
	referrals *service.ReferralService
	tokens    *token.Manager
	blacklist *token.Blacklist
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(
	accounts *service.AccountService,
	referrals *service.ReferralService,
	tokens *token.Manager,
	blacklist *token.Blacklist,
) *AuthHandler {
	return &AuthHandler{
		accounts:  accounts,
		referrals: referrals,
		tokens:    tokens,
		blacklist: blacklist,
	}
}

type credentialsRequest struct {
	Identity     string `json:"identity" binding:"required"`
	Secret       string `json:"secret" binding:"required"`
	ReferralCode string `json:"referralCode"`
}

type sessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

// Signup registers a new account and opens a session. An optional referral
// code is claimed after the account exists; a bad code does not fail the
// signup.
func (h *AuthHandler) Signup(ctx *gin.Context) {
	var req credentialsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		fail(ctx, http.StatusBadRequest, 40001, "identity and secret are required")
		return
	}

	user, err := h.accounts.Signup(ctx.Request.Context(), req.Identity, req.Secret)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			fail(ctx, http.StatusConflict, 40901, "account already exists")
			return
		}
		log.Error().Err(err).Msg("Signup failed")
		fail(ctx, http.StatusInternalServerError, 50001, "failed to sign up")
		return
	}

	if req.ReferralCode != "" {
		if _, err := h.referrals.Claim(ctx.Request.Context(), user.Identity, req.ReferralCode); err != nil {
			log.Warn().Err(err).Str("identity", user.Identity).Msg("Referral claim during signup failed")
		}
	}

	h.openSession(ctx, user)
}

// Login resolves an identity and opens a session.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req credentialsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		fail(ctx, http.StatusBadRequest, 40001, "identity and secret are required")
		return
	}

	user, err := h.accounts.Login(ctx.Request.Context(), req.Identity, req.Secret)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			fail(ctx, http.StatusNotFound, 40401, "account not found")
			return
		}
		log.Error().Err(err).Msg("Login failed")
		fail(ctx, http.StatusInternalServerError, 50002, "failed to log in")
		return
	}

	h.openSession(ctx, user)
}

// Logout revokes the presented bearer token.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	tokenStr := ctx.GetString(ContextTokenKey)
	claims, err := h.tokens.Parse(tokenStr)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	h.blacklist.Revoke(tokenStr, claims.ExpiresAt.Time)
	success(ctx, nil)
}

// Me returns the authenticated user's current record.
func (h *AuthHandler) Me(ctx *gin.Context) {
	user, err := h.accounts.GetUser(ctx.Request.Context(), identityFrom(ctx))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			fail(ctx, http.StatusNotFound, 40401, "account not found")
			return
		}
		fail(ctx, http.StatusInternalServerError, 50003, "failed to load account")
		return
	}
	success(ctx, user)
}

func (h *AuthHandler) openSession(ctx *gin.Context, user *model.User) {
	signed, expiresAt, err := h.tokens.Generate(user.Identity, user.IsAdmin)
	if err != nil {
		log.Error().Err(err).Msg("Token generation failed")
		fail(ctx, http.StatusInternalServerError, 50004, "failed to open session")
		return
	}

	success(ctx, sessionResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      user,
	})
}
