package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"adaura-rewards/internal/model"
)

const (
	defaultLedgerLimit = 50
	maxLedgerLimit     = 200
)

// LedgerReader lists a user's ledger entries.
// *repository.TransactionRepository implements it.
type LedgerReader interface {
	GetByIdentity(ctx context.Context, identity string, limit int) ([]*model.Transaction, error)
}

// LedgerHandler exposes a user's points history.
type LedgerHandler struct {
	ledger LedgerReader
}

// NewLedgerHandler creates a new LedgerHandler instance.
func NewLedgerHandler(ledger LedgerReader) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// List returns the caller's most recent ledger entries, newest first.
func (h *LedgerHandler) List(ctx *gin.Context) {
	limit := defaultLedgerLimit
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxLedgerLimit {
			limit = n
		}
	}

	identity := identityFrom(ctx)
	entries, err := h.ledger.GetByIdentity(ctx.Request.Context(), identity, limit)
	if err != nil {
		log.Error().Err(err).Str("identity", identity).Msg("Ledger list failed")
		fail(ctx, http.StatusInternalServerError, 50070, "failed to list transactions")
		return
	}

	success(ctx, entries)
}
