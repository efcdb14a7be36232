package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"adaura-rewards/internal/model"
	"adaura-rewards/internal/repository"
)

// Common errors for withdrawal operations.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidMethod       = errors.New("invalid withdrawal method")
	ErrRequestNotFound     = errors.New("withdraw request not found")
	ErrAlreadyResolved     = errors.New("withdraw request already resolved")
)

// WithdrawService runs the withdrawal lifecycle: points are deducted up
// front when a request is filed, and refunded if an admin rejects it.
type WithdrawService struct {
	users     UserStore
	withdraws WithdrawStore
	ledger    LedgerStore
	pkrRate   int64
}

// NewWithdrawService creates a new WithdrawService instance.
func NewWithdrawService(users UserStore, withdraws WithdrawStore, ledger LedgerStore, pkrRate int64) *WithdrawService {
	return &WithdrawService{
		users:     users,
		withdraws: withdraws,
		ledger:    ledger,
		pkrRate:   pkrRate,
	}
}

// CreateRequest files a pending withdrawal, deducting the points
// immediately. The PKR amount is derived from the points at the configured
// rate. Returns ErrInsufficientBalance when the user cannot cover amount;
// the minimum-amount policy is checked by the caller.
func (s *WithdrawService) CreateRequest(ctx context.Context, identity string, amountPoints int64, method, details string) (*model.WithdrawRequest, error) {
	if !model.IsValidMethod(method) {
		return nil, ErrInvalidMethod
	}

	user, err := s.users.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Points < amountPoints {
		return nil, ErrInsufficientBalance
	}

	if _, err := s.users.UpdatePoints(ctx, identity, -amountPoints); err != nil {
		return nil, fmt.Errorf("failed to deduct withdrawal amount: %w", err)
	}

	req := &model.WithdrawRequest{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		UserIdentity: user.Identity,
		AmountPoints: amountPoints,
		AmountPkr:    float64(amountPoints) / float64(s.pkrRate),
		Method:       method,
		Details:      details,
		Status:       model.WithdrawStatusPending,
	}
	created, err := s.withdraws.Create(ctx, req)
	if err != nil {
		// The deduction already happened; put the points back rather than
		// leave the balance short with no request on file.
		if _, refundErr := s.users.UpdatePoints(ctx, identity, amountPoints); refundErr != nil {
			log.Error().Err(refundErr).Str("identity", identity).Msg("Failed to refund after request creation failure")
		}
		return nil, fmt.Errorf("failed to create withdraw request: %w", err)
	}

	desc := fmt.Sprintf("withdrawal request %s via %s", created.ID, method)
	s.record(ctx, identity, -amountPoints, model.TxTypeWithdraw, desc)

	log.Info().
		Str("identity", identity).
		Str("request_id", created.ID).
		Int64("points", amountPoints).
		Float64("pkr", created.AmountPkr).
		Msg("Withdraw request created")
	return created, nil
}

// GetByID returns a single withdrawal request.
func (s *WithdrawService) GetByID(ctx context.Context, id string) (*model.WithdrawRequest, error) {
	req, err := s.withdraws.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

// List returns every withdrawal request, oldest first.
func (s *WithdrawService) List(ctx context.Context) ([]*model.WithdrawRequest, error) {
	return s.withdraws.List(ctx)
}

// ListByIdentity returns one user's withdrawal requests, oldest first.
func (s *WithdrawService) ListByIdentity(ctx context.Context, identity string) ([]*model.WithdrawRequest, error) {
	return s.withdraws.ListByIdentity(ctx, identity)
}

// Resolve moves a pending request to approved or rejected. Rejection
// refunds the deducted points; approval changes only the status, the payout
// itself happens off-platform. Resolving a request twice fails with
// ErrAlreadyResolved no matter which way it went the first time.
func (s *WithdrawService) Resolve(ctx context.Context, id, status string) (*model.WithdrawRequest, error) {
	if status != model.WithdrawStatusApproved && status != model.WithdrawStatusRejected {
		return nil, fmt.Errorf("invalid resolution status %q", status)
	}

	req, err := s.withdraws.Resolve(ctx, id, status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyResolved):
			return nil, ErrAlreadyResolved
		case errors.Is(err, repository.ErrRequestNotFound):
			return nil, ErrRequestNotFound
		default:
			return nil, fmt.Errorf("failed to resolve withdraw request: %w", err)
		}
	}

	if status == model.WithdrawStatusRejected {
		if _, err := s.users.UpdatePoints(ctx, req.UserIdentity, req.AmountPoints); err != nil {
			return nil, fmt.Errorf("failed to refund rejected withdrawal: %w", err)
		}
		desc := fmt.Sprintf("refund of rejected withdrawal %s", req.ID)
		s.record(ctx, req.UserIdentity, req.AmountPoints, model.TxTypeWithdrawRefund, desc)
	}

	log.Info().
		Str("request_id", req.ID).
		Str("identity", req.UserIdentity).
		Str("status", status).
		Msg("Withdraw request resolved")
	return req, nil
}

func (s *WithdrawService) record(ctx context.Context, identity string, amount int64, txType, description string) {
	if _, err := s.ledger.Create(ctx, identity, amount, txType, &description); err != nil {
		log.Warn().Err(err).Str("identity", identity).Str("type", txType).Msg("Failed to record ledger entry")
	}
}
