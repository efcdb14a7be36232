package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"adaura-rewards/internal/model"
	"adaura-rewards/internal/repository"
)

// ReferralService links a new account to the account whose code it entered
// and credits the referrer once.
type ReferralService struct {
	users  UserStore
	ledger LedgerStore
	bonus  int64
}

// NewReferralService creates a new ReferralService instance.
func NewReferralService(users UserStore, ledger LedgerStore, bonus int64) *ReferralService {
	return &ReferralService{users: users, ledger: ledger, bonus: bonus}
}

// Claim links claimant to the owner of code and pays the referral bonus to
// that owner. It returns false, with no error, when the claim is simply not
// payable: unknown code, self-referral, or an account that already claimed.
// A true return means the bonus was credited exactly once.
func (s *ReferralService) Claim(ctx context.Context, claimantIdentity, code string) (bool, error) {
	claimant, err := s.users.GetByIdentity(ctx, claimantIdentity)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	if claimant.ReferredBy != nil {
		return false, nil
	}

	referrer, err := s.users.GetByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	if referrer.Identity == claimant.Identity {
		return false, nil
	}

	claimant.ReferredBy = &referrer.Identity
	if _, err := s.users.Save(ctx, claimant); err != nil {
		return false, fmt.Errorf("failed to link referral: %w", err)
	}

	if _, err := s.users.UpdatePoints(ctx, referrer.Identity, s.bonus); err != nil {
		return false, fmt.Errorf("failed to credit referrer: %w", err)
	}

	desc := fmt.Sprintf("referral bonus for inviting %s", claimant.Identity)
	if _, err := s.ledger.Create(ctx, referrer.Identity, s.bonus, model.TxTypeReferralBonus, &desc); err != nil {
		log.Warn().Err(err).Str("identity", referrer.Identity).Msg("Failed to record referral ledger entry")
	}

	log.Info().
		Str("claimant", claimant.Identity).
		Str("referrer", referrer.Identity).
		Int64("bonus", s.bonus).
		Msg("Referral claimed")
	return true, nil
}
