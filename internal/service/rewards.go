package service

import (
	"context"
	"errors"
	"fmt"

	"adaura-rewards/internal/pkg/clock"
	"adaura-rewards/internal/repository"
)

// RewardsService meters the daily play allowances for the wheel and the
// scratch cards. The slot machine is deliberately unmetered.
type RewardsService struct {
	users             UserStore
	clk               clock.Clock
	maxDailySpins     int
	maxDailyScratches int
}

// NewRewardsService creates a new RewardsService instance.
func NewRewardsService(users UserStore, clk clock.Clock, maxDailySpins, maxDailyScratches int) *RewardsService {
	return &RewardsService{
		users:             users,
		clk:               clk,
		maxDailySpins:     maxDailySpins,
		maxDailyScratches: maxDailyScratches,
	}
}

// AttemptSpin consumes one wheel spin from today's allowance. It returns
// false, without touching the record, when the allowance is exhausted.
// The date-keyed counter resets lazily on the first attempt of a new day.
func (s *RewardsService) AttemptSpin(ctx context.Context, identity string) (bool, error) {
	user, err := s.users.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	today := clock.Today(s.clk)
	count := rollQuota(user.SpinsToday, user.LastSpinDate, today)
	if count >= s.maxDailySpins {
		return false, nil
	}

	user.SpinsToday = count + 1
	user.LastSpinDate = today
	if _, err := s.users.Save(ctx, user); err != nil {
		return false, fmt.Errorf("failed to consume spin: %w", err)
	}
	return true, nil
}

// AttemptScratch consumes one scratch card from today's allowance.
// Same metering contract as AttemptSpin.
func (s *RewardsService) AttemptScratch(ctx context.Context, identity string) (bool, error) {
	user, err := s.users.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	today := clock.Today(s.clk)
	count := rollQuota(user.ScratchesToday, user.LastScratchDate, today)
	if count >= s.maxDailyScratches {
		return false, nil
	}

	user.ScratchesToday = count + 1
	user.LastScratchDate = today
	if _, err := s.users.Save(ctx, user); err != nil {
		return false, fmt.Errorf("failed to consume scratch: %w", err)
	}
	return true, nil
}
