package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"adaura-rewards/internal/config"
	"adaura-rewards/internal/model"
	"adaura-rewards/internal/pkg/clock"
	"adaura-rewards/internal/repository"
)

// Common errors for account operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

const (
	referralCodeLen     = 6
	referralCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeRetries         = 5
)

// StreakInfo is the outcome of a login-streak evaluation.
type StreakInfo struct {
	Streak            int  `json:"streak"`
	BonusClaimedToday bool `json:"bonusClaimedToday"`
}

// AccountService handles identity, login streaks, and the daily bonus.
type AccountService struct {
	users        UserStore
	ledger       LedgerStore
	clk          clock.Clock
	welcomeBonus int64
	schedule     []int64
	admin        config.AdminConfig
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(
	users UserStore,
	ledger LedgerStore,
	clk clock.Clock,
	welcomeBonus int64,
	schedule []int64,
	admin config.AdminConfig,
) *AccountService {
	return &AccountService{
		users:        users,
		ledger:       ledger,
		clk:          clk,
		welcomeBonus: welcomeBonus,
		schedule:     schedule,
		admin:        admin,
	}
}

// Signup registers a new identity with the welcome bonus and a fresh
// referral code. The secret is accepted but not stored or verified; the
// client is a closed mobile-web shell and real authentication is out of
// scope. Returns ErrUserExists on an identity collision.
func (s *AccountService) Signup(ctx context.Context, identity, secret string) (*model.User, error) {
	today := clock.Today(s.clk)

	user := &model.User{
		ID:              uuid.NewString(),
		Identity:        identity,
		Points:          s.welcomeBonus,
		LastLoginDate:   today,
		DailyStreak:     0,
		LastSpinDate:    today,
		LastScratchDate: today,
	}

	var created *model.User
	for attempt := 0; attempt < codeRetries; attempt++ {
		user.ReferralCode = generateReferralCode()

		var err error
		created, err = s.users.Create(ctx, user)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrCodeCollision) {
			continue
		}
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("failed to allocate a unique referral code for %s", identity)
	}

	s.record(ctx, identity, s.welcomeBonus, model.TxTypeWelcome, "signup welcome bonus")

	log.Info().Str("identity", identity).Str("code", created.ReferralCode).Msg("User signed up")
	return created, nil
}

// Login resolves an identity to its user record. Secrets are not verified
// (recorded behavior of the client this backend replaces), with one
// exception: presenting the configured admin credentials for an
// unregistered admin identity bootstraps the admin account.
func (s *AccountService) Login(ctx context.Context, identity, secret string) (*model.User, error) {
	user, err := s.users.GetByIdentity(ctx, identity)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	if s.admin.Identity != "" && identity == s.admin.Identity && secret == s.admin.Secret {
		return s.bootstrapAdmin(ctx)
	}

	return nil, ErrUserNotFound
}

// bootstrapAdmin creates the configured admin account on first login.
func (s *AccountService) bootstrapAdmin(ctx context.Context) (*model.User, error) {
	today := clock.Today(s.clk)

	admin := &model.User{
		ID:              "admin-" + uuid.NewString()[:8],
		Identity:        s.admin.Identity,
		Points:          s.admin.Points,
		ReferralCode:    s.admin.Code,
		LastLoginDate:   today,
		DailyStreak:     0,
		LastSpinDate:    today,
		LastScratchDate: today,
		IsAdmin:         true,
	}

	created, err := s.users.Create(ctx, admin)
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	log.Info().Str("identity", created.Identity).Msg("Admin account bootstrapped")
	return created, nil
}

// GetUser retrieves a user by identity.
func (s *AccountService) GetUser(ctx context.Context, identity string) (*model.User, error) {
	user, err := s.users.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdatePoints unconditionally adds delta (which may be negative) to a
// user's points and records the mutation on the ledger. No lower bound is
// enforced here; callers that need a balance check perform it first.
func (s *AccountService) UpdatePoints(ctx context.Context, identity string, delta int64, txType, description string) (*model.User, error) {
	user, err := s.users.UpdatePoints(ctx, identity, delta)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update points: %w", err)
	}

	s.record(ctx, identity, delta, txType, description)

	return user, nil
}

// EvaluateLoginStreak rolls the login streak for today and reports whether
// the daily bonus has been claimed. Called on every dashboard view, not only
// on explicit login, so the day's first sight of the dashboard persists the
// new streak.
func (s *AccountService) EvaluateLoginStreak(ctx context.Context, identity string) (*StreakInfo, error) {
	user, err := s.users.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	today := clock.Today(s.clk)

	if clock.IsNewDay(user.LastLoginDate, today) {
		user.DailyStreak = advanceStreak(user.DailyStreak, user.LastLoginDate, today, clock.Yesterday(s.clk))
		user.LastLoginDate = today
		if user, err = s.users.Save(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to persist streak: %w", err)
		}
	}

	return &StreakInfo{
		Streak:            user.DailyStreak,
		BonusClaimedToday: user.DailyBonusClaimedDate == today,
	}, nil
}

// ClaimDailyBonus grants the streak-day reward at most once per calendar
// day. A repeat claim on the same day is a no-op and returns zero.
func (s *AccountService) ClaimDailyBonus(ctx context.Context, identity string) (int64, error) {
	user, err := s.users.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	today := clock.Today(s.clk)
	if user.DailyBonusClaimedDate == today {
		return 0, nil
	}

	reward := rewardForStreak(s.schedule, user.DailyStreak)
	user.Points += reward
	user.DailyBonusClaimedDate = today
	if _, err := s.users.Save(ctx, user); err != nil {
		return 0, fmt.Errorf("failed to claim daily bonus: %w", err)
	}

	s.record(ctx, identity, reward, model.TxTypeDailyBonus, fmt.Sprintf("daily bonus, streak day %d", user.DailyStreak))

	return reward, nil
}

// record appends a ledger entry; failures are logged, not propagated,
// because the balance change has already been applied.
func (s *AccountService) record(ctx context.Context, identity string, amount int64, txType, description string) {
	if _, err := s.ledger.Create(ctx, identity, amount, txType, &description); err != nil {
		log.Warn().Err(err).Str("identity", identity).Str("type", txType).Msg("Failed to record ledger entry")
	}
}

// generateReferralCode draws a 6-character uppercase alphanumeric code.
func generateReferralCode() string {
	buf := make([]byte, referralCodeLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure is unrecoverable for code generation
		panic(fmt.Sprintf("referral code generation: %v", err))
	}
	for i, b := range buf {
		buf[i] = referralCodeCharset[int(b)%len(referralCodeCharset)]
	}
	return string(buf)
}
