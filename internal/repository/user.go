// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"adaura-rewards/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUserExists    = errors.New("user already exists")
	ErrCodeCollision = errors.New("referral code already taken")
)

const userColumns = `id, identity, points, referral_code, referred_by,
		last_login_date, daily_streak, daily_bonus_claimed_date,
		spins_today, last_spin_date, scratches_today, last_scratch_date,
		is_admin, created_at, updated_at`

// UserRepository handles user record persistence.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Identity,
		&user.Points,
		&user.ReferralCode,
		&user.ReferredBy,
		&user.LastLoginDate,
		&user.DailyStreak,
		&user.DailyBonusClaimedDate,
		&user.SpinsToday,
		&user.LastSpinDate,
		&user.ScratchesToday,
		&user.LastScratchDate,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user record.
// Returns ErrUserExists on an identity collision and ErrCodeCollision when
// the generated referral code is already taken (callers regenerate and retry).
func (r *UserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	const query = `
		INSERT INTO users (
			id, identity, points, referral_code, referred_by,
			last_login_date, daily_streak, daily_bonus_claimed_date,
			spins_today, last_spin_date, scratches_today, last_scratch_date,
			is_admin, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING ` + userColumns

	created, err := scanUser(r.pool.QueryRow(ctx, query,
		user.ID,
		user.Identity,
		user.Points,
		user.ReferralCode,
		user.ReferredBy,
		user.LastLoginDate,
		user.DailyStreak,
		user.DailyBonusClaimedDate,
		user.SpinsToday,
		user.LastSpinDate,
		user.ScratchesToday,
		user.LastScratchDate,
		user.IsAdmin,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "users_referral_code_key" {
				return nil, ErrCodeCollision
			}
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

// GetByIdentity retrieves a user by their identity key.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByIdentity(ctx context.Context, identity string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE identity = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, identity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByReferralCode retrieves the user owning a referral code.
// Returns ErrUserNotFound if no user owns the code.
func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE referral_code = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by referral code: %w", err)
	}

	return user, nil
}

// Save writes back every mutable field of a user record.
// Engines read the record, mutate it under the identity's lock, and save it.
func (r *UserRepository) Save(ctx context.Context, user *model.User) (*model.User, error) {
	const query = `
		UPDATE users
		SET points = $2,
		    referred_by = $3,
		    last_login_date = $4,
		    daily_streak = $5,
		    daily_bonus_claimed_date = $6,
		    spins_today = $7,
		    last_spin_date = $8,
		    scratches_today = $9,
		    last_scratch_date = $10,
		    updated_at = NOW()
		WHERE identity = $1
		RETURNING ` + userColumns

	saved, err := scanUser(r.pool.QueryRow(ctx, query,
		user.Identity,
		user.Points,
		user.ReferredBy,
		user.LastLoginDate,
		user.DailyStreak,
		user.DailyBonusClaimedDate,
		user.SpinsToday,
		user.LastSpinDate,
		user.ScratchesToday,
		user.LastScratchDate,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return saved, nil
}

// UpdatePoints adds delta to a user's points and returns the updated record.
// Delta may be negative; no lower bound is enforced here.
func (r *UserRepository) UpdatePoints(ctx context.Context, identity string, delta int64) (*model.User, error) {
	const query = `
		UPDATE users
		SET points = points + $2, updated_at = NOW()
		WHERE identity = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, identity, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update points: %w", err)
	}

	return user, nil
}

// Exists checks if a user with the given identity exists.
func (r *UserRepository) Exists(ctx context.Context, identity string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE identity = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, identity).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return exists, nil
}
