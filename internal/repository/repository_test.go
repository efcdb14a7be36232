// Package repository provides data access layer implementations.
// Tests use testcontainers-go to spin up a PostgreSQL container.
package repository

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"adaura-rewards/internal/model"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	err := cmd.Run()
	return err == nil
}

// setupTestDB creates a PostgreSQL container and returns a connection pool.
// Skips the test if Docker is not available.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	err = applySchema(ctx, pool)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// applySchema applies the database schema
func applySchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(64) PRIMARY KEY,
			identity VARCHAR(255) NOT NULL,
			points BIGINT NOT NULL DEFAULT 0,
			referral_code VARCHAR(16) NOT NULL,
			referred_by VARCHAR(255),
			last_login_date VARCHAR(10) NOT NULL DEFAULT '',
			daily_streak INT NOT NULL DEFAULT 0,
			daily_bonus_claimed_date VARCHAR(10) NOT NULL DEFAULT '',
			spins_today INT NOT NULL DEFAULT 0,
			last_spin_date VARCHAR(10) NOT NULL DEFAULT '',
			scratches_today INT NOT NULL DEFAULT 0,
			last_scratch_date VARCHAR(10) NOT NULL DEFAULT '',
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT users_identity_key UNIQUE (identity),
			CONSTRAINT users_referral_code_key UNIQUE (referral_code)
		)
	`)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS withdraw_requests (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user_identity VARCHAR(255) NOT NULL,
			amount_points BIGINT NOT NULL,
			amount_pkr DOUBLE PRECISION NOT NULL,
			method VARCHAR(32) NOT NULL,
			details TEXT NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			user_identity VARCHAR(255) NOT NULL,
			amount BIGINT NOT NULL,
			type VARCHAR(50) NOT NULL,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func newTestUser(identity, code string) *model.User {
	return &model.User{
		ID:              "id-" + code,
		Identity:        identity,
		Points:          50,
		ReferralCode:    code,
		LastLoginDate:   "2026-08-30",
		LastSpinDate:    "2026-08-30",
		LastScratchDate: "2026-08-30",
	}
}

// ============================================================================
// UserRepository Tests
// ============================================================================

func TestUserRepository_Create(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	user, err := repo.Create(ctx, newTestUser("ali@example.com", "ABC123"))
	require.NoError(t, err)
	assert.Equal(t, "ali@example.com", user.Identity)
	assert.Equal(t, int64(50), user.Points)
	assert.Equal(t, "ABC123", user.ReferralCode)
	assert.Equal(t, 0, user.DailyStreak)
	assert.False(t, user.IsAdmin)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUserRepository_CreateDuplicateIdentity(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestUser("ali@example.com", "ABC123"))
	require.NoError(t, err)

	dup := newTestUser("ali@example.com", "XYZ789")
	dup.ID = "id-other"
	_, err = repo.Create(ctx, dup)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestUserRepository_CreateDuplicateReferralCode(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestUser("ali@example.com", "ABC123"))
	require.NoError(t, err)

	dup := newTestUser("sara@example.com", "ABC123")
	dup.ID = "id-other"
	_, err = repo.Create(ctx, dup)
	assert.ErrorIs(t, err, ErrCodeCollision)
}

func TestUserRepository_GetByIdentity(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestUser("ali@example.com", "ABC123"))
	require.NoError(t, err)

	user, err := repo.GetByIdentity(ctx, "ali@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", user.ReferralCode)

	_, err = repo.GetByIdentity(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_GetByReferralCode(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestUser("ali@example.com", "ABC123"))
	require.NoError(t, err)

	user, err := repo.GetByReferralCode(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "ali@example.com", user.Identity)

	_, err = repo.GetByReferralCode(ctx, "NOSUCH")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_Save(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	user, err := repo.Create(ctx, newTestUser("ali@example.com", "ABC123"))
	require.NoError(t, err)

	referrer := "sara@example.com"
	user.Points = 175
	user.DailyStreak = 3
	user.DailyBonusClaimedDate = "2026-08-30"
	user.SpinsToday = 12
	user.ReferredBy = &referrer

	saved, err := repo.Save(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(175), saved.Points)
	assert.Equal(t, 3, saved.DailyStreak)
	assert.Equal(t, "2026-08-30", saved.DailyBonusClaimedDate)
	assert.Equal(t, 12, saved.SpinsToday)
	require.NotNil(t, saved.ReferredBy)
	assert.Equal(t, "sara@example.com", *saved.ReferredBy)

	// Round-trip through a fresh read.
	loaded, err := repo.GetByIdentity(ctx, "ali@example.com")
	require.NoError(t, err)
	assert.Equal(t, saved.Points, loaded.Points)
	assert.Equal(t, saved.DailyStreak, loaded.DailyStreak)
}

func TestUserRepository_UpdatePoints(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestUser("ali@example.com", "ABC123"))
	require.NoError(t, err)

	user, err := repo.UpdatePoints(ctx, "ali@example.com", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(150), user.Points)

	// Negative deltas can take the balance below zero.
	user, err = repo.UpdatePoints(ctx, "ali@example.com", -200)
	require.NoError(t, err)
	assert.Equal(t, int64(-50), user.Points)

	_, err = repo.UpdatePoints(ctx, "nobody@example.com", 10)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_Exists(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestUser("ali@example.com", "ABC123"))
	require.NoError(t, err)

	exists, err := repo.Exists(ctx, "ali@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

// ============================================================================
// WithdrawRepository Tests
// ============================================================================

func seedWithdrawUser(t *testing.T, pool *pgxpool.Pool) *model.User {
	t.Helper()
	repo := NewUserRepository(pool)
	user, err := repo.Create(context.Background(), newTestUser("ali@example.com", "ABC123"))
	require.NoError(t, err)
	return user
}

func newTestRequest(user *model.User, id string) *model.WithdrawRequest {
	return &model.WithdrawRequest{
		ID:           id,
		UserID:       user.ID,
		UserIdentity: user.Identity,
		AmountPoints: 1000,
		AmountPkr:    10,
		Method:       model.MethodEasypaisa,
		Details:      "0300-1234567",
		Status:       model.WithdrawStatusPending,
	}
}

func TestWithdrawRepository_CreateAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	user := seedWithdrawUser(t, pool)
	repo := NewWithdrawRepository(pool)
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestRequest(user, "req-1"))
	require.NoError(t, err)
	assert.Equal(t, model.WithdrawStatusPending, created.Status)
	assert.Equal(t, 10.0, created.AmountPkr)
	assert.False(t, created.CreatedAt.IsZero())

	loaded, err := repo.GetByID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, created.AmountPoints, loaded.AmountPoints)

	_, err = repo.GetByID(ctx, "no-such")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestWithdrawRepository_List(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	user := seedWithdrawUser(t, pool)
	repo := NewWithdrawRepository(pool)
	ctx := context.Background()

	for _, id := range []string{"req-1", "req-2", "req-3"} {
		_, err := repo.Create(ctx, newTestRequest(user, id))
		require.NoError(t, err)
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "req-1", all[0].ID, "oldest first")

	mine, err := repo.ListByIdentity(ctx, user.Identity)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	none, err := repo.ListByIdentity(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWithdrawRepository_Resolve(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	user := seedWithdrawUser(t, pool)
	repo := NewWithdrawRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestRequest(user, "req-1"))
	require.NoError(t, err)

	resolved, err := repo.Resolve(ctx, "req-1", model.WithdrawStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.WithdrawStatusApproved, resolved.Status)

	// A second resolution of any kind is refused.
	_, err = repo.Resolve(ctx, "req-1", model.WithdrawStatusRejected)
	assert.ErrorIs(t, err, ErrAlreadyResolved)

	_, err = repo.Resolve(ctx, "no-such", model.WithdrawStatusApproved)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

// ============================================================================
// TransactionRepository Tests
// ============================================================================

func TestTransactionRepository_CreateAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewTransactionRepository(pool)
	ctx := context.Background()

	desc := "signup welcome bonus"
	tx, err := repo.Create(ctx, "ali@example.com", 50, model.TxTypeWelcome, &desc)
	require.NoError(t, err)
	assert.Positive(t, tx.ID)
	assert.Equal(t, int64(50), tx.Amount)
	require.NotNil(t, tx.Description)
	assert.Equal(t, desc, *tx.Description)

	_, err = repo.Create(ctx, "ali@example.com", -25, model.TxTypeOracle, nil)
	require.NoError(t, err)

	entries, err := repo.GetByIdentity(ctx, "ali@example.com", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, model.TxTypeOracle, entries[0].Type)
	assert.Equal(t, model.TxTypeWelcome, entries[1].Type)

	limited, err := repo.GetByIdentity(ctx, "ali@example.com", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
