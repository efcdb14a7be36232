// Package main is the entry point for the Adaura rewards backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"adaura-rewards/internal/config"
	"adaura-rewards/internal/handler"
	"adaura-rewards/internal/oracle"
	"adaura-rewards/internal/pkg/clock"
	"adaura-rewards/internal/pkg/db"
	"adaura-rewards/internal/pkg/lock"
	"adaura-rewards/internal/pkg/token"
	"adaura-rewards/internal/repository"
	"adaura-rewards/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Optional Redis for the token blacklist
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis unreachable, token blacklist falls back to memory")
			rdb = nil
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(dbPool.Pool)
	withdrawRepo := repository.NewWithdrawRepository(dbPool.Pool)
	txRepo := repository.NewTransactionRepository(dbPool.Pool)

	// Initialize services
	clk := clock.Real{}
	accountService := service.NewAccountService(
		userRepo,
		txRepo,
		clk,
		cfg.Rewards.WelcomeBonus,
		cfg.Rewards.DailySchedule,
		cfg.Admin,
	)
	rewardsService := service.NewRewardsService(
		userRepo,
		clk,
		cfg.Rewards.MaxDailySpins,
		cfg.Rewards.MaxDailyScratches,
	)
	referralService := service.NewReferralService(userRepo, txRepo, cfg.Rewards.ReferralBonus)
	withdrawService := service.NewWithdrawService(userRepo, withdrawRepo, txRepo, cfg.Rewards.PointsToPkrRate)

	oracleClient := oracle.NewClient(cfg.Oracle)

	// Session and concurrency plumbing
	tokens := token.NewManager(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
	blacklist := token.NewBlacklist(rdb)
	userLock := lock.NewUserLock()

	router := handler.NewRouter(cfg.Server, tokens, blacklist, handler.Handlers{
		Auth:     handler.NewAuthHandler(accountService, referralService, tokens, blacklist),
		Daily:    handler.NewDailyHandler(accountService, userLock),
		Game:     handler.NewGameHandler(accountService, rewardsService, userLock),
		Referral: handler.NewReferralHandler(referralService, userLock),
		Withdraw: handler.NewWithdrawHandler(withdrawService, userLock, cfg.Rewards.MinWithdrawPoints),
		Admin:    handler.NewAdminHandler(withdrawService, userLock),
		Oracle:   handler.NewOracleHandler(accountService, oracleClient, userLock, cfg.Oracle.AdviceCost, cfg.Oracle.LuckyCost),
		Ledger:   handler.NewLedgerHandler(txRepo),
	})

	router.GET("/healthz", func(c *gin.Context) {
		if err := dbPool.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "up"})
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Server is starting...")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("Redis close failed")
		}
	}

	log.Info().Msg("Server stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create users table
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
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: users table created")

	// Migration 2: Create withdraw_requests table
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
		);
		CREATE INDEX IF NOT EXISTS idx_withdraw_requests_identity ON withdraw_requests(user_identity, created_at);
		CREATE INDEX IF NOT EXISTS idx_withdraw_requests_status ON withdraw_requests(status, created_at);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: withdraw_requests table created")

	// Migration 3: Create transactions table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			user_identity VARCHAR(255) NOT NULL,
			amount BIGINT NOT NULL,
			type VARCHAR(50) NOT NULL,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_identity_time ON transactions(user_identity, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_transactions_type_time ON transactions(type, created_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 3: transactions table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
