// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Rewards  RewardsConfig  `mapstructure:"rewards"`
	Oracle   OracleConfig   `mapstructure:"oracle"`
}

// ServerConfig holds the HTTP server and session configuration.
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// RedisConfig holds the optional Redis connection used for the token
// blacklist. An empty host disables Redis and falls back to in-memory.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AdminConfig holds the bootstrap admin credentials. Logging in with this
// identity/secret pair creates the admin account if it does not exist.
type AdminConfig struct {
	Identity string `mapstructure:"identity"`
	Secret   string `mapstructure:"secret"`
	Points   int64  `mapstructure:"points"`
	Code     string `mapstructure:"code"`
}

// RewardsConfig holds the points-economy constants.
type RewardsConfig struct {
	WelcomeBonus      int64   `mapstructure:"welcome_bonus"`
	ReferralBonus     int64   `mapstructure:"referral_bonus"`
	DailySchedule     []int64 `mapstructure:"daily_schedule"`
	MaxDailySpins     int     `mapstructure:"max_daily_spins"`
	MaxDailyScratches int     `mapstructure:"max_daily_scratches"`
	PointsToPkrRate   int64   `mapstructure:"points_to_pkr_rate"`
	MinWithdrawPoints int64   `mapstructure:"min_withdraw_points"`
}

// OracleConfig holds the external text-provider configuration.
type OracleConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	Endpoint   string        `mapstructure:"endpoint"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
	AdviceCost int64         `mapstructure:"advice_cost"`
	LuckyCost  int64         `mapstructure:"lucky_cost"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the given directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. SERVER_PORT, DATABASE_HOST, ORACLE_API_KEY.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - env vars can provide all config
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.token_ttl", "720h")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "adaura")
	v.SetDefault("database.name", "adaura")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Redis defaults (host empty = in-memory token blacklist)
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Admin bootstrap defaults
	v.SetDefault("admin.points", 99999)
	v.SetDefault("admin.code", "ADMIN")

	// Points-economy defaults
	v.SetDefault("rewards.welcome_bonus", 50)
	v.SetDefault("rewards.referral_bonus", 1500)
	v.SetDefault("rewards.daily_schedule", []int64{10, 25, 35, 45, 60, 65, 100})
	v.SetDefault("rewards.max_daily_spins", 30)
	v.SetDefault("rewards.max_daily_scratches", 30)
	v.SetDefault("rewards.points_to_pkr_rate", 100)
	v.SetDefault("rewards.min_withdraw_points", 1000)

	// Oracle defaults
	v.SetDefault("oracle.endpoint", "https://generativelanguage.googleapis.com")
	v.SetDefault("oracle.model", "gemini-2.5-flash")
	v.SetDefault("oracle.timeout", "15s")
	v.SetDefault("oracle.advice_cost", 25)
	v.SetDefault("oracle.lucky_cost", 20)
}
