package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// Account settings
	StartingBalance int64

	// Wager limits
	MinBet          int64
	MaxBet          int64
	DailyWagerLimit int64

	// Reward schedule
	WorkReward     int64
	DailyReward    int64
	WeeklyReward   int64
	WorkCooldown   time.Duration
	DailyCooldown  time.Duration
	WeeklyCooldown time.Duration

	// Session handling
	SessionIdleTimeout time.Duration

	// Provably-fair play; when empty each round uses OS entropy instead
	FairServerSeed string

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables, reading a local .env
// file first when present
func load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Defaults
		StartingBalance:    0,
		MinBet:             10,
		MaxBet:             10000,
		DailyWagerLimit:    50000,
		WorkReward:         100,
		DailyReward:        500,
		WeeklyReward:       2000,
		WorkCooldown:       30 * time.Minute,
		DailyCooldown:      24 * time.Hour,
		WeeklyCooldown:     7 * 24 * time.Hour,
		SessionIdleTimeout: 10 * time.Minute,

		FairServerSeed: os.Getenv("FAIR_SERVER_SEED"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		Environment:    os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	overrideInt64(&config.StartingBalance, "STARTING_BALANCE")
	overrideInt64(&config.MinBet, "MIN_BET")
	overrideInt64(&config.MaxBet, "MAX_BET")
	overrideInt64(&config.DailyWagerLimit, "DAILY_WAGER_LIMIT")
	overrideInt64(&config.WorkReward, "WORK_REWARD")
	overrideInt64(&config.DailyReward, "DAILY_REWARD")
	overrideInt64(&config.WeeklyReward, "WEEKLY_REWARD")
	overrideDuration(&config.WorkCooldown, "WORK_COOLDOWN")
	overrideDuration(&config.DailyCooldown, "DAILY_COOLDOWN")
	overrideDuration(&config.WeeklyCooldown, "WEEKLY_COOLDOWN")
	overrideDuration(&config.SessionIdleTimeout, "SESSION_IDLE_TIMEOUT")

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}
	if config.MinBet <= 0 || config.MaxBet < config.MinBet {
		return nil, fmt.Errorf("bet limits misconfigured: min %d, max %d", config.MinBet, config.MaxBet)
	}

	return config, nil
}

func overrideInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = parsed
		}
	}
}

func overrideDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
