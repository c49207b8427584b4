package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/zizouhuweidi/slidequiz/internal/database"
)

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// FeedConfig holds the tuning knobs of the feed orchestrator
type FeedConfig struct {
	BatchSize         int
	MinPoolThreshold  int
	ExposureCap       int
	DefaultEngagement float64
	GenerationTimeout time.Duration
}

// Config holds application configuration
type Config struct {
	Port           string
	StoreDriver    string
	Migrate        bool
	Postgres       *database.PostgresConfig
	Redis          *database.RedisConfig
	JWTSecret      string
	WebhookSecret  string
	GenerationURL  string
	RequestTimeout time.Duration
	RateLimit      int
	WarmerSchedule string
	SeedChunksDir  string
	LogLevel       slog.Level
	Feed           FeedConfig
}

// Load reads configuration from the environment, loading a .env file first when present
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using system environment variables")
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		Migrate:        getEnvBool("DB_MIGRATE", true),
		Postgres:       database.NewPostgresConfig(),
		Redis:          database.NewRedisConfig(),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		WebhookSecret:  getEnv("WEBHOOK_SECRET", ""),
		GenerationURL:  getEnv("GENERATION_URL", "http://ai-service:8000"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		RateLimit:      getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		WarmerSchedule: getEnv("WARMER_SCHEDULE", ""),
		SeedChunksDir:  getEnv("SEED_CHUNKS_DIR", ""),
		LogLevel:       parseLevel(getEnv("LOG_LEVEL", "info")),
		Feed: FeedConfig{
			BatchSize:         getEnvInt("FEED_BATCH_SIZE", 5),
			MinPoolThreshold:  getEnvInt("FEED_MIN_POOL", 3),
			ExposureCap:       getEnvInt("FEED_EXPOSURE_CAP", 10),
			DefaultEngagement: getEnvFloat("FEED_DEFAULT_ENGAGEMENT", 0.5),
			GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", 10*time.Second),
		},
	}
}

// Validate checks that the configuration is internally consistent
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("unsupported store driver %q", c.StoreDriver)
	}
	if c.Feed.BatchSize < 1 {
		return fmt.Errorf("feed batch size must be positive, got %d", c.Feed.BatchSize)
	}
	if c.Feed.MinPoolThreshold > c.Feed.BatchSize {
		return fmt.Errorf("feed min pool %d exceeds batch size %d", c.Feed.MinPoolThreshold, c.Feed.BatchSize)
	}
	if c.Feed.ExposureCap < 1 {
		return fmt.Errorf("feed exposure cap must be positive, got %d", c.Feed.ExposureCap)
	}
	if c.Feed.GenerationTimeout <= 0 {
		return fmt.Errorf("generation timeout must be positive")
	}
	if strings.TrimSpace(c.GenerationURL) == "" {
		return fmt.Errorf("generation url is required")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Warn("invalid number in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return floatValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("invalid boolean in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return boolValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return duration
}

func parseLevel(value string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo
	}
	return level
}
