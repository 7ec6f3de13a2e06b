package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	FeedBaseURL  string `env:"FEED_BASE_URL" envDefault:"https://draw.ar-lottery01.com"`
	FeedPath     string `env:"FEED_PATH" envDefault:"/WinGo/WinGo_1M/GetHistoryIssuePage.json"`
	FeedPageSize int    `env:"FEED_PAGE_SIZE" envDefault:"20"`

	LossThreshold int           `env:"LOSS_THRESHOLD" envDefault:"2"`
	PollInterval  time.Duration `env:"POLL_INTERVAL" envDefault:"30s"`
	ResetHour     int           `env:"RESET_HOUR" envDefault:"0"` // UTC wall-clock hour of the daily archive reset

	HTTPPort       int `env:"HTTP_PORT" envDefault:"8080"`
	RequestTimeout int `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:""`
	DBName     string `env:"DB_NAME" envDefault:"hilotrack"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN" envDefault:""`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID" envDefault:"0"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.FeedBaseURL = getEnvWithDefault("FEED_BASE_URL", "https://draw.ar-lottery01.com")
	cfg.FeedPath = getEnvWithDefault("FEED_PATH", "/WinGo/WinGo_1M/GetHistoryIssuePage.json")
	cfg.FeedPageSize = getEnvIntWithDefault("FEED_PAGE_SIZE", 20)
	cfg.LossThreshold = getEnvIntWithDefault("LOSS_THRESHOLD", 2)
	cfg.PollInterval = getEnvDurationWithDefault("POLL_INTERVAL", 30*time.Second)
	cfg.ResetHour = getEnvIntWithDefault("RESET_HOUR", 0)
	cfg.HTTPPort = getEnvIntWithDefault("HTTP_PORT", 8080)
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.DBHost = getEnvWithDefault("DB_HOST", "localhost")
	cfg.DBPort = getEnvWithDefault("DB_PORT", "5432")
	cfg.DBUser = getEnvWithDefault("DB_USER", "postgres")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnvWithDefault("DB_NAME", "hilotrack")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")
	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate rejects configurations that would only fail later at request
// time. Called once at startup; a failure here is fatal.
func (c *Config) validate() error {
	if c.LossThreshold < 1 {
		return fmt.Errorf("LOSS_THRESHOLD must be >= 1, got %d", c.LossThreshold)
	}
	if c.FeedPageSize < 10 {
		return fmt.Errorf("FEED_PAGE_SIZE must be >= 10 to cover the trend window, got %d", c.FeedPageSize)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	if c.ResetHour < 0 || c.ResetHour > 23 {
		return fmt.Errorf("RESET_HOUR must be within [0,23], got %d", c.ResetHour)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be a valid port, got %d", c.HTTPPort)
	}
	return nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
