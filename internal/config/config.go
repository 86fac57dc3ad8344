package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultAPIBaseURL = "https://worker.jawn.workers.dev/api/v1"

// Config holds all application configuration
type Config struct {
	BotToken   string
	APIBaseURL string
	DBPath     string

	// RecsTimeout bounds only the recommendation call; the other API
	// calls run without an explicit timeout
	RecsTimeout time.Duration
	IntroDelay  time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	recsTimeout, err := getEnvInt("RECS_TIMEOUT_SECONDS", 120)
	if err != nil {
		return nil, err
	}
	introDelay, err := getEnvInt("INTRO_DELAY_MS", 800)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BotToken:    os.Getenv("BOT_TOKEN"),
		APIBaseURL:  getEnv("API_BASE_URL", defaultAPIBaseURL),
		DBPath:      getEnv("DB_PATH", "filmwise.db"),
		RecsTimeout: time.Duration(recsTimeout) * time.Second,
		IntroDelay:  time.Duration(introDelay) * time.Millisecond,
	}

	// Validate required fields
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}
