package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application-wide configuration loaded from environment variables.
type Config struct {
	DatabaseURL   string
	AppEnv        string
	SentryDSN     string
	AllowedOrigin string
}

// LoadConfig reads configuration from environment variables or a .env file.
// It is the single source of truth for application configuration.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists. In production these are set directly
	// in the environment.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("FATAL: DATABASE_URL environment variable not set")
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
	}

	// Empty DSN disables Sentry reporting.
	sentryDSN := os.Getenv("SENTRY_DSN")

	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "http://localhost:5173"
	}

	return &Config{
		DatabaseURL:   dbURL,
		AppEnv:        appEnv,
		SentryDSN:     sentryDSN,
		AllowedOrigin: allowedOrigin,
	}, nil
}
