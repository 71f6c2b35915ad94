// Package config loads the server configuration from the environment. A
// .env file in the working directory is honored when present.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the server needs to start.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	// DatabaseDriver selects the persistent store: "postgres" (DatabaseURL
	// required) or "sqlite" (file under DataDir).
	DatabaseDriver string `envconfig:"DATABASE_DRIVER" default:"sqlite"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	DataDir        string `envconfig:"DATA_DIR" default:"./data"`

	JWTSecret  string        `envconfig:"JWT_SECRET" default:"civicpro-dev-secret-change-in-production"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	// Seed admin account, created on startup when it does not exist yet.
	AdminUsername string `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	// Rating submission rate limit, per client IP.
	RatingRatePerMinute int `envconfig:"RATING_RATE_PER_MINUTE" default:"10"`
	RatingRateBurst     int `envconfig:"RATING_RATE_BURST" default:"5"`
}

// Load reads configuration from the environment, after loading an optional
// .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	if cfg.DatabaseDriver == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when DATABASE_DRIVER is postgres")
	}
	return &cfg, nil
}
