// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr string `validate:"required"`

	CatalogPath  string `validate:"required"`
	UsersPath    string `validate:"required"`
	EnrichedPath string `validate:"required"`

	// WindowDays is the default attribution window; individual requests
	// may override it.
	WindowDays int `validate:"gt=0"`

	// InvalidRowPolicy decides whether bad input rows abort a run ("fail")
	// or are dropped and reported ("skip").
	InvalidRowPolicy string `validate:"oneof=fail skip"`

	// PostgresDSN is optional; when set, aggregation results are also
	// persisted to the database.
	PostgresDSN string

	LogLevel  string `validate:"oneof=trace debug info warn error"`
	LogPretty bool
}

// Load reads the environment (after a best-effort .env load) and validates
// the result. Validation failures name the offending variable.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:             getEnv("ADDR", ":8080"),
		CatalogPath:      getEnv("CATALOG_CSV", "data/content_catalog.csv"),
		UsersPath:        getEnv("USERS_CSV", "data/user_base.csv"),
		EnrichedPath:     getEnv("ENRICHED_CSV", "data/user_attribution_enriched.csv"),
		InvalidRowPolicy: getEnv("INVALID_ROW_POLICY", "fail"),
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogPretty:        getEnv("LOG_PRETTY", "false") == "true",
	}

	window := getEnv("ATTRIBUTION_WINDOW_DAYS", "7")
	w, err := strconv.Atoi(window)
	if err != nil {
		return nil, fmt.Errorf("ATTRIBUTION_WINDOW_DAYS: %q is not an integer", window)
	}
	cfg.WindowDays = w

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
