// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Auth provider modes.
const (
	ModeMock  = "mock"
	ModeStore = "store"
)

// Config carries everything the api binary needs to start.
type Config struct {
	Addr          string
	PostgresDSN   string
	AuthMode      string
	TokenTTL      time.Duration
	RateBurst     int
	RatePerSecond int
}

// Load reads a .env file if present, then the FOLIO_* environment
// variables. Missing values fall back to development defaults.
func Load() (Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		Addr:          getenv("FOLIO_ADDR", ":8080"),
		PostgresDSN:   os.Getenv("FOLIO_PG_DSN"),
		AuthMode:      getenv("FOLIO_AUTH_MODE", ModeMock),
		TokenTTL:      15 * time.Minute,
		RateBurst:     20,
		RatePerSecond: 10,
	}

	if raw := os.Getenv("FOLIO_TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse FOLIO_TOKEN_TTL: %w", err)
		}
		if ttl <= 0 {
			return Config{}, fmt.Errorf("FOLIO_TOKEN_TTL must be positive, got %s", ttl)
		}
		cfg.TokenTTL = ttl
	}

	var err error
	if cfg.RateBurst, err = intEnv("FOLIO_RATE_BURST", cfg.RateBurst); err != nil {
		return Config{}, err
	}
	if cfg.RatePerSecond, err = intEnv("FOLIO_RATE_PER_SECOND", cfg.RatePerSecond); err != nil {
		return Config{}, err
	}

	switch cfg.AuthMode {
	case ModeMock:
	case ModeStore:
		if cfg.PostgresDSN == "" {
			return Config{}, fmt.Errorf("FOLIO_AUTH_MODE=store requires FOLIO_PG_DSN")
		}
	default:
		return Config{}, fmt.Errorf("unknown FOLIO_AUTH_MODE %q (want mock or store)", cfg.AuthMode)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}
