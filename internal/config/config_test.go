package config

import (
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FOLIO_ADDR", "FOLIO_PG_DSN", "FOLIO_AUTH_MODE",
		"FOLIO_TOKEN_TTL", "FOLIO_RATE_BURST", "FOLIO_RATE_PER_SECOND",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.AuthMode != ModeMock {
		t.Errorf("AuthMode = %q, want mock", cfg.AuthMode)
	}
	if cfg.TokenTTL != 15*time.Minute {
		t.Errorf("TokenTTL = %s, want 15m", cfg.TokenTTL)
	}
	if cfg.RateBurst != 20 || cfg.RatePerSecond != 10 {
		t.Errorf("rate limits = %d/%d, want 20/10", cfg.RateBurst, cfg.RatePerSecond)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOLIO_ADDR", ":9090")
	t.Setenv("FOLIO_AUTH_MODE", "store")
	t.Setenv("FOLIO_PG_DSN", "postgres://localhost/folio")
	t.Setenv("FOLIO_TOKEN_TTL", "1h")
	t.Setenv("FOLIO_RATE_BURST", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Addr)
	}
	if cfg.AuthMode != ModeStore {
		t.Errorf("AuthMode = %q, want store", cfg.AuthMode)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %s, want 1h", cfg.TokenTTL)
	}
	if cfg.RateBurst != 5 {
		t.Errorf("RateBurst = %d, want 5", cfg.RateBurst)
	}
}

func TestLoadRejectsStoreModeWithoutDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOLIO_AUTH_MODE", "store")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "FOLIO_PG_DSN") {
		t.Fatalf("Load = %v, want missing DSN error", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]struct {
		key, value string
	}{
		"unknown mode":  {"FOLIO_AUTH_MODE", "ldap"},
		"bad ttl":       {"FOLIO_TOKEN_TTL", "soon"},
		"negative rate": {"FOLIO_RATE_BURST", "-3"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load accepted %s=%q", tc.key, tc.value)
			}
		})
	}
}
