package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	clearEnv := func(t *testing.T) {
		t.Helper()
		for _, key := range []string{
			"SCHEDULER_HTTP_PORT",
			"SCHEDULER_SQLITE_DSN",
			"SCHEDULER_TIMEZONE",
			"SCHEDULER_MAX_RANGE_DAYS",
			"SCHEDULER_SLOT_CACHE_TTL",
			"SCHEDULER_SMTP_HOST",
			"SCHEDULER_SMTP_PORT",
			"SCHEDULER_SMTP_USERNAME",
			"SCHEDULER_SMTP_PASSWORD",
			"SCHEDULER_SMTP_FROM",
		} {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}
	}

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:scheduler.db" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.Timezone != "Europe/Rome" {
			t.Fatalf("unexpected default timezone: %q", cfg.Timezone)
		}
		if cfg.MaxRangeDays != 90 {
			t.Fatalf("unexpected default range cap: %d", cfg.MaxRangeDays)
		}
		if cfg.SlotCacheTTL != 30*time.Second {
			t.Fatalf("unexpected default cache TTL: %v", cfg.SlotCacheTTL)
		}
		if cfg.SMTPHost != "" {
			t.Fatalf("expected mail to be disabled by default, got host %q", cfg.SMTPHost)
		}
	})

	t.Run("reads overrides from the environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SCHEDULER_HTTP_PORT", "9090")
		t.Setenv("SCHEDULER_SQLITE_DSN", "file:/var/lib/scheduler/data.db")
		t.Setenv("SCHEDULER_TIMEZONE", "UTC")
		t.Setenv("SCHEDULER_MAX_RANGE_DAYS", "30")
		t.Setenv("SCHEDULER_SLOT_CACHE_TTL", "2m")
		t.Setenv("SCHEDULER_SMTP_HOST", "smtp.studio.example")
		t.Setenv("SCHEDULER_SMTP_PORT", "2525")
		t.Setenv("SCHEDULER_SMTP_FROM", "agenda@studio.example")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.Timezone != "UTC" {
			t.Fatalf("expected timezone UTC, got %q", cfg.Timezone)
		}
		if cfg.MaxRangeDays != 30 {
			t.Fatalf("expected range cap 30, got %d", cfg.MaxRangeDays)
		}
		if cfg.SlotCacheTTL != 2*time.Minute {
			t.Fatalf("expected cache TTL 2m, got %v", cfg.SlotCacheTTL)
		}
		if cfg.SMTPPort != 2525 {
			t.Fatalf("expected SMTP port 2525, got %d", cfg.SMTPPort)
		}
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		tests := []struct {
			name  string
			key   string
			value string
		}{
			{name: "non-numeric port", key: "SCHEDULER_HTTP_PORT", value: "eighty"},
			{name: "negative port", key: "SCHEDULER_HTTP_PORT", value: "-1"},
			{name: "unknown timezone", key: "SCHEDULER_TIMEZONE", value: "Mars/Olympus"},
			{name: "zero range cap", key: "SCHEDULER_MAX_RANGE_DAYS", value: "0"},
			{name: "malformed TTL", key: "SCHEDULER_SLOT_CACHE_TTL", value: "soon"},
			{name: "non-numeric SMTP port", key: "SCHEDULER_SMTP_PORT", value: "mail"},
		}

		for _, tc := range tests {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				clearEnv(t)
				t.Setenv(tc.key, tc.value)

				_, err := Load()
				if err == nil {
					t.Fatalf("expected error for %s=%q", tc.key, tc.value)
				}
				if !strings.Contains(err.Error(), tc.key) {
					t.Fatalf("error %q does not name %s", err, tc.key)
				}
			})
		}
	})

	t.Run("requires a sender when mail is enabled", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SCHEDULER_SMTP_HOST", "smtp.studio.example")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error when SMTP host is set without a from address")
		}
		if !strings.Contains(err.Error(), "SCHEDULER_SMTP_FROM") {
			t.Fatalf("error %q does not name SCHEDULER_SMTP_FROM", err)
		}
	})

	t.Run("resolves the configured location", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		loc, err := cfg.Location()
		if err != nil {
			t.Fatalf("Location returned error: %v", err)
		}
		if loc.String() != "Europe/Rome" {
			t.Fatalf("unexpected location: %v", loc)
		}
	})
}
