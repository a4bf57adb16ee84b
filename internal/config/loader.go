package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the scheduler
// service.
type Config struct {
	HTTPPort     int
	SQLiteDSN    string
	Timezone     string
	MaxRangeDays int
	SlotCacheTTL time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load parses configuration values from the current process environment.
//
// The loader applies defaults for optional fields while validating the values
// that are present. Mail settings are optional as a group: when SMTP_HOST is
// unset the service runs without outbound notifications.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:     8080,
		SQLiteDSN:    "file:scheduler.db",
		Timezone:     "Europe/Rome",
		MaxRangeDays: 90,
		SlotCacheTTL: 30 * time.Second,
		SMTPPort:     587,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("SCHEDULER_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "SCHEDULER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("SCHEDULER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if tz := strings.TrimSpace(os.Getenv("SCHEDULER_TIMEZONE")); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			invalid = append(invalid, "SCHEDULER_TIMEZONE")
		} else {
			cfg.Timezone = tz
		}
	}

	if rangeValue := strings.TrimSpace(os.Getenv("SCHEDULER_MAX_RANGE_DAYS")); rangeValue != "" {
		days, err := strconv.Atoi(rangeValue)
		if err != nil || days <= 0 {
			invalid = append(invalid, "SCHEDULER_MAX_RANGE_DAYS")
		} else {
			cfg.MaxRangeDays = days
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("SCHEDULER_SLOT_CACHE_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "SCHEDULER_SLOT_CACHE_TTL")
		} else {
			cfg.SlotCacheTTL = ttl
		}
	}

	cfg.SMTPHost = strings.TrimSpace(os.Getenv("SCHEDULER_SMTP_HOST"))
	if smtpPortValue := strings.TrimSpace(os.Getenv("SCHEDULER_SMTP_PORT")); smtpPortValue != "" {
		port, err := strconv.Atoi(smtpPortValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "SCHEDULER_SMTP_PORT")
		} else {
			cfg.SMTPPort = port
		}
	}
	cfg.SMTPUsername = strings.TrimSpace(os.Getenv("SCHEDULER_SMTP_USERNAME"))
	cfg.SMTPPassword = os.Getenv("SCHEDULER_SMTP_PASSWORD")
	cfg.SMTPFrom = strings.TrimSpace(os.Getenv("SCHEDULER_SMTP_FROM"))
	if cfg.SMTPHost != "" && cfg.SMTPFrom == "" {
		invalid = append(invalid, "SCHEDULER_SMTP_FROM")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Location resolves the configured timezone. Load already validated it, so a
// failure here indicates the zone database changed underneath the process.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
