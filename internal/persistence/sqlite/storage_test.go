package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// openTestStorage opens a migrated storage backed by a temporary database
// file.
func openTestStorage(t *testing.T) *Storage {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scheduler.db")
	storage, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		_ = storage.Close()
	})

	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return storage
}

func TestStorage_MigrateIsIdempotent(t *testing.T) {
	storage := openTestStorage(t)

	// A second run must find everything applied and do nothing.
	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}

	applied, err := storage.appliedVersions(context.Background())
	if err != nil {
		t.Fatalf("appliedVersions failed: %v", err)
	}
	if len(applied) != len(migrations) {
		t.Fatalf("expected %d applied versions, got %d", len(migrations), len(applied))
	}
}

func TestStorage_Ping(t *testing.T) {
	storage := openTestStorage(t)
	if err := storage.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestConnectionPool_RequiresDSN(t *testing.T) {
	if _, err := NewConnectionPool(Config{}); err == nil {
		t.Fatal("expected an error for an empty DSN")
	}
}

func TestTimeRoundTrip(t *testing.T) {
	original := time.Date(2025, time.June, 2, 9, 30, 0, 0, time.FixedZone("CEST", 2*3600))

	parsed, err := parseTime(formatTime(original))
	if err != nil {
		t.Fatalf("parseTime failed: %v", err)
	}
	if !parsed.Equal(original) {
		t.Fatalf("expected %v, got %v", original, parsed)
	}
	if parsed.Location() != time.UTC {
		t.Fatalf("timestamps are stored in UTC, got %v", parsed.Location())
	}
}
