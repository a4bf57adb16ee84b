package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/practice-scheduler/internal/application"
	"github.com/example/practice-scheduler/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// storage instance for integration-style persistence tests.
type SQLiteHarness struct {
	Appointments  application.AppointmentRepository
	Participants  application.ParticipantRepository
	Templates     application.TemplateRepository
	Exceptions    application.ExceptionRepository
	Professionals application.ProfessionalRepository
	Clients       application.ClientRepository
	Partners      application.PartnerRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "scheduler.db")

	storage, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Appointments:  storage.Appointments,
		Participants:  storage.Participants,
		Templates:     storage.Templates,
		Exceptions:    storage.Exceptions,
		Professionals: storage.Professionals,
		Clients:       storage.Clients,
		Partners:      storage.Partners,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedDirectory persists a professional, a client and a partner so foreign
// key constraints on appointments and participants are satisfied.
func (h *SQLiteHarness) SeedDirectory(tb testing.TB) (application.Professional, application.Client, application.PartnerOrg) {
	tb.Helper()
	ctx := context.Background()

	professional, err := h.Professionals.CreateProfessional(ctx, NewProfessional())
	if err != nil {
		tb.Fatalf("failed to seed professional: %v", err)
	}
	client, err := h.Clients.CreateClient(ctx, NewClient())
	if err != nil {
		tb.Fatalf("failed to seed client: %v", err)
	}
	partner, err := h.Partners.CreatePartner(ctx, NewPartner())
	if err != nil {
		tb.Fatalf("failed to seed partner: %v", err)
	}
	return professional, client, partner
}
