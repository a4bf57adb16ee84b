package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/practice-scheduler/internal/application"
	"github.com/example/practice-scheduler/internal/booking"
)

func TestServiceFactoryDefaults(t *testing.T) {
	factory := NewServiceFactory()

	if factory.Clock == nil || factory.IDGenerator == nil {
		t.Fatal("factory should provide a clock and an id generator")
	}
	if !factory.Clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("clock starts at %v, want %v", factory.Clock.Now(), ReferenceTime())
	}
	if got := factory.IDGenerator.Next(); got != "id-1" {
		t.Fatalf("first id = %q", got)
	}
}

func TestServiceFactoryOptions(t *testing.T) {
	clock := NewClock(time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC))
	generator := NewIDGenerator("fixture")

	factory := NewServiceFactory(WithClock(clock), WithIDGenerator(generator), WithLocation(time.UTC))

	if factory.Clock != clock {
		t.Fatal("clock option not applied")
	}
	if got := factory.IDGenerator.Next(); got != "fixture-1" {
		t.Fatalf("id = %q", got)
	}
}

// The full stack: factory-built services running on top of a migrated SQLite
// storage instance.
func TestFactoryServicesAgainstSQLite(t *testing.T) {
	harness := NewSQLiteHarness(t)
	professional, client, _ := harness.SeedDirectory(t)

	factory := NewServiceFactory()
	directory := factory.DirectoryService(DirectoryServiceDeps{
		Professionals: harness.Professionals,
		Clients:       harness.Clients,
		Partners:      harness.Partners,
	})
	bookings := factory.BookingService(BookingServiceDeps{
		Appointments: harness.Appointments,
		Participants: harness.Participants,
		Directory:    directory,
		Notifier:     nil,
	})

	ctx := context.Background()
	start := ReferenceTime().Add(24 * time.Hour)
	appointment, err := bookings.Request(ctx, application.RequestAppointmentParams{
		ProfessionalID: professional.ID,
		ClientID:       client.ID,
		Title:          "Contract review",
		Start:          start,
		End:            start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Request returned error: %v", err)
	}
	if appointment.Status != booking.StatusRequested {
		t.Fatalf("status = %q", appointment.Status)
	}

	approved, err := bookings.Approve(ctx, appointment.ID)
	if err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}
	if approved.Status != booking.StatusApproved {
		t.Fatalf("status after approve = %q", approved.Status)
	}

	participants, err := harness.Participants.ListParticipants(ctx, appointment.ID)
	if err != nil {
		t.Fatalf("ListParticipants returned error: %v", err)
	}
	if len(participants) != 1 || participants[0].Role != application.RoleRequester {
		t.Fatalf("participants = %+v", participants)
	}
}
