package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/practice-scheduler/internal/application"
	"github.com/example/practice-scheduler/internal/availability"
)

func TestTemplateRepository_RoundTrip(t *testing.T) {
	storage := openTestStorage(t)
	seedDirectory(t, storage)
	ctx := context.Background()

	until := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	template := availability.Template{
		ID:             "tpl-1",
		ProfessionalID: "prof-1",
		Weekday:        time.Monday,
		StartMinute:    9 * 60,
		EndMinute:      12 * 60,
		SlotMinutes:    60,
		ValidFrom:      time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:     &until,
		Active:         true,
		OnlineBooking:  true,
	}

	if _, err := storage.Templates.CreateTemplate(ctx, template); err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	retrieved, err := storage.Templates.GetTemplate(ctx, "tpl-1")
	if err != nil {
		t.Fatalf("GetTemplate failed: %v", err)
	}
	if retrieved.Weekday != time.Monday {
		t.Errorf("expected monday, got %v", retrieved.Weekday)
	}
	if retrieved.ValidUntil == nil || !retrieved.ValidUntil.Equal(until) {
		t.Errorf("expected valid_until to round-trip, got %v", retrieved.ValidUntil)
	}
	if !retrieved.Active || !retrieved.OnlineBooking {
		t.Errorf("expected flags to round-trip, got active=%v online=%v", retrieved.Active, retrieved.OnlineBooking)
	}

	retrieved.Active = false
	if _, err := storage.Templates.UpdateTemplate(ctx, retrieved); err != nil {
		t.Fatalf("UpdateTemplate failed: %v", err)
	}

	listed, err := storage.Templates.ListTemplatesForProfessional(ctx, "prof-1")
	if err != nil {
		t.Fatalf("ListTemplatesForProfessional failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("deactivated templates must still be listed, got %d rows", len(listed))
	}
	if listed[0].Active {
		t.Error("expected the listed template to be inactive")
	}
}

func TestTemplateRepository_UpdateUnknown(t *testing.T) {
	storage := openTestStorage(t)

	_, err := storage.Templates.UpdateTemplate(context.Background(), availability.Template{ID: "ghost"})
	if !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExceptionRepository_RoundTripAndDelete(t *testing.T) {
	storage := openTestStorage(t)
	seedDirectory(t, storage)
	ctx := context.Background()

	exception := availability.Exception{
		ID:             "exc-1",
		ProfessionalID: "prof-1",
		Start:          time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2025, time.August, 16, 0, 0, 0, 0, time.UTC),
		Closed:         true,
		Reason:         "ferie estive",
	}

	if _, err := storage.Exceptions.CreateException(ctx, exception); err != nil {
		t.Fatalf("CreateException failed: %v", err)
	}

	retrieved, err := storage.Exceptions.GetException(ctx, "exc-1")
	if err != nil {
		t.Fatalf("GetException failed: %v", err)
	}
	if !retrieved.Closed || retrieved.Reason != "ferie estive" {
		t.Errorf("unexpected exception: %+v", retrieved)
	}

	listed, err := storage.Exceptions.ListExceptionsForProfessional(ctx, "prof-1")
	if err != nil {
		t.Fatalf("ListExceptionsForProfessional failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 exception, got %d", len(listed))
	}

	if err := storage.Exceptions.DeleteException(ctx, "exc-1"); err != nil {
		t.Fatalf("DeleteException failed: %v", err)
	}
	if err := storage.Exceptions.DeleteException(ctx, "exc-1"); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}
