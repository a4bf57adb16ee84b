package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/practice-scheduler/internal/availability"
	"github.com/example/practice-scheduler/internal/booking"
)

type templateRepoStub struct {
	mu        sync.Mutex
	templates map[string]availability.Template
	listCalls int
}

func newTemplateRepoStub() *templateRepoStub {
	return &templateRepoStub{templates: make(map[string]availability.Template)}
}

func (s *templateRepoStub) CreateTemplate(ctx context.Context, template availability.Template) (availability.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[template.ID] = template
	return template, nil
}

func (s *templateRepoStub) GetTemplate(ctx context.Context, id string) (availability.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	template, ok := s.templates[id]
	if !ok {
		return availability.Template{}, ErrNotFound
	}
	return template, nil
}

func (s *templateRepoStub) UpdateTemplate(ctx context.Context, template availability.Template) (availability.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[template.ID]; !ok {
		return availability.Template{}, ErrNotFound
	}
	s.templates[template.ID] = template
	return template, nil
}

func (s *templateRepoStub) ListTemplatesForProfessional(ctx context.Context, professionalID string) ([]availability.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	var out []availability.Template
	for _, t := range s.templates {
		if t.ProfessionalID == professionalID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *templateRepoStub) listCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

type exceptionRepoStub struct {
	mu         sync.Mutex
	exceptions map[string]availability.Exception
}

func newExceptionRepoStub() *exceptionRepoStub {
	return &exceptionRepoStub{exceptions: make(map[string]availability.Exception)}
}

func (s *exceptionRepoStub) CreateException(ctx context.Context, exception availability.Exception) (availability.Exception, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exceptions[exception.ID] = exception
	return exception, nil
}

func (s *exceptionRepoStub) GetException(ctx context.Context, id string) (availability.Exception, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exception, ok := s.exceptions[id]
	if !ok {
		return availability.Exception{}, ErrNotFound
	}
	return exception, nil
}

func (s *exceptionRepoStub) DeleteException(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exceptions[id]; !ok {
		return ErrNotFound
	}
	delete(s.exceptions, id)
	return nil
}

func (s *exceptionRepoStub) ListExceptionsForProfessional(ctx context.Context, professionalID string) ([]availability.Exception, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []availability.Exception
	for _, e := range s.exceptions {
		if e.ProfessionalID == professionalID {
			out = append(out, e)
		}
	}
	return out, nil
}

type catalogStub struct {
	known map[string]bool
}

func (c *catalogStub) ProfessionalExists(ctx context.Context, id string) (bool, error) {
	if c.known == nil {
		return true, nil
	}
	return c.known[id], nil
}

type availabilityFixture struct {
	svc        *AvailabilityService
	templates  *templateRepoStub
	exceptions *exceptionRepoStub
	store      *bookingStore
}

// newAvailabilityFixture wires the service against a clock frozen well before
// the reference monday so no generated slot is discarded as past.
func newAvailabilityFixture(t *testing.T) *availabilityFixture {
	t.Helper()

	templates := newTemplateRepoStub()
	exceptions := newExceptionRepoStub()
	store := newBookingStore()
	now := func() time.Time {
		return time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)
	}
	svc := NewAvailabilityService(templates, exceptions, store, &catalogStub{}, availability.NewEngine(time.UTC), AvailabilityServiceConfig{}, sequentialIDs("av"), now)
	return &availabilityFixture{svc: svc, templates: templates, exceptions: exceptions, store: store}
}

// mondayTemplate opens monday mornings 09:00-12:00 with 60 minute slots.
func (f *availabilityFixture) mondayTemplate(t *testing.T) availability.Template {
	t.Helper()
	template, err := f.svc.CreateTemplate(context.Background(), TemplateInput{
		ProfessionalID: "prof-1",
		Weekday:        time.Monday,
		StartMinute:    9 * 60,
		EndMinute:      12 * 60,
		SlotMinutes:    60,
		ValidFrom:      time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		OnlineBooking:  true,
	})
	if err != nil {
		t.Fatalf("CreateTemplate returned error: %v", err)
	}
	return template
}

func mondayRange() GetAvailableSlotsParams {
	monday := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	return GetAvailableSlotsParams{
		ProfessionalID:  "prof-1",
		From:            monday,
		To:              monday,
		DurationMinutes: 60,
	}
}

func TestAvailabilityService_GetAvailableSlots_ExpandsTemplates(t *testing.T) {
	t.Parallel()

	f := newAvailabilityFixture(t)
	f.mondayTemplate(t)

	slots, err := f.svc.GetAvailableSlots(context.Background(), mondayRange())
	if err != nil {
		t.Fatalf("GetAvailableSlots returned error: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("expected 3 hourly slots in a 09:00-12:00 window, got %d", len(slots))
	}
	wantFirst := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)
	if !slots[0].Start.Equal(wantFirst) {
		t.Fatalf("expected first slot at %v, got %v", wantFirst, slots[0].Start)
	}
	for _, slot := range slots {
		if slot.ProfessionalID != "prof-1" {
			t.Fatalf("unexpected professional on slot: %s", slot.ProfessionalID)
		}
		if got := slot.End.Sub(slot.Start); got != time.Hour {
			t.Fatalf("expected hour-long slots, got %v", got)
		}
	}
}

func TestAvailabilityService_GetAvailableSlots_ClosureSuppressesDate(t *testing.T) {
	t.Parallel()

	f := newAvailabilityFixture(t)
	f.mondayTemplate(t)

	_, err := f.svc.CreateException(context.Background(), ExceptionInput{
		ProfessionalID: "prof-1",
		Start:          time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC),
		End:            time.Date(2025, time.June, 2, 11, 0, 0, 0, time.UTC),
		Closed:         true,
		Reason:         "udienza",
	})
	if err != nil {
		t.Fatalf("CreateException returned error: %v", err)
	}

	slots, err := f.svc.GetAvailableSlots(context.Background(), mondayRange())
	if err != nil {
		t.Fatalf("GetAvailableSlots returned error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("a closure on the date must suppress every slot, got %d", len(slots))
	}
}

func TestAvailabilityService_GetAvailableSlots_BookedSlotsAreRemoved(t *testing.T) {
	t.Parallel()

	f := newAvailabilityFixture(t)
	f.mondayTemplate(t)

	held := Appointment{
		ID:             "held",
		ProfessionalID: "prof-1",
		ClientID:       "client-1",
		Title:          "Gia prenotato",
		Start:          time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC),
		End:            time.Date(2025, time.June, 2, 11, 0, 0, 0, time.UTC),
		Status:         booking.StatusRequested,
	}
	if _, err := f.store.CreateAppointment(context.Background(), held, nil); err != nil {
		t.Fatalf("seeding appointment: %v", err)
	}

	slots, err := f.svc.GetAvailableSlots(context.Background(), mondayRange())
	if err != nil {
		t.Fatalf("GetAvailableSlots returned error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected the requested appointment to hide its slot, got %d slots", len(slots))
	}
	for _, slot := range slots {
		if slot.Start.Hour() == 10 {
			t.Fatalf("the 10:00 slot should be hidden, got %v", slot.Start)
		}
	}
}

func TestAvailabilityService_GetAvailableSlots_CachesAndInvalidates(t *testing.T) {
	t.Parallel()

	f := newAvailabilityFixture(t)
	f.mondayTemplate(t)
	before := f.templates.listCallCount()

	if _, err := f.svc.GetAvailableSlots(context.Background(), mondayRange()); err != nil {
		t.Fatalf("GetAvailableSlots returned error: %v", err)
	}
	if _, err := f.svc.GetAvailableSlots(context.Background(), mondayRange()); err != nil {
		t.Fatalf("GetAvailableSlots returned error: %v", err)
	}
	if got := f.templates.listCallCount() - before; got != 1 {
		t.Fatalf("expected the second query to be served from cache, repo was hit %d times", got)
	}

	f.svc.InvalidateSlots("prof-1")
	if _, err := f.svc.GetAvailableSlots(context.Background(), mondayRange()); err != nil {
		t.Fatalf("GetAvailableSlots returned error: %v", err)
	}
	if got := f.templates.listCallCount() - before; got != 2 {
		t.Fatalf("expected invalidation to force a recompute, repo was hit %d times", got)
	}
}

func TestAvailabilityService_GetAvailableSlots_Validation(t *testing.T) {
	t.Parallel()

	f := newAvailabilityFixture(t)
	monday := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		params GetAvailableSlotsParams
	}{
		{
			name: "missing professional",
			params: GetAvailableSlotsParams{
				From: monday, To: monday, DurationMinutes: 60,
			},
		},
		{
			name: "non-positive duration",
			params: GetAvailableSlotsParams{
				ProfessionalID: "prof-1", From: monday, To: monday,
			},
		},
		{
			name: "inverted range",
			params: GetAvailableSlotsParams{
				ProfessionalID: "prof-1", From: monday, To: monday.AddDate(0, 0, -1), DurationMinutes: 60,
			},
		},
		{
			name: "range beyond the cap",
			params: GetAvailableSlotsParams{
				ProfessionalID: "prof-1", From: monday, To: monday.AddDate(0, 0, 120), DurationMinutes: 60,
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := f.svc.GetAvailableSlots(context.Background(), tc.params)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestAvailabilityService_CreateTemplate_Validation(t *testing.T) {
	t.Parallel()

	f := newAvailabilityFixture(t)

	_, err := f.svc.CreateTemplate(context.Background(), TemplateInput{
		ProfessionalID: "",
		Weekday:        12,
		StartMinute:    600,
		EndMinute:      540,
		SlotMinutes:    0,
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"professional_id", "weekday", "time", "slot_minutes", "valid_from"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestAvailabilityService_CreateTemplate_RejectsUnknownProfessional(t *testing.T) {
	t.Parallel()

	templates := newTemplateRepoStub()
	catalog := &catalogStub{known: map[string]bool{"prof-1": true}}
	svc := NewAvailabilityService(templates, newExceptionRepoStub(), newBookingStore(), catalog, nil, AvailabilityServiceConfig{}, sequentialIDs("av"), nil)

	_, err := svc.CreateTemplate(context.Background(), TemplateInput{
		ProfessionalID: "prof-ghost",
		Weekday:        time.Monday,
		StartMinute:    540,
		EndMinute:      720,
		SlotMinutes:    60,
		ValidFrom:      time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for unknown professional, got %v", err)
	}
}

func TestAvailabilityService_DeactivateTemplate_RemovesFutureSlots(t *testing.T) {
	t.Parallel()

	f := newAvailabilityFixture(t)
	template := f.mondayTemplate(t)

	slots, err := f.svc.GetAvailableSlots(context.Background(), mondayRange())
	if err != nil {
		t.Fatalf("GetAvailableSlots returned error: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected slots before deactivation")
	}

	deactivated, err := f.svc.DeactivateTemplate(context.Background(), template.ID)
	if err != nil {
		t.Fatalf("DeactivateTemplate returned error: %v", err)
	}
	if deactivated.Active {
		t.Fatal("expected the template to be inactive")
	}

	slots, err = f.svc.GetAvailableSlots(context.Background(), mondayRange())
	if err != nil {
		t.Fatalf("GetAvailableSlots returned error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots after deactivation, got %d", len(slots))
	}

	// The template row survives for the audit trail.
	stored, err := f.templates.GetTemplate(context.Background(), template.ID)
	if err != nil {
		t.Fatalf("GetTemplate returned error: %v", err)
	}
	if stored.Active {
		t.Fatal("expected stored template to be flagged inactive, not deleted")
	}
}

func TestAvailabilityService_DeleteException_RestoresSlots(t *testing.T) {
	t.Parallel()

	f := newAvailabilityFixture(t)
	f.mondayTemplate(t)

	exception, err := f.svc.CreateException(context.Background(), ExceptionInput{
		ProfessionalID: "prof-1",
		Start:          time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC),
		Closed:         true,
		Reason:         "ferie",
	})
	if err != nil {
		t.Fatalf("CreateException returned error: %v", err)
	}

	slots, err := f.svc.GetAvailableSlots(context.Background(), mondayRange())
	if err != nil {
		t.Fatalf("GetAvailableSlots returned error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected closure to suppress slots, got %d", len(slots))
	}

	if err := f.svc.DeleteException(context.Background(), exception.ID); err != nil {
		t.Fatalf("DeleteException returned error: %v", err)
	}

	slots, err = f.svc.GetAvailableSlots(context.Background(), mondayRange())
	if err != nil {
		t.Fatalf("GetAvailableSlots returned error: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("expected slots back after removing the closure, got %d", len(slots))
	}
}

func TestAvailabilityService_UpdateTemplate_ChangesWindow(t *testing.T) {
	t.Parallel()

	f := newAvailabilityFixture(t)
	template := f.mondayTemplate(t)

	updated, err := f.svc.UpdateTemplate(context.Background(), template.ID, TemplateInput{
		Weekday:       time.Monday,
		StartMinute:   14 * 60,
		EndMinute:     16 * 60,
		SlotMinutes:   60,
		ValidFrom:     template.ValidFrom,
		OnlineBooking: true,
	})
	if err != nil {
		t.Fatalf("UpdateTemplate returned error: %v", err)
	}
	if updated.ProfessionalID != "prof-1" {
		t.Fatalf("update must keep the owning professional, got %q", updated.ProfessionalID)
	}

	slots, err := f.svc.GetAvailableSlots(context.Background(), mondayRange())
	if err != nil {
		t.Fatalf("GetAvailableSlots returned error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 afternoon slots after the update, got %d", len(slots))
	}
	if got := slots[0].Start.Hour(); got != 14 {
		t.Fatalf("expected the window to move to 14:00, got %d:00", got)
	}
}
