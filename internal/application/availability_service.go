package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/practice-scheduler/internal/availability"
	"github.com/example/practice-scheduler/internal/booking"
	"github.com/example/practice-scheduler/internal/interval"
)

// TemplateRepository stores recurring weekly availability templates.
// Templates are never deleted, only deactivated, to preserve the audit trail.
type TemplateRepository interface {
	CreateTemplate(ctx context.Context, template availability.Template) (availability.Template, error)
	GetTemplate(ctx context.Context, id string) (availability.Template, error)
	UpdateTemplate(ctx context.Context, template availability.Template) (availability.Template, error)
	ListTemplatesForProfessional(ctx context.Context, professionalID string) ([]availability.Template, error)
}

// ExceptionRepository stores date-range availability overrides.
type ExceptionRepository interface {
	CreateException(ctx context.Context, exception availability.Exception) (availability.Exception, error)
	GetException(ctx context.Context, id string) (availability.Exception, error)
	DeleteException(ctx context.Context, id string) error
	ListExceptionsForProfessional(ctx context.Context, professionalID string) ([]availability.Exception, error)
}

// ProfessionalCatalog exposes professional existence checks.
type ProfessionalCatalog interface {
	ProfessionalExists(ctx context.Context, id string) (bool, error)
}

// AvailabilityService manages availability templates and exceptions and
// computes a professional's bookable slots.
type AvailabilityService struct {
	templates    TemplateRepository
	exceptions   ExceptionRepository
	appointments AppointmentRepository
	catalog      ProfessionalCatalog
	engine       *availability.Engine
	cache        *slotCache
	maxRangeDays int
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// AvailabilityServiceConfig tunes optional service behavior.
type AvailabilityServiceConfig struct {
	// MaxRangeDays caps the length of a slot query; 0 means the default of 90.
	MaxRangeDays int
	// CacheTTL bounds how long computed slot listings may be served from
	// cache; 0 means the default of 30 seconds.
	CacheTTL time.Duration
}

// NewAvailabilityService wires dependencies for availability operations.
func NewAvailabilityService(templates TemplateRepository, exceptions ExceptionRepository, appointments AppointmentRepository, catalog ProfessionalCatalog, engine *availability.Engine, cfg AvailabilityServiceConfig, idGenerator func() string, now func() time.Time) *AvailabilityService {
	return NewAvailabilityServiceWithLogger(templates, exceptions, appointments, catalog, engine, cfg, idGenerator, now, nil)
}

// NewAvailabilityServiceWithLogger wires dependencies plus a base logger.
func NewAvailabilityServiceWithLogger(templates TemplateRepository, exceptions ExceptionRepository, appointments AppointmentRepository, catalog ProfessionalCatalog, engine *availability.Engine, cfg AvailabilityServiceConfig, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AvailabilityService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if engine == nil {
		engine = availability.NewEngine(nil)
	}
	maxRangeDays := cfg.MaxRangeDays
	if maxRangeDays <= 0 {
		maxRangeDays = 90
	}
	return &AvailabilityService{
		templates:    templates,
		exceptions:   exceptions,
		appointments: appointments,
		catalog:      catalog,
		engine:       engine,
		cache:        newSlotCache(cfg.CacheTTL, 0, now),
		maxRangeDays: maxRangeDays,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

// CreateTemplate validates and persists a new availability template.
func (s *AvailabilityService) CreateTemplate(ctx context.Context, input TemplateInput) (availability.Template, error) {
	if s == nil {
		return availability.Template{}, fmt.Errorf("AvailabilityService is nil")
	}

	if err := s.validateTemplateInput(ctx, input); err != nil {
		return availability.Template{}, err
	}

	template := availability.Template{
		ID:             s.idGenerator(),
		ProfessionalID: input.ProfessionalID,
		Weekday:        input.Weekday,
		StartMinute:    input.StartMinute,
		EndMinute:      input.EndMinute,
		SlotMinutes:    input.SlotMinutes,
		ValidFrom:      input.ValidFrom,
		ValidUntil:     input.ValidUntil,
		Active:         true,
		OnlineBooking:  input.OnlineBooking,
	}

	persisted, err := s.templates.CreateTemplate(ctx, template)
	if err != nil {
		return availability.Template{}, err
	}

	s.cache.Invalidate(template.ProfessionalID)
	serviceLogger(ctx, s.logger, "availability", "create_template", "professional_id", template.ProfessionalID).
		InfoContext(ctx, "template created", "template_id", persisted.ID)
	return persisted, nil
}

// UpdateTemplate validates and updates an existing template.
func (s *AvailabilityService) UpdateTemplate(ctx context.Context, templateID string, input TemplateInput) (availability.Template, error) {
	if s == nil {
		return availability.Template{}, fmt.Errorf("AvailabilityService is nil")
	}

	existing, err := s.templates.GetTemplate(ctx, templateID)
	if err != nil {
		return availability.Template{}, err
	}

	if input.ProfessionalID == "" {
		input.ProfessionalID = existing.ProfessionalID
	}
	if err := s.validateTemplateInput(ctx, input); err != nil {
		return availability.Template{}, err
	}

	updated := existing
	updated.Weekday = input.Weekday
	updated.StartMinute = input.StartMinute
	updated.EndMinute = input.EndMinute
	updated.SlotMinutes = input.SlotMinutes
	updated.ValidFrom = input.ValidFrom
	updated.ValidUntil = input.ValidUntil
	updated.OnlineBooking = input.OnlineBooking

	persisted, err := s.templates.UpdateTemplate(ctx, updated)
	if err != nil {
		return availability.Template{}, err
	}

	s.cache.Invalidate(persisted.ProfessionalID)
	return persisted, nil
}

// DeactivateTemplate retires a template without deleting it.
func (s *AvailabilityService) DeactivateTemplate(ctx context.Context, templateID string) (availability.Template, error) {
	if s == nil {
		return availability.Template{}, fmt.Errorf("AvailabilityService is nil")
	}

	existing, err := s.templates.GetTemplate(ctx, templateID)
	if err != nil {
		return availability.Template{}, err
	}

	existing.Active = false
	persisted, err := s.templates.UpdateTemplate(ctx, existing)
	if err != nil {
		return availability.Template{}, err
	}

	s.cache.Invalidate(persisted.ProfessionalID)
	return persisted, nil
}

// ListTemplates returns all templates for a professional, active or not.
func (s *AvailabilityService) ListTemplates(ctx context.Context, professionalID string) ([]availability.Template, error) {
	if s == nil {
		return nil, fmt.Errorf("AvailabilityService is nil")
	}
	return s.templates.ListTemplatesForProfessional(ctx, professionalID)
}

// CreateException validates and persists a date-range override.
func (s *AvailabilityService) CreateException(ctx context.Context, input ExceptionInput) (availability.Exception, error) {
	if s == nil {
		return availability.Exception{}, fmt.Errorf("AvailabilityService is nil")
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.ProfessionalID) == "" {
		vErr.add("professional_id", "professional is required")
	}
	if !input.Start.Before(input.End) {
		vErr.add("time", "start must precede end")
	}
	if vErr.HasErrors() {
		return availability.Exception{}, vErr
	}

	if err := s.ensureProfessionalExists(ctx, input.ProfessionalID); err != nil {
		return availability.Exception{}, err
	}

	exception := availability.Exception{
		ID:             s.idGenerator(),
		ProfessionalID: input.ProfessionalID,
		Start:          input.Start,
		End:            input.End,
		Closed:         input.Closed,
		Reason:         strings.TrimSpace(input.Reason),
	}

	persisted, err := s.exceptions.CreateException(ctx, exception)
	if err != nil {
		return availability.Exception{}, err
	}

	s.cache.Invalidate(exception.ProfessionalID)
	return persisted, nil
}

// DeleteException removes an override.
func (s *AvailabilityService) DeleteException(ctx context.Context, exceptionID string) error {
	if s == nil {
		return fmt.Errorf("AvailabilityService is nil")
	}

	existing, err := s.exceptions.GetException(ctx, exceptionID)
	if err != nil {
		return err
	}
	if err := s.exceptions.DeleteException(ctx, exceptionID); err != nil {
		return err
	}
	s.cache.Invalidate(existing.ProfessionalID)
	return nil
}

// ListExceptions returns all overrides for a professional.
func (s *AvailabilityService) ListExceptions(ctx context.Context, professionalID string) ([]availability.Exception, error) {
	if s == nil {
		return nil, fmt.Errorf("AvailabilityService is nil")
	}
	return s.exceptions.ListExceptionsForProfessional(ctx, professionalID)
}

// GetAvailableSlots computes the professional's free bookable slots in the
// requested date range: template expansion, exception suppression, then
// removal of slots held by requested, approved or confirmed appointments.
func (s *AvailabilityService) GetAvailableSlots(ctx context.Context, params GetAvailableSlotsParams) ([]Slot, error) {
	if s == nil {
		return nil, fmt.Errorf("AvailabilityService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "availability", "get_slots", "professional_id", params.ProfessionalID)

	vErr := &ValidationError{}
	if strings.TrimSpace(params.ProfessionalID) == "" {
		vErr.add("professional_id", "professional is required")
	}
	if params.DurationMinutes <= 0 {
		vErr.add("duration", "duration must be positive")
	}
	if params.To.Before(params.From) {
		vErr.add("range", "date range end precedes start")
	} else if params.To.Sub(params.From) > time.Duration(s.maxRangeDays)*24*time.Hour {
		vErr.add("range", fmt.Sprintf("date range may not exceed %d days", s.maxRangeDays))
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	key := slotCacheKey(params)
	if slots, ok := s.cache.Get(key); ok {
		return slots, nil
	}

	templates, err := s.templates.ListTemplatesForProfessional(ctx, params.ProfessionalID)
	if err != nil {
		return nil, err
	}
	exceptions, err := s.exceptions.ListExceptionsForProfessional(ctx, params.ProfessionalID)
	if err != nil {
		return nil, err
	}

	generated, err := s.engine.GenerateSlots(templates, exceptions, availability.GenerateParams{
		From:            params.From,
		To:              params.To,
		DurationMinutes: params.DurationMinutes,
		Now:             s.now(),
	})
	if err != nil {
		return nil, err
	}

	rangeEnd := params.To.AddDate(0, 0, 1)
	existing, err := s.appointments.ListAppointments(ctx, AppointmentFilter{
		ProfessionalID: params.ProfessionalID,
		StartsBefore:   &rangeEnd,
		EndsAfter:      &params.From,
	})
	if err != nil {
		return nil, err
	}

	spans := make([]interval.Span, 0, len(generated))
	for _, g := range generated {
		spans = append(spans, interval.Span{Start: g.Start, End: g.End})
	}
	free := booking.FilterSlots(spans, asBookings(existing))

	slots := make([]Slot, 0, len(free))
	for _, span := range free {
		slots = append(slots, Slot{
			ProfessionalID: params.ProfessionalID,
			Start:          span.Start,
			End:            span.End,
		})
	}

	s.cache.Set(key, params.ProfessionalID, slots)
	logger.InfoContext(ctx, "slots computed", "generated", len(generated), "free", len(slots))
	return slots, nil
}

// InvalidateSlots drops cached slot listings for a professional. The booking
// service calls this after every calendar write.
func (s *AvailabilityService) InvalidateSlots(professionalID string) {
	if s == nil {
		return
	}
	s.cache.Invalidate(professionalID)
}

func (s *AvailabilityService) validateTemplateInput(ctx context.Context, input TemplateInput) error {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.ProfessionalID) == "" {
		vErr.add("professional_id", "professional is required")
	}
	if input.Weekday < time.Sunday || input.Weekday > time.Saturday {
		vErr.add("weekday", "weekday must be between 0 and 6")
	}
	if input.StartMinute < 0 || input.EndMinute > 24*60 || input.StartMinute >= input.EndMinute {
		vErr.add("time", "start time must precede end time within the day")
	}
	if input.SlotMinutes <= 0 {
		vErr.add("slot_minutes", "slot duration must be positive")
	}
	if input.ValidFrom.IsZero() {
		vErr.add("valid_from", "validity start is required")
	}
	if input.ValidUntil != nil && input.ValidUntil.Before(input.ValidFrom) {
		vErr.add("valid_until", "validity end precedes validity start")
	}
	if vErr.HasErrors() {
		return vErr
	}

	return s.ensureProfessionalExists(ctx, input.ProfessionalID)
}

func (s *AvailabilityService) ensureProfessionalExists(ctx context.Context, professionalID string) error {
	if s.catalog == nil {
		return nil
	}
	exists, err := s.catalog.ProfessionalExists(ctx, professionalID)
	if err != nil {
		return err
	}
	if !exists {
		vErr := &ValidationError{}
		vErr.add("professional_id", "professional not found")
		return vErr
	}
	return nil
}
