package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/practice-scheduler/internal/application"
	"github.com/example/practice-scheduler/internal/availability"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Location    *time.Location
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
		Location:    time.UTC,
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	if factory.Location == nil {
		factory.Location = time.UTC
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithLocation overrides the timezone slots are generated in.
func WithLocation(location *time.Location) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Location = location
	}
}

// DirectoryServiceDeps captures dependencies for a directory service.
type DirectoryServiceDeps struct {
	Professionals application.ProfessionalRepository
	Clients       application.ClientRepository
	Partners      application.PartnerRepository
	Logger        *slog.Logger
}

// DirectoryService builds a directory service wired to the factory's clock
// and identifier generator.
func (f *ServiceFactory) DirectoryService(deps DirectoryServiceDeps) *application.DirectoryService {
	return application.NewDirectoryServiceWithLogger(
		deps.Professionals,
		deps.Clients,
		deps.Partners,
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		deps.Logger,
	)
}

// AvailabilityServiceDeps captures dependencies for an availability service.
type AvailabilityServiceDeps struct {
	Templates    application.TemplateRepository
	Exceptions   application.ExceptionRepository
	Appointments application.AppointmentRepository
	Catalog      application.ProfessionalCatalog
	Config       application.AvailabilityServiceConfig
	Logger       *slog.Logger
}

// AvailabilityService builds an availability service with an engine bound to
// the factory's location.
func (f *ServiceFactory) AvailabilityService(deps AvailabilityServiceDeps) *application.AvailabilityService {
	return application.NewAvailabilityServiceWithLogger(
		deps.Templates,
		deps.Exceptions,
		deps.Appointments,
		deps.Catalog,
		availability.NewEngine(f.Location),
		deps.Config,
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		deps.Logger,
	)
}

// BookingServiceDeps captures dependencies for a booking service.
type BookingServiceDeps struct {
	Appointments application.AppointmentRepository
	Participants application.ParticipantRepository
	Directory    application.PartyDirectory
	Notifier     application.Notifier
	Invalidator  application.SlotInvalidator
	Logger       *slog.Logger
}

// BookingService builds a booking service wired to the factory's clock and
// identifier generator.
func (f *ServiceFactory) BookingService(deps BookingServiceDeps) *application.BookingService {
	return application.NewBookingServiceWithLogger(
		deps.Appointments,
		deps.Participants,
		deps.Directory,
		deps.Notifier,
		deps.Invalidator,
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		deps.Logger,
	)
}
