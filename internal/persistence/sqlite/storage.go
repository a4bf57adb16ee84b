// Package sqlite provides the SQLite-backed persistence layer. Repositories
// implement the application package's repository interfaces; appointments and
// their participants are written atomically through shared transactions.
package sqlite

import (
	"context"
)

// Storage bundles the connection pool and the repositories built on top of it.
// One Storage instance is shared by every service.
type Storage struct {
	pool *ConnectionPool

	Appointments  *AppointmentRepository
	Participants  *ParticipantRepository
	Templates     *TemplateRepository
	Exceptions    *ExceptionRepository
	Professionals *ProfessionalRepository
	Clients       *ClientRepository
	Partners      *PartnerRepository
}

// Open creates a Storage backed by the database at dsn with default settings.
func Open(dsn string) (*Storage, error) {
	return OpenWithConfig(DefaultConfig(dsn))
}

// OpenWithConfig creates a Storage with explicit connection settings.
func OpenWithConfig(config Config) (*Storage, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}

	return &Storage{
		pool:          pool,
		Appointments:  NewAppointmentRepository(pool),
		Participants:  NewParticipantRepository(pool),
		Templates:     NewTemplateRepository(pool),
		Exceptions:    NewExceptionRepository(pool),
		Professionals: NewProfessionalRepository(pool),
		Clients:       NewClientRepository(pool),
		Partners:      NewPartnerRepository(pool),
	}, nil
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Close()
}

// Ping tests the database connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
