package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
)

// ProfessionalRepository exposes CRUD operations for professionals.
type ProfessionalRepository interface {
	CreateProfessional(ctx context.Context, professional Professional) (Professional, error)
	GetProfessional(ctx context.Context, id string) (Professional, error)
	UpdateProfessional(ctx context.Context, professional Professional) (Professional, error)
	ListProfessionals(ctx context.Context) ([]Professional, error)
}

// ClientRepository exposes CRUD operations for clients.
type ClientRepository interface {
	CreateClient(ctx context.Context, client Client) (Client, error)
	GetClient(ctx context.Context, id string) (Client, error)
	ListClients(ctx context.Context) ([]Client, error)
}

// PartnerRepository exposes CRUD operations for partner organizations.
type PartnerRepository interface {
	CreatePartner(ctx context.Context, partner PartnerOrg) (PartnerOrg, error)
	GetPartner(ctx context.Context, id string) (PartnerOrg, error)
	ListPartners(ctx context.Context) ([]PartnerOrg, error)
}

// DirectoryService resolves professional, client and partner identities. It is
// the engine-side view of the external directory collaborator; authentication
// is not its concern.
type DirectoryService struct {
	professionals ProfessionalRepository
	clients       ClientRepository
	partners      PartnerRepository
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewDirectoryService wires dependencies for directory operations.
func NewDirectoryService(professionals ProfessionalRepository, clients ClientRepository, partners PartnerRepository, idGenerator func() string, now func() time.Time) *DirectoryService {
	return NewDirectoryServiceWithLogger(professionals, clients, partners, idGenerator, now, nil)
}

// NewDirectoryServiceWithLogger wires dependencies plus a base logger.
func NewDirectoryServiceWithLogger(professionals ProfessionalRepository, clients ClientRepository, partners PartnerRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *DirectoryService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &DirectoryService{
		professionals: professionals,
		clients:       clients,
		partners:      partners,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

// CreateProfessional validates input and persists a new professional.
func (s *DirectoryService) CreateProfessional(ctx context.Context, input ProfessionalInput) (Professional, error) {
	if s == nil {
		return Professional{}, fmt.Errorf("DirectoryService is nil")
	}

	if err := validateNameAndEmail(input.DisplayName, input.Email); err != nil {
		return Professional{}, err
	}

	createdAt := s.now()
	professional := Professional{
		ID:          s.idGenerator(),
		DisplayName: strings.TrimSpace(input.DisplayName),
		Email:       normalizeEmail(input.Email),
		Active:      true,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	return s.professionals.CreateProfessional(ctx, professional)
}

// GetProfessional retrieves a professional by ID.
func (s *DirectoryService) GetProfessional(ctx context.Context, id string) (Professional, error) {
	if s == nil {
		return Professional{}, fmt.Errorf("DirectoryService is nil")
	}
	return s.professionals.GetProfessional(ctx, id)
}

// ListProfessionals returns every professional in the directory.
func (s *DirectoryService) ListProfessionals(ctx context.Context) ([]Professional, error) {
	if s == nil {
		return nil, fmt.Errorf("DirectoryService is nil")
	}
	return s.professionals.ListProfessionals(ctx)
}

// DeactivateProfessional marks a professional as no longer bookable without
// deleting the record.
func (s *DirectoryService) DeactivateProfessional(ctx context.Context, id string) (Professional, error) {
	if s == nil {
		return Professional{}, fmt.Errorf("DirectoryService is nil")
	}

	existing, err := s.professionals.GetProfessional(ctx, id)
	if err != nil {
		return Professional{}, err
	}

	existing.Active = false
	existing.UpdatedAt = s.now()
	return s.professionals.UpdateProfessional(ctx, existing)
}

// CreateClient validates input and persists a new client.
func (s *DirectoryService) CreateClient(ctx context.Context, input ClientInput) (Client, error) {
	if s == nil {
		return Client{}, fmt.Errorf("DirectoryService is nil")
	}

	if err := validateNameAndEmail(input.DisplayName, input.Email); err != nil {
		return Client{}, err
	}

	createdAt := s.now()
	client := Client{
		ID:          s.idGenerator(),
		DisplayName: strings.TrimSpace(input.DisplayName),
		Email:       normalizeEmail(input.Email),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	return s.clients.CreateClient(ctx, client)
}

// GetClient retrieves a client by ID.
func (s *DirectoryService) GetClient(ctx context.Context, id string) (Client, error) {
	if s == nil {
		return Client{}, fmt.Errorf("DirectoryService is nil")
	}
	return s.clients.GetClient(ctx, id)
}

// ListClients returns every client in the directory.
func (s *DirectoryService) ListClients(ctx context.Context) ([]Client, error) {
	if s == nil {
		return nil, fmt.Errorf("DirectoryService is nil")
	}
	return s.clients.ListClients(ctx)
}

// CreatePartner validates input and persists a new partner organization.
func (s *DirectoryService) CreatePartner(ctx context.Context, input PartnerInput) (PartnerOrg, error) {
	if s == nil {
		return PartnerOrg{}, fmt.Errorf("DirectoryService is nil")
	}

	if err := validateNameAndEmail(input.Name, input.Email); err != nil {
		return PartnerOrg{}, err
	}

	createdAt := s.now()
	partner := PartnerOrg{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(input.Name),
		Email:     normalizeEmail(input.Email),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	return s.partners.CreatePartner(ctx, partner)
}

// GetPartner retrieves a partner organization by ID.
func (s *DirectoryService) GetPartner(ctx context.Context, id string) (PartnerOrg, error) {
	if s == nil {
		return PartnerOrg{}, fmt.Errorf("DirectoryService is nil")
	}
	return s.partners.GetPartner(ctx, id)
}

// ListPartners returns every partner organization in the directory.
func (s *DirectoryService) ListPartners(ctx context.Context) ([]PartnerOrg, error) {
	if s == nil {
		return nil, fmt.Errorf("DirectoryService is nil")
	}
	return s.partners.ListPartners(ctx)
}

// ProfessionalExists implements ProfessionalCatalog. Inactive professionals
// are reported as missing so no new availability can be attached to them.
func (s *DirectoryService) ProfessionalExists(ctx context.Context, id string) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("DirectoryService is nil")
	}

	professional, err := s.professionals.GetProfessional(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return professional.Active, nil
}

// MissingParties implements PartyDirectory: it returns the subset of parties
// that cannot be resolved against the client or partner directory.
func (s *DirectoryService) MissingParties(ctx context.Context, parties []Party) ([]Party, error) {
	if s == nil {
		return nil, fmt.Errorf("DirectoryService is nil")
	}

	var missing []Party
	for _, party := range parties {
		var err error
		switch party.Kind {
		case PartyClient:
			_, err = s.clients.GetClient(ctx, party.ID)
		case PartyPartner:
			_, err = s.partners.GetPartner(ctx, party.ID)
		default:
			missing = append(missing, party)
			continue
		}
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				missing = append(missing, party)
				continue
			}
			return nil, err
		}
	}
	return missing, nil
}

func validateNameAndEmail(name, email string) error {
	vErr := &ValidationError{}
	if strings.TrimSpace(name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(email) == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(normalizeEmail(email)); err != nil {
		vErr.add("email", "email is malformed")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
