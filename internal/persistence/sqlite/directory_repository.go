package sqlite

import (
	"context"

	"github.com/example/practice-scheduler/internal/application"
)

// ProfessionalRepository implements application.ProfessionalRepository using
// SQLite.
type ProfessionalRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewProfessionalRepository creates a new SQLite professional repository.
func NewProfessionalRepository(pool *ConnectionPool) *ProfessionalRepository {
	return &ProfessionalRepository{helper: NewQueryHelper(pool), mapper: NewErrorMapper()}
}

// CreateProfessional inserts a new professional.
func (r *ProfessionalRepository) CreateProfessional(ctx context.Context, professional application.Professional) (application.Professional, error) {
	query := `
		INSERT INTO professionals (id, display_name, email, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		professional.ID,
		professional.DisplayName,
		professional.Email,
		boolToInt(professional.Active),
		formatTime(professional.CreatedAt),
		formatTime(professional.UpdatedAt),
	)
	if err != nil {
		return application.Professional{}, r.mapper.MapError(err)
	}
	return professional, nil
}

// GetProfessional retrieves a professional by ID.
func (r *ProfessionalRepository) GetProfessional(ctx context.Context, id string) (application.Professional, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, display_name, email, active, created_at, updated_at
		FROM professionals WHERE id = ?
	`, id)

	var (
		professional application.Professional
		active       int
		createdAt    string
		updatedAt    string
	)
	err := row.Scan(&professional.ID, &professional.DisplayName, &professional.Email, &active, &createdAt, &updatedAt)
	if err != nil {
		return application.Professional{}, r.mapper.MapError(err)
	}

	professional.Active = active != 0
	if professional.CreatedAt, err = parseTime(createdAt); err != nil {
		return application.Professional{}, err
	}
	if professional.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return application.Professional{}, err
	}
	return professional, nil
}

// UpdateProfessional rewrites an existing professional.
func (r *ProfessionalRepository) UpdateProfessional(ctx context.Context, professional application.Professional) (application.Professional, error) {
	result, err := r.helper.Exec(ctx, `
		UPDATE professionals SET display_name = ?, email = ?, active = ?, updated_at = ?
		WHERE id = ?
	`,
		professional.DisplayName,
		professional.Email,
		boolToInt(professional.Active),
		formatTime(professional.UpdatedAt),
		professional.ID,
	)
	if err != nil {
		return application.Professional{}, r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return application.Professional{}, err
	}
	if affected == 0 {
		return application.Professional{}, application.ErrNotFound
	}
	return professional, nil
}

// ListProfessionals returns every professional ordered by display name.
func (r *ProfessionalRepository) ListProfessionals(ctx context.Context) ([]application.Professional, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, display_name, email, active, created_at, updated_at
		FROM professionals ORDER BY display_name
	`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var professionals []application.Professional
	for rows.Next() {
		var (
			professional application.Professional
			active       int
			createdAt    string
			updatedAt    string
		)
		if err := rows.Scan(&professional.ID, &professional.DisplayName, &professional.Email, &active, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		professional.Active = active != 0
		if professional.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if professional.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		professionals = append(professionals, professional)
	}
	return professionals, rows.Err()
}

// ClientRepository implements application.ClientRepository using SQLite.
type ClientRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewClientRepository creates a new SQLite client repository.
func NewClientRepository(pool *ConnectionPool) *ClientRepository {
	return &ClientRepository{helper: NewQueryHelper(pool), mapper: NewErrorMapper()}
}

// CreateClient inserts a new client.
func (r *ClientRepository) CreateClient(ctx context.Context, client application.Client) (application.Client, error) {
	_, err := r.helper.Exec(ctx, `
		INSERT INTO clients (id, display_name, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		client.ID,
		client.DisplayName,
		client.Email,
		formatTime(client.CreatedAt),
		formatTime(client.UpdatedAt),
	)
	if err != nil {
		return application.Client{}, r.mapper.MapError(err)
	}
	return client, nil
}

// GetClient retrieves a client by ID.
func (r *ClientRepository) GetClient(ctx context.Context, id string) (application.Client, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, display_name, email, created_at, updated_at FROM clients WHERE id = ?
	`, id)

	var (
		client    application.Client
		createdAt string
		updatedAt string
	)
	err := row.Scan(&client.ID, &client.DisplayName, &client.Email, &createdAt, &updatedAt)
	if err != nil {
		return application.Client{}, r.mapper.MapError(err)
	}
	if client.CreatedAt, err = parseTime(createdAt); err != nil {
		return application.Client{}, err
	}
	if client.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return application.Client{}, err
	}
	return client, nil
}

// ListClients returns every client ordered by display name.
func (r *ClientRepository) ListClients(ctx context.Context) ([]application.Client, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, display_name, email, created_at, updated_at FROM clients ORDER BY display_name
	`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var clients []application.Client
	for rows.Next() {
		var (
			client    application.Client
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(&client.ID, &client.DisplayName, &client.Email, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if client.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if client.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

// PartnerRepository implements application.PartnerRepository using SQLite.
type PartnerRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewPartnerRepository creates a new SQLite partner repository.
func NewPartnerRepository(pool *ConnectionPool) *PartnerRepository {
	return &PartnerRepository{helper: NewQueryHelper(pool), mapper: NewErrorMapper()}
}

// CreatePartner inserts a new partner organization.
func (r *PartnerRepository) CreatePartner(ctx context.Context, partner application.PartnerOrg) (application.PartnerOrg, error) {
	_, err := r.helper.Exec(ctx, `
		INSERT INTO partners (id, name, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		partner.ID,
		partner.Name,
		partner.Email,
		formatTime(partner.CreatedAt),
		formatTime(partner.UpdatedAt),
	)
	if err != nil {
		return application.PartnerOrg{}, r.mapper.MapError(err)
	}
	return partner, nil
}

// GetPartner retrieves a partner organization by ID.
func (r *PartnerRepository) GetPartner(ctx context.Context, id string) (application.PartnerOrg, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at FROM partners WHERE id = ?
	`, id)

	var (
		partner   application.PartnerOrg
		createdAt string
		updatedAt string
	)
	err := row.Scan(&partner.ID, &partner.Name, &partner.Email, &createdAt, &updatedAt)
	if err != nil {
		return application.PartnerOrg{}, r.mapper.MapError(err)
	}
	if partner.CreatedAt, err = parseTime(createdAt); err != nil {
		return application.PartnerOrg{}, err
	}
	if partner.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return application.PartnerOrg{}, err
	}
	return partner, nil
}

// ListPartners returns every partner organization ordered by name.
func (r *PartnerRepository) ListPartners(ctx context.Context) ([]application.PartnerOrg, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, name, email, created_at, updated_at FROM partners ORDER BY name
	`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var partners []application.PartnerOrg
	for rows.Next() {
		var (
			partner   application.PartnerOrg
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(&partner.ID, &partner.Name, &partner.Email, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if partner.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if partner.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		partners = append(partners, partner)
	}
	return partners, rows.Err()
}
