package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/practice-scheduler/internal/application"
	"github.com/example/practice-scheduler/internal/availability"
)

const templateColumns = `id, professional_id, weekday, start_minute, end_minute,
	slot_minutes, valid_from, valid_until, active, online_booking`

// TemplateRepository implements application.TemplateRepository using SQLite.
// Rows are only ever inserted or updated; deactivation flips the active flag.
type TemplateRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewTemplateRepository creates a new SQLite template repository.
func NewTemplateRepository(pool *ConnectionPool) *TemplateRepository {
	return &TemplateRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateTemplate inserts a new availability template.
func (r *TemplateRepository) CreateTemplate(ctx context.Context, template availability.Template) (availability.Template, error) {
	query := `
		INSERT INTO availability_templates (` + templateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		template.ID,
		template.ProfessionalID,
		int(template.Weekday),
		template.StartMinute,
		template.EndMinute,
		template.SlotMinutes,
		formatTime(template.ValidFrom),
		formatNullableTime(template.ValidUntil),
		boolToInt(template.Active),
		boolToInt(template.OnlineBooking),
	)
	if err != nil {
		return availability.Template{}, r.mapper.MapError(err)
	}
	return template, nil
}

// GetTemplate retrieves a template by ID.
func (r *TemplateRepository) GetTemplate(ctx context.Context, id string) (availability.Template, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+templateColumns+` FROM availability_templates WHERE id = ?`, id)
	template, err := scanTemplate(row)
	if err != nil {
		return availability.Template{}, r.mapper.MapError(err)
	}
	return template, nil
}

// UpdateTemplate rewrites an existing template.
func (r *TemplateRepository) UpdateTemplate(ctx context.Context, template availability.Template) (availability.Template, error) {
	query := `
		UPDATE availability_templates
		SET weekday = ?, start_minute = ?, end_minute = ?, slot_minutes = ?,
			valid_from = ?, valid_until = ?, active = ?, online_booking = ?
		WHERE id = ?
	`
	result, err := r.helper.Exec(ctx, query,
		int(template.Weekday),
		template.StartMinute,
		template.EndMinute,
		template.SlotMinutes,
		formatTime(template.ValidFrom),
		formatNullableTime(template.ValidUntil),
		boolToInt(template.Active),
		boolToInt(template.OnlineBooking),
		template.ID,
	)
	if err != nil {
		return availability.Template{}, r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return availability.Template{}, err
	}
	if affected == 0 {
		return availability.Template{}, application.ErrNotFound
	}
	return template, nil
}

// ListTemplatesForProfessional returns every template for a professional,
// active or not.
func (r *TemplateRepository) ListTemplatesForProfessional(ctx context.Context, professionalID string) ([]availability.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM availability_templates WHERE professional_id = ? ORDER BY weekday, start_minute`
	rows, err := r.helper.Query(ctx, query, professionalID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var templates []availability.Template
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	return templates, rows.Err()
}

func scanTemplate(row rowScanner) (availability.Template, error) {
	var (
		template      availability.Template
		weekday       int
		validFrom     string
		validUntil    sql.NullString
		active        int
		onlineBooking int
	)

	err := row.Scan(
		&template.ID,
		&template.ProfessionalID,
		&weekday,
		&template.StartMinute,
		&template.EndMinute,
		&template.SlotMinutes,
		&validFrom,
		&validUntil,
		&active,
		&onlineBooking,
	)
	if err != nil {
		return availability.Template{}, err
	}

	template.Weekday = time.Weekday(weekday)
	template.Active = active != 0
	template.OnlineBooking = onlineBooking != 0

	if template.ValidFrom, err = parseTime(validFrom); err != nil {
		return availability.Template{}, err
	}
	if template.ValidUntil, err = parseNullableTime(validUntil); err != nil {
		return availability.Template{}, err
	}
	return template, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
