package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/practice-scheduler/internal/application"
	"github.com/example/practice-scheduler/internal/booking"
)

const appointmentColumns = `id, professional_id, client_id, title, description, kind,
	start_time, end_time, status, public_notes, private_notes, act_id,
	reminder_sent_at, confirmation_sent_at, created_at, updated_at`

// AppointmentRepository implements application.AppointmentRepository using
// SQLite.
type AppointmentRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAppointmentRepository creates a new SQLite appointment repository.
func NewAppointmentRepository(pool *ConnectionPool) *AppointmentRepository {
	return &AppointmentRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateAppointment inserts the appointment and its initial participants in a
// single transaction, so a request can never be persisted without the
// requesting party attached.
func (r *AppointmentRepository) CreateAppointment(ctx context.Context, appointment application.Appointment, participants []application.Participant) (application.Appointment, error) {
	if appointment.ID == "" {
		return application.Appointment{}, fmt.Errorf("sqlite: appointment id is required")
	}

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO appointments (` + appointmentColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := r.helper.ExecTx(tx, query,
			appointment.ID,
			appointment.ProfessionalID,
			appointment.ClientID,
			appointment.Title,
			appointment.Description,
			appointment.Kind,
			formatTime(appointment.Start),
			formatTime(appointment.End),
			string(appointment.Status),
			appointment.PublicNotes,
			appointment.PrivateNotes,
			nullableString(appointment.ActID),
			formatNullableTime(appointment.ReminderSentAt),
			formatNullableTime(appointment.ConfirmationSentAt),
			formatTime(appointment.CreatedAt),
			formatTime(appointment.UpdatedAt),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		for _, participant := range participants {
			if err := insertParticipantTx(r.helper, tx, participant); err != nil {
				return r.mapper.MapError(err)
			}
		}
		return nil
	})
	if err != nil {
		return application.Appointment{}, err
	}
	return appointment, nil
}

// GetAppointment retrieves an appointment by ID.
func (r *AppointmentRepository) GetAppointment(ctx context.Context, id string) (application.Appointment, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id)
	appointment, err := scanAppointment(row)
	if err != nil {
		return application.Appointment{}, r.mapper.MapError(err)
	}
	return appointment, nil
}

// UpdateAppointment rewrites every mutable column of an existing appointment.
func (r *AppointmentRepository) UpdateAppointment(ctx context.Context, appointment application.Appointment) (application.Appointment, error) {
	query := `
		UPDATE appointments
		SET title = ?, description = ?, kind = ?, start_time = ?, end_time = ?,
			status = ?, public_notes = ?, private_notes = ?, act_id = ?,
			reminder_sent_at = ?, confirmation_sent_at = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.helper.Exec(ctx, query,
		appointment.Title,
		appointment.Description,
		appointment.Kind,
		formatTime(appointment.Start),
		formatTime(appointment.End),
		string(appointment.Status),
		appointment.PublicNotes,
		appointment.PrivateNotes,
		nullableString(appointment.ActID),
		formatNullableTime(appointment.ReminderSentAt),
		formatNullableTime(appointment.ConfirmationSentAt),
		formatTime(appointment.UpdatedAt),
		appointment.ID,
	)
	if err != nil {
		return application.Appointment{}, r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return application.Appointment{}, err
	}
	if affected == 0 {
		return application.Appointment{}, application.ErrNotFound
	}
	return appointment, nil
}

// ListAppointments returns the appointments matching the filter, ordered by
// start time.
func (r *AppointmentRepository) ListAppointments(ctx context.Context, filter application.AppointmentFilter) ([]application.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1 = 1`
	args := make([]any, 0, 3)

	if filter.ProfessionalID != "" {
		query += " AND professional_id = ?"
		args = append(args, filter.ProfessionalID)
	}
	if filter.StartsBefore != nil {
		query += " AND start_time < ?"
		args = append(args, formatTime(*filter.StartsBefore))
	}
	if filter.EndsAfter != nil {
		query += " AND end_time > ?"
		args = append(args, formatTime(*filter.EndsAfter))
	}
	query += " ORDER BY start_time"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

// ListAppointmentsForParty returns the appointments the party is attached to
// with any response other than declined. Declined invitations no longer commit
// the party's time.
func (r *AppointmentRepository) ListAppointmentsForParty(ctx context.Context, party application.Party) ([]application.Appointment, error) {
	query := `
		SELECT ` + prefixColumns("a", appointmentColumns) + `
		FROM appointments a
		JOIN participants p ON p.appointment_id = a.id
		WHERE p.party_kind = ? AND p.party_id = ? AND p.response != ?
		ORDER BY a.start_time
	`
	rows, err := r.helper.Query(ctx, query, string(party.Kind), party.ID, string(application.ResponseDeclined))
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (application.Appointment, error) {
	var (
		appointment        application.Appointment
		status             string
		start, end         string
		createdAt          string
		updatedAt          string
		actID              sql.NullString
		reminderSentAt     sql.NullString
		confirmationSentAt sql.NullString
	)

	err := row.Scan(
		&appointment.ID,
		&appointment.ProfessionalID,
		&appointment.ClientID,
		&appointment.Title,
		&appointment.Description,
		&appointment.Kind,
		&start,
		&end,
		&status,
		&appointment.PublicNotes,
		&appointment.PrivateNotes,
		&actID,
		&reminderSentAt,
		&confirmationSentAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return application.Appointment{}, err
	}

	appointment.Status = booking.Status(status)
	appointment.ActID = stringPointer(actID)

	if appointment.Start, err = parseTime(start); err != nil {
		return application.Appointment{}, err
	}
	if appointment.End, err = parseTime(end); err != nil {
		return application.Appointment{}, err
	}
	if appointment.CreatedAt, err = parseTime(createdAt); err != nil {
		return application.Appointment{}, err
	}
	if appointment.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return application.Appointment{}, err
	}
	if appointment.ReminderSentAt, err = parseNullableTime(reminderSentAt); err != nil {
		return application.Appointment{}, err
	}
	if appointment.ConfirmationSentAt, err = parseNullableTime(confirmationSentAt); err != nil {
		return application.Appointment{}, err
	}
	return appointment, nil
}

func collectAppointments(rows *sql.Rows) ([]application.Appointment, error) {
	var appointments []application.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}
	return appointments, rows.Err()
}

// prefixColumns qualifies each column in a comma separated list with a table
// alias for use in joins.
func prefixColumns(alias, columns string) string {
	out := ""
	for i, column := range splitColumns(columns) {
		if i > 0 {
			out += ", "
		}
		out += alias + "." + column
	}
	return out
}

func splitColumns(columns string) []string {
	var out []string
	field := ""
	for _, r := range columns {
		switch r {
		case ',':
			out = append(out, field)
			field = ""
		case ' ', '\n', '\t':
			// drop whitespace
		default:
			field += string(r)
		}
	}
	if field != "" {
		out = append(out, field)
	}
	return out
}
