package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/practice-scheduler/internal/application"
)

const participantColumns = `id, appointment_id, party_kind, party_id, role,
	response, responded_at, note, created_at, updated_at`

// ParticipantRepository implements application.ParticipantRepository using
// SQLite.
type ParticipantRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewParticipantRepository creates a new SQLite participant repository.
func NewParticipantRepository(pool *ConnectionPool) *ParticipantRepository {
	return &ParticipantRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateParticipant inserts a new participant row. The unique constraint on
// (appointment_id, party_kind, party_id) keeps a party from being attached
// twice.
func (r *ParticipantRepository) CreateParticipant(ctx context.Context, participant application.Participant) (application.Participant, error) {
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		return insertParticipantTx(r.helper, tx, participant)
	})
	if err != nil {
		return application.Participant{}, r.mapper.MapError(err)
	}
	return participant, nil
}

func insertParticipantTx(helper *QueryHelper, tx *sql.Tx, participant application.Participant) error {
	query := `
		INSERT INTO participants (` + participantColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := helper.ExecTx(tx, query,
		participant.ID,
		participant.AppointmentID,
		string(participant.Party.Kind),
		participant.Party.ID,
		string(participant.Role),
		string(participant.Response),
		formatNullableTime(participant.RespondedAt),
		participant.Note,
		formatTime(participant.CreatedAt),
		formatTime(participant.UpdatedAt),
	)
	return err
}

// GetParticipant retrieves a participant by ID.
func (r *ParticipantRepository) GetParticipant(ctx context.Context, id string) (application.Participant, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+participantColumns+` FROM participants WHERE id = ?`, id)
	participant, err := scanParticipant(row)
	if err != nil {
		return application.Participant{}, r.mapper.MapError(err)
	}
	return participant, nil
}

// UpdateParticipant rewrites the participant's response state.
func (r *ParticipantRepository) UpdateParticipant(ctx context.Context, participant application.Participant) (application.Participant, error) {
	query := `
		UPDATE participants
		SET role = ?, response = ?, responded_at = ?, note = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.helper.Exec(ctx, query,
		string(participant.Role),
		string(participant.Response),
		formatNullableTime(participant.RespondedAt),
		participant.Note,
		formatTime(participant.UpdatedAt),
		participant.ID,
	)
	if err != nil {
		return application.Participant{}, r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return application.Participant{}, err
	}
	if affected == 0 {
		return application.Participant{}, application.ErrNotFound
	}
	return participant, nil
}

// ListParticipants returns every participant attached to an appointment in
// insertion order.
func (r *ParticipantRepository) ListParticipants(ctx context.Context, appointmentID string) ([]application.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE appointment_id = ? ORDER BY created_at, id`
	rows, err := r.helper.Query(ctx, query, appointmentID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var participants []application.Participant
	for rows.Next() {
		participant, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}
	return participants, rows.Err()
}

func scanParticipant(row rowScanner) (application.Participant, error) {
	var (
		participant application.Participant
		partyKind   string
		role        string
		response    string
		respondedAt sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := row.Scan(
		&participant.ID,
		&participant.AppointmentID,
		&partyKind,
		&participant.Party.ID,
		&role,
		&response,
		&respondedAt,
		&participant.Note,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return application.Participant{}, err
	}

	participant.Party.Kind = application.PartyKind(partyKind)
	participant.Role = application.ParticipantRole(role)
	participant.Response = application.ParticipantResponse(response)

	if participant.RespondedAt, err = parseNullableTime(respondedAt); err != nil {
		return application.Participant{}, err
	}
	if participant.CreatedAt, err = parseTime(createdAt); err != nil {
		return application.Participant{}, err
	}
	if participant.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return application.Participant{}, err
	}
	return participant, nil
}
