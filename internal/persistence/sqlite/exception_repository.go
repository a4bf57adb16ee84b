package sqlite

import (
	"context"

	"github.com/example/practice-scheduler/internal/application"
	"github.com/example/practice-scheduler/internal/availability"
)

const exceptionColumns = `id, professional_id, start_time, end_time, closed, reason`

// ExceptionRepository implements application.ExceptionRepository using SQLite.
type ExceptionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewExceptionRepository creates a new SQLite exception repository.
func NewExceptionRepository(pool *ConnectionPool) *ExceptionRepository {
	return &ExceptionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateException inserts a new availability override.
func (r *ExceptionRepository) CreateException(ctx context.Context, exception availability.Exception) (availability.Exception, error) {
	query := `
		INSERT INTO availability_exceptions (` + exceptionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		exception.ID,
		exception.ProfessionalID,
		formatTime(exception.Start),
		formatTime(exception.End),
		boolToInt(exception.Closed),
		exception.Reason,
	)
	if err != nil {
		return availability.Exception{}, r.mapper.MapError(err)
	}
	return exception, nil
}

// GetException retrieves an override by ID.
func (r *ExceptionRepository) GetException(ctx context.Context, id string) (availability.Exception, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+exceptionColumns+` FROM availability_exceptions WHERE id = ?`, id)
	exception, err := scanException(row)
	if err != nil {
		return availability.Exception{}, r.mapper.MapError(err)
	}
	return exception, nil
}

// DeleteException removes an override.
func (r *ExceptionRepository) DeleteException(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM availability_exceptions WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return application.ErrNotFound
	}
	return nil
}

// ListExceptionsForProfessional returns every override for a professional.
func (r *ExceptionRepository) ListExceptionsForProfessional(ctx context.Context, professionalID string) ([]availability.Exception, error) {
	query := `SELECT ` + exceptionColumns + ` FROM availability_exceptions WHERE professional_id = ? ORDER BY start_time`
	rows, err := r.helper.Query(ctx, query, professionalID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var exceptions []availability.Exception
	for rows.Next() {
		exception, err := scanException(rows)
		if err != nil {
			return nil, err
		}
		exceptions = append(exceptions, exception)
	}
	return exceptions, rows.Err()
}

func scanException(row rowScanner) (availability.Exception, error) {
	var (
		exception  availability.Exception
		start, end string
		closed     int
	)

	err := row.Scan(
		&exception.ID,
		&exception.ProfessionalID,
		&start,
		&end,
		&closed,
		&exception.Reason,
	)
	if err != nil {
		return availability.Exception{}, err
	}

	exception.Closed = closed != 0
	if exception.Start, err = parseTime(start); err != nil {
		return availability.Exception{}, err
	}
	if exception.End, err = parseTime(end); err != nil {
		return availability.Exception{}, err
	}
	return exception, nil
}
