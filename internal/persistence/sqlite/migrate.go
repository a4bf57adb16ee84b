package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// migration pairs a schema version with the SQL statements that bring the
// database up to that version.
type migration struct {
	Version     string
	Description string
	SQL         string
}

// migrations lists every schema change in execution order. Versions are
// recorded in schema_migrations so a restart only applies what is pending.
var migrations = []migration{
	{
		Version:     "001",
		Description: "directory tables",
		SQL: `
			CREATE TABLE professionals (
				id TEXT PRIMARY KEY,
				display_name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				active INTEGER NOT NULL DEFAULT 1,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);

			CREATE TABLE clients (
				id TEXT PRIMARY KEY,
				display_name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);

			CREATE TABLE partners (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);
		`,
	},
	{
		Version:     "002",
		Description: "availability templates and exceptions",
		SQL: `
			CREATE TABLE availability_templates (
				id TEXT PRIMARY KEY,
				professional_id TEXT NOT NULL REFERENCES professionals(id),
				weekday INTEGER NOT NULL,
				start_minute INTEGER NOT NULL,
				end_minute INTEGER NOT NULL,
				slot_minutes INTEGER NOT NULL,
				valid_from TEXT NOT NULL,
				valid_until TEXT,
				active INTEGER NOT NULL DEFAULT 1,
				online_booking INTEGER NOT NULL DEFAULT 0
			);

			CREATE INDEX idx_templates_professional ON availability_templates(professional_id);

			CREATE TABLE availability_exceptions (
				id TEXT PRIMARY KEY,
				professional_id TEXT NOT NULL REFERENCES professionals(id),
				start_time TEXT NOT NULL,
				end_time TEXT NOT NULL,
				closed INTEGER NOT NULL DEFAULT 0,
				reason TEXT NOT NULL DEFAULT ''
			);

			CREATE INDEX idx_exceptions_professional ON availability_exceptions(professional_id);
		`,
	},
	{
		Version:     "003",
		Description: "appointments and participants",
		SQL: `
			CREATE TABLE appointments (
				id TEXT PRIMARY KEY,
				professional_id TEXT NOT NULL REFERENCES professionals(id),
				client_id TEXT NOT NULL REFERENCES clients(id),
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				kind TEXT NOT NULL DEFAULT '',
				start_time TEXT NOT NULL,
				end_time TEXT NOT NULL,
				status TEXT NOT NULL,
				public_notes TEXT NOT NULL DEFAULT '',
				private_notes TEXT NOT NULL DEFAULT '',
				act_id TEXT,
				reminder_sent_at TEXT,
				confirmation_sent_at TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);

			CREATE INDEX idx_appointments_professional_start ON appointments(professional_id, start_time);
			CREATE INDEX idx_appointments_status ON appointments(status);

			CREATE TABLE participants (
				id TEXT PRIMARY KEY,
				appointment_id TEXT NOT NULL REFERENCES appointments(id),
				party_kind TEXT NOT NULL,
				party_id TEXT NOT NULL,
				role TEXT NOT NULL,
				response TEXT NOT NULL,
				responded_at TEXT,
				note TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				UNIQUE (appointment_id, party_kind, party_id)
			);

			CREATE INDEX idx_participants_appointment ON participants(appointment_id);
			CREATE INDEX idx_participants_party ON participants(party_kind, party_id);
		`,
	},
}

// Migrate applies pending schema migrations in order, each inside its own
// transaction.
func (s *Storage) Migrate(ctx context.Context) error {
	if err := s.initializeVersionTable(ctx); err != nil {
		return err
	}

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		started := time.Now()
		err := s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, statement := range splitStatements(m.SQL) {
				if _, err := tx.Exec(statement); err != nil {
					return fmt.Errorf("sqlite: migration %s failed: %w", m.Version, err)
				}
			}
			_, err := tx.Exec(
				"INSERT INTO schema_migrations (version, description, applied_at, execution_ms) VALUES (?, ?, ?, ?)",
				m.Version, m.Description, formatTime(time.Now()), time.Since(started).Milliseconds(),
			)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) initializeVersionTable(ctx context.Context) error {
	_, err := s.pool.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TEXT NOT NULL,
			execution_ms INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("sqlite: failed to initialize schema_migrations: %w", err)
	}
	return nil
}

func (s *Storage) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := s.pool.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// splitStatements breaks a migration script into individual statements. The
// embedded scripts never contain semicolons inside literals, so a plain split
// is sufficient.
func splitStatements(script string) []string {
	parts := strings.Split(script, ";")
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			statements = append(statements, trimmed)
		}
	}
	return statements
}
