package security

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// execer is the subset of *pgxpool.Pool the repository needs
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const securityEventsSchema = `
	CREATE TABLE IF NOT EXISTS contact_security_events (
		id            BIGSERIAL PRIMARY KEY,
		event_type    TEXT NOT NULL,
		service       TEXT NOT NULL,
		environment   TEXT NOT NULL,
		level         TEXT NOT NULL,
		subject_type  TEXT,
		subject_value TEXT,
		request_id    TEXT,
		details       JSONB,
		created_at    TIMESTAMPTZ NOT NULL
	)
`

// SecurityEventRepository handles persistence of security events to database.
// Only masked subjects are stored; submission bodies never reach this table.
type SecurityEventRepository struct {
	db execer
}

// NewSecurityEventRepository creates a new repository for security events
func NewSecurityEventRepository(db execer) *SecurityEventRepository {
	return &SecurityEventRepository{db: db}
}

// EnsureSchema creates the events table when it does not exist yet
func (r *SecurityEventRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, securityEventsSchema); err != nil {
		return fmt.Errorf("failed to create security events table: %w", err)
	}
	return nil
}

// PersistEvent inserts a security event into the database
func (r *SecurityEventRepository) PersistEvent(ctx context.Context, event SecurityEvent) error {
	query := `
		INSERT INTO contact_security_events (
			event_type, service, environment, level,
			subject_type, subject_value, request_id, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var detailsJSON []byte
	if len(event.Details) > 0 {
		detailsJSON, _ = json.Marshal(event.Details)
	} else {
		detailsJSON = []byte("null") // Valid JSON null for empty details
	}

	_, err := r.db.Exec(ctx, query,
		string(event.Event),
		event.Service,
		event.Environment,
		event.Level,
		event.SubjectType,
		event.SubjectValue,
		event.RequestID,
		detailsJSON,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to persist security event: %w", err)
	}

	return nil
}

// CreatePersistFunc creates a persist function for the SecurityLogger
func (r *SecurityEventRepository) CreatePersistFunc() func(context.Context, SecurityEvent) error {
	return r.PersistEvent
}
