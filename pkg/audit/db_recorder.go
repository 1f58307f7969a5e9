package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DBRecorder persists audit events to PostgreSQL
type DBRecorder struct {
	db *sql.DB
}

// NewDBRecorder creates a database-backed recorder and ensures the
// audit_events table exists
func NewDBRecorder(db *sql.DB) (*DBRecorder, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	r := &DBRecorder{db: db}
	if err := r.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure audit_events table: %w", err)
	}
	return r, nil
}

func (r *DBRecorder) ensureTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS audit_events (
		id BIGSERIAL PRIMARY KEY,
		timestamp TIMESTAMP WITH TIME ZONE NOT NULL,
		event_type VARCHAR(50) NOT NULL,
		user_id VARCHAR(255),
		method VARCHAR(20),
		request_id VARCHAR(100),
		ip_address VARCHAR(45),
		project_id VARCHAR(255),
		action VARCHAR(20),
		outcome VARCHAR(20) NOT NULL,
		reason VARCHAR(50),
		granted_by VARCHAR(20),
		message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_audit_events_timestamp ON audit_events(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_audit_events_user_id ON audit_events(user_id);
	CREATE INDEX IF NOT EXISTS idx_audit_events_project_id ON audit_events(project_id);
	CREATE INDEX IF NOT EXISTS idx_audit_events_outcome ON audit_events(outcome);
	`

	_, err := r.db.Exec(query)
	return err
}

// Record stores one event and fills in its assigned id
func (r *DBRecorder) Record(ctx context.Context, event *Event) error {
	const query = `
		INSERT INTO audit_events (
			timestamp, event_type,
			user_id, method, request_id, ip_address,
			project_id, action, outcome, reason, granted_by,
			message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		event.Timestamp, event.EventType,
		event.UserID, event.Method, event.RequestID, event.IPAddress,
		event.ProjectID, event.Action, event.Outcome, event.Reason, event.GrantedBy,
		event.Message,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// List returns events matching the filter, newest first
func (r *DBRecorder) List(ctx context.Context, filter Filter) ([]Event, error) {
	var conditions []string
	var args []interface{}

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.UserID != "" {
		addCondition("user_id = $%d", filter.UserID)
	}
	if filter.ProjectID != "" {
		addCondition("project_id = $%d", filter.ProjectID)
	}
	if filter.Outcome != "" {
		addCondition("outcome = $%d", filter.Outcome)
	}
	if filter.Since != nil {
		addCondition("timestamp >= $%d", *filter.Since)
	}
	if filter.Until != nil {
		addCondition("timestamp < $%d", *filter.Until)
	}

	query := `
		SELECT id, timestamp, event_type,
			user_id, method, request_id, ip_address,
			project_id, action, outcome, reason, granted_by,
			message
		FROM audit_events
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timestamp DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.EventType,
			&e.UserID, &e.Method, &e.RequestID, &e.IPAddress,
			&e.ProjectID, &e.Action, &e.Outcome, &e.Reason, &e.GrantedBy,
			&e.Message,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteEventsBefore purges events older than the cutoff and returns the
// number removed. The retention sweeper calls this on a schedule.
func (r *DBRecorder) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM audit_events WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit events: %w", err)
	}
	return result.RowsAffected()
}

// Close is a no-op; the recorder does not own the database handle
func (r *DBRecorder) Close() error {
	return nil
}
