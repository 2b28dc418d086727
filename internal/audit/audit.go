// Package audit records who did what to which resource.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Entry is one audit record. Metadata is free-form JSON.
type Entry struct {
	ID           string
	CreatedAt    time.Time
	Actor        string
	Role         string
	Action       string
	ResourceType string
	ResourceID   string
	IP           string
	UserAgent    string
	Metadata     json.RawMessage
}

// Logger persists audit entries. Implementations must not fail the
// request on logging errors; callers ignore the returned error beyond
// surfacing it in logs.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// PostgresLogger writes audit entries to the audit_log table.
type PostgresLogger struct {
	db *sql.DB
}

// NewPostgresLogger constructs a logger.
func NewPostgresLogger(db *sql.DB) *PostgresLogger {
	return &PostgresLogger{db: db}
}

// Log inserts one entry, assigning id and timestamp when unset.
func (l *PostgresLogger) Log(ctx context.Context, entry Entry) error {
	if l == nil || l.db == nil {
		return errors.New("audit: nil db")
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	metadata := entry.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage("{}")
	}
	_, err := l.db.ExecContext(ctx, `
INSERT INTO audit_log (id, created_at, actor, role, action, resource_type, resource_id, ip, user_agent, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID,
		entry.CreatedAt,
		entry.Actor,
		entry.Role,
		entry.Action,
		entry.ResourceType,
		entry.ResourceID,
		entry.IP,
		entry.UserAgent,
		[]byte(metadata),
	)
	if err != nil {
		slog.Warn("audit write failed", "action", entry.Action, "error", err)
	}
	return err
}
