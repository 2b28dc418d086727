package postgres

import (
	"database/sql"
	"fmt"
)

// migrations are applied in order on startup; every statement is
// idempotent so re-running is safe.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		event_date TIMESTAMPTZ NOT NULL,
		total_cost NUMERIC(18,2) NOT NULL,
		consumers_count INTEGER NOT NULL,
		notes TEXT,
		status TEXT NOT NULL DEFAULT 'open',
		per_person_amount NUMERIC(18,2),
		surplus_or_deficit NUMERIC(18,2)
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id BIGSERIAL PRIMARY KEY,
		event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		amount NUMERIC(18,2) NOT NULL,
		method TEXT NOT NULL,
		notes TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_event_id ON payments(event_id)`,
	`CREATE TABLE IF NOT EXISTS fund_transactions (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		amount NUMERIC(18,2) NOT NULL,
		event_id BIGINT REFERENCES events(id),
		notes TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		actor TEXT,
		role TEXT,
		action TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		resource_id TEXT,
		ip TEXT,
		user_agent TEXT,
		metadata JSONB
	)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
