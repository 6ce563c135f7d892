package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresStore persists audit events durably. The table is created on
// startup if missing; audit rows are append-only.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore ensures the schema exists and returns a store.
func NewPostgresStore(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
    id         BIGSERIAL PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL,
    action     TEXT NOT NULL,
    request_id TEXT NOT NULL DEFAULT '',
    flow_id    TEXT NOT NULL DEFAULT '',
    direction  TEXT NOT NULL DEFAULT '',
    country    TEXT NOT NULL DEFAULT '',
    asset      TEXT NOT NULL DEFAULT '',
    network    TEXT NOT NULL DEFAULT '',
    currency   TEXT NOT NULL DEFAULT '',
    amount     TEXT NOT NULL DEFAULT ''
)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("ensure audit schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Save inserts one event.
func (s *PostgresStore) Save(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO audit_events
    (created_at, action, request_id, flow_id, direction, country, asset, network, currency, amount)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		event.Timestamp, string(event.Action), event.RequestID, event.FlowID,
		event.Direction, event.Country, event.Asset, event.Network,
		event.Currency, event.Amount,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT created_at, action, request_id, flow_id, direction, country, asset, network, currency, amount
FROM audit_events
ORDER BY id DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var action string
		if err := rows.Scan(&e.Timestamp, &action, &e.RequestID, &e.FlowID,
			&e.Direction, &e.Country, &e.Asset, &e.Network, &e.Currency, &e.Amount); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		events = append(events, e)
	}
	return events, rows.Err()
}
