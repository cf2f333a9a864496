// Package history persists an audit trail of poll outcomes and
// administrative actions in a local SQLite database, backing the
// console's "recent refreshes" panel.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // CGo-based SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS refresh_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	occurred_at INTEGER NOT NULL,
	trigger_kind TEXT NOT NULL,
	bus_count INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	error TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS admin_actions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	occurred_at INTEGER NOT NULL,
	action TEXT NOT NULL,
	request_id TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_refresh_events_occurred_at
	ON refresh_events(occurred_at DESC);
`

// RefreshEvent is one completed poll, successful or not.
type RefreshEvent struct {
	ID         int64     `json:"id"`
	OccurredAt time.Time `json:"occurredAt"`
	Trigger    string    `json:"trigger"`
	BusCount   int       `json:"busCount"`
	DurationMS int64     `json:"durationMs"`
	Error      string    `json:"error,omitempty"`
}

// AdminAction is one administrative operation passed through the console.
type AdminAction struct {
	ID         int64     `json:"id"`
	OccurredAt time.Time `json:"occurredAt"`
	Action     string    `json:"action"`
	RequestID  string    `json:"requestId,omitempty"`
}

// Store wraps the SQLite connection. Create with Open; use ":memory:" as
// the path in tests.
type Store struct {
	DB *sql.DB
}

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &Store{DB: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.DB.Close()
}

// RecordRefresh appends one poll outcome. Satisfies poller.Recorder.
func (s *Store) RecordRefresh(at time.Time, trigger string, count int, duration time.Duration, fetchErr error) error {
	errText := ""
	if fetchErr != nil {
		errText = fetchErr.Error()
	}
	_, err := s.DB.Exec(
		`INSERT INTO refresh_events (occurred_at, trigger_kind, bus_count, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?)`,
		at.UnixMilli(), trigger, count, duration.Milliseconds(), errText,
	)
	if err != nil {
		return fmt.Errorf("recording refresh event: %w", err)
	}
	return nil
}

// RecordAdminAction appends one administrative action.
func (s *Store) RecordAdminAction(ctx context.Context, at time.Time, action, requestID string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO admin_actions (occurred_at, action, request_id) VALUES (?, ?, ?)`,
		at.UnixMilli(), action, requestID,
	)
	if err != nil {
		return fmt.Errorf("recording admin action: %w", err)
	}
	return nil
}

// RecentRefreshes returns up to limit refresh events, newest first.
func (s *Store) RecentRefreshes(ctx context.Context, limit int) ([]RefreshEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, occurred_at, trigger_kind, bus_count, duration_ms, error
		 FROM refresh_events ORDER BY occurred_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying refresh events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []RefreshEvent
	for rows.Next() {
		var event RefreshEvent
		var occurredAt int64
		if err := rows.Scan(&event.ID, &occurredAt, &event.Trigger, &event.BusCount, &event.DurationMS, &event.Error); err != nil {
			return nil, fmt.Errorf("scanning refresh event: %w", err)
		}
		event.OccurredAt = time.UnixMilli(occurredAt).UTC()
		events = append(events, event)
	}
	return events, rows.Err()
}

// RecentAdminActions returns up to limit admin actions, newest first.
func (s *Store) RecentAdminActions(ctx context.Context, limit int) ([]AdminAction, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, occurred_at, action, request_id
		 FROM admin_actions ORDER BY occurred_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying admin actions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var actions []AdminAction
	for rows.Next() {
		var action AdminAction
		var occurredAt int64
		if err := rows.Scan(&action.ID, &occurredAt, &action.Action, &action.RequestID); err != nil {
			return nil, fmt.Errorf("scanning admin action: %w", err)
		}
		action.OccurredAt = time.UnixMilli(occurredAt).UTC()
		actions = append(actions, action)
	}
	return actions, rows.Err()
}
