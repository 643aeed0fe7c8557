package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the byte-level persistence interface for the
// schedule document. The core never depends on where the bytes live;
// this abstraction allows different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// Load returns the persisted schedule document bytes.
	// Returns ErrNoDocument when nothing has been saved yet.
	Load(ctx context.Context) ([]byte, error)

	// Save persists the schedule document bytes, replacing any
	// previous document.
	Save(ctx context.Context, data []byte) error
}

// documentKey is the row key the schedule document is stored under.
const documentKey = "schedule"

// SQLiteRepository implements Repository using SQLite, storing the
// serialized document as a single keyed row.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Load retrieves the schedule document bytes.
func (r *SQLiteRepository) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		"SELECT document FROM schedule_documents WHERE key = ?", documentKey,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("querying schedule document: %w", err)
	}
	return data, nil
}

// Save stores the schedule document bytes, replacing any previous document.
func (r *SQLiteRepository) Save(ctx context.Context, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO schedule_documents (key, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at`,
		documentKey,
		data,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving schedule document: %w", err)
	}
	return nil
}

// BrightnessEvent records a single applied brightness change for the
// audit log.
type BrightnessEvent struct {
	MonitorID string    `json:"monitor_id"`
	RuleID    string    `json:"rule_id"`
	RuleName  string    `json:"rule_name"`
	Previous  int       `json:"previous"`
	Target    int       `json:"target"`
	AppliedAt time.Time `json:"applied_at"`
}

// EventStore persists applied-change audit events.
type EventStore interface {
	// RecordEvent appends an applied brightness change to the audit log.
	RecordEvent(ctx context.Context, ev BrightnessEvent) error

	// ListEvents returns the most recent events, newest first.
	ListEvents(ctx context.Context, limit int) ([]BrightnessEvent, error)
}

// RecordEvent appends an applied brightness change to the audit log.
func (r *SQLiteRepository) RecordEvent(ctx context.Context, ev BrightnessEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO brightness_events (monitor_id, rule_id, rule_name, previous, target, applied_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ev.MonitorID,
		ev.RuleID,
		ev.RuleName,
		ev.Previous,
		ev.Target,
		ev.AppliedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording brightness event: %w", err)
	}
	return nil
}

// ListEvents returns the most recent audit events, newest first.
func (r *SQLiteRepository) ListEvents(ctx context.Context, limit int) ([]BrightnessEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT monitor_id, rule_id, rule_name, previous, target, applied_at
		FROM brightness_events
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying brightness events: %w", err)
	}
	defer rows.Close()

	var events []BrightnessEvent
	for rows.Next() {
		var ev BrightnessEvent
		var appliedAt string
		if err := rows.Scan(&ev.MonitorID, &ev.RuleID, &ev.RuleName, &ev.Previous, &ev.Target, &appliedAt); err != nil {
			return nil, fmt.Errorf("scanning brightness event: %w", err)
		}
		ev.AppliedAt, _ = time.Parse(time.RFC3339, appliedAt) //nolint:errcheck // Format is controlled
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating brightness events: %w", err)
	}
	return events, nil
}
