// Package feedback stores user feedback submitted from the study pages in a
// SQLite table, one row per submission.
package feedback

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidPayload is returned when a submission is not a JSON object.
var ErrInvalidPayload = errors.New("feedback must be a JSON object")

// MaxPayloadBytes bounds a single submission.
const MaxPayloadBytes = 32 * 1024

const schema = `
CREATE TABLE IF NOT EXISTS feedback_entries (
    id         TEXT PRIMARY KEY,
    created_at INTEGER NOT NULL,
    payload    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_feedback_entries_created ON feedback_entries(created_at);
`

// Entry is one stored submission. It serialises as the submitted object with
// id and timestamp added.
type Entry struct {
	ID        string
	Timestamp time.Time
	Body      map[string]json.RawMessage
}

// MarshalJSON flattens the entry into a single object. The stored id and
// timestamp take precedence over same-named body fields.
func (e Entry) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Body)+2)
	for k, v := range e.Body {
		out[k] = v
	}
	out["id"] = e.ID
	out["timestamp"] = e.Timestamp.UTC().Format(time.RFC3339Nano)
	return json.Marshal(out)
}

// Store appends and lists feedback entries.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a Store and applies the schema.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("feedback: DB is required")
	}
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("feedback schema: %w", err)
		}
	}
	return &Store{db: db, now: time.Now}, nil
}

// Append validates and stores one submission.
func (s *Store) Append(ctx context.Context, payload []byte) (*Entry, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) > MaxPayloadBytes {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrInvalidPayload, MaxPayloadBytes)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(payload, &body); err != nil || body == nil {
		return nil, ErrInvalidPayload
	}

	entry := &Entry{
		ID:        uuid.NewString(),
		Timestamp: s.now().UTC(),
		Body:      body,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback_entries (id, created_at, payload) VALUES (?, ?, ?)`,
		entry.ID, entry.Timestamp.UnixNano(), string(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}
	return entry, nil
}

// List returns stored entries oldest first. A limit of zero or less returns
// everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, created_at, payload FROM feedback_entries ORDER BY created_at, rowid`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			created int64
			payload string
		)
		if err := rows.Scan(&e.ID, &created, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &e.Body); err != nil {
			return nil, fmt.Errorf("corrupt feedback entry %s: %w", e.ID, err)
		}
		e.Timestamp = time.Unix(0, created).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return n, nil
}
