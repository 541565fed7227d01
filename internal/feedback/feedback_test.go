package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(openTestDB(t))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNew_NilDB(t *testing.T) {
	_, err := New(nil)
	if err == nil || !strings.Contains(err.Error(), "DB is required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_Idempotent(t *testing.T) {
	db := openTestDB(t)
	if _, err := New(db); err != nil {
		t.Fatal(err)
	}
	if _, err := New(db); err != nil {
		t.Fatalf("second schema apply failed: %v", err)
	}
}

func TestAppendAndList(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	ctx := context.Background()
	first, err := s.Append(ctx, []byte(`{"rating":5,"comment":"Jay Swaminarayan","page":"/class/1/shlok/3"}`))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if first.ID == "" {
		t.Error("expected generated id")
	}
	if _, err := s.Append(ctx, []byte(`{"comment":"second"}`)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	entries, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != first.ID {
		t.Errorf("entries not in insertion order")
	}
	if !entries[0].Timestamp.Equal(base.Add(time.Second)) {
		t.Errorf("Timestamp = %v", entries[0].Timestamp)
	}
	if string(entries[0].Body["rating"]) != "5" {
		t.Errorf("rating = %s", entries[0].Body["rating"])
	}

	limited, err := s.List(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 entry with limit, got %d", len(limited))
	}

	n, err := s.Count(ctx)
	if err != nil || n != 2 {
		t.Errorf("Count() = %d, %v", n, err)
	}
}

func TestAppend_InvalidPayload(t *testing.T) {
	s := newTestStore(t)
	for _, payload := range []string{"", "not json", "[1,2]", "null", `"text"`} {
		if _, err := s.Append(context.Background(), []byte(payload)); !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("Append(%q) error = %v, want ErrInvalidPayload", payload, err)
		}
	}

	big := `{"comment":"` + strings.Repeat("x", MaxPayloadBytes) + `"}`
	if _, err := s.Append(context.Background(), []byte(big)); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("oversized payload error = %v", err)
	}
}

func TestEntry_MarshalJSON(t *testing.T) {
	e := Entry{
		ID:        "abc",
		Timestamp: time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC),
		Body: map[string]json.RawMessage{
			"comment":   json.RawMessage(`"great"`),
			"timestamp": json.RawMessage(`"spoofed"`),
		},
	}

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["id"] != "abc" || got["comment"] != "great" {
		t.Errorf("unexpected entry: %v", got)
	}
	if got["timestamp"] != "2026-05-06T07:08:09Z" {
		t.Errorf("timestamp = %v", got["timestamp"])
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "feedback.db")
	s, db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if _, err := s.Append(context.Background(), []byte(`{"comment":"persisted"}`)); err != nil {
		t.Fatal(err)
	}
	n, err := s.Count(context.Background())
	if err != nil || n != 1 {
		t.Errorf("Count() = %d, %v", n, err)
	}
}
