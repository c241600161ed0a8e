package kv

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/btree"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLite persists values in a single sqlite database, with an in-memory
// B-tree keeping key -> row-id lookups off the database on the hot path.
// Values round-trip through JSON text, so reads return the encoding/json
// value shapes.
type SQLite struct {
	mu   sync.RWMutex
	db   *sql.DB
	keys *btree.Map[string, string]
}

// OpenSQLite opens (or creates) a store at dbPath. ":memory:" yields a
// non-persistent database.
func OpenSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("kv: open sqlite store: %w", err)
	}

	// WAL keeps readers unblocked during flag writes.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("kv: enable wal mode: %w", err)
	}

	s := &SQLite{
		db:   db,
		keys: btree.NewMap[string, string](0),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.loadKeys(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLite) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS kv_entries (
			id    TEXT PRIMARY KEY,
			key   TEXT UNIQUE NOT NULL,
			value TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("kv: init schema: %w", err)
	}

	return nil
}

// loadKeys warms the B-tree from rows persisted by earlier runs.
func (s *SQLite) loadKeys() error {
	rows, err := s.db.Query("SELECT key, id FROM kv_entries")
	if err != nil {
		return fmt.Errorf("kv: load keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, id string
		if err := rows.Scan(&key, &id); err != nil {
			return fmt.Errorf("kv: load keys: %w", err)
		}
		s.keys.Set(key, id)
	}

	return rows.Err()
}

// Close releases the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Get(ctx context.Context, key Key) (any, bool, error) {
	if err := key.Validate(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.keys.Get(key.String())
	if !ok {
		return nil, false, nil
	}

	var text string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv_entries WHERE id = ?", id).Scan(&text)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv: get %q: %w", key, err)
	}

	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, false, fmt.Errorf("kv: decode %q: %w", key, err)
	}

	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key Key, value any) error {
	if err := key.Validate(); err != nil {
		return err
	}

	text, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: encode %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	encoded := key.String()
	if id, ok := s.keys.Get(encoded); ok {
		_, err := s.db.ExecContext(ctx,
			"UPDATE kv_entries SET value = ? WHERE id = ?", string(text), id)
		if err != nil {
			return fmt.Errorf("kv: set %q: %w", key, err)
		}

		return nil
	}

	id := uuid.Must(uuid.NewV7()).String()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO kv_entries (id, key, value) VALUES (?, ?, ?)",
		id, encoded, string(text))
	if err != nil {
		return fmt.Errorf("kv: set %q: %w", key, err)
	}

	s.keys.Set(encoded, id)
	return nil
}

func (s *SQLite) Delete(ctx context.Context, key Key) error {
	if err := key.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	encoded := key.String()
	id, ok := s.keys.Get(encoded)
	if !ok {
		return nil
	}

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM kv_entries WHERE id = ?", id); err != nil {
		return fmt.Errorf("kv: delete %q: %w", key, err)
	}

	s.keys.Delete(encoded)
	return nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_entries"); err != nil {
		return fmt.Errorf("kv: clear: %w", err)
	}

	s.keys = btree.NewMap[string, string](0)
	return nil
}

func (s *SQLite) Keys(ctx context.Context) ([]Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]Key, 0, s.keys.Len())
	s.keys.Scan(func(encoded string, _ string) bool {
		keys = append(keys, ParseKey(encoded))
		return true
	})

	return keys, nil
}

var _ Store = (*SQLite)(nil)
