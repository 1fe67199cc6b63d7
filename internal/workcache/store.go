package workcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// record is one stored unit of work.
type record struct {
	Key       string
	InputsSig string
	Outputs   []Entry
	Result    string
	BuildID   string
	UpdatedAt time.Time
}

// store persists records in SQLite.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// openStore opens (creating if needed) the database at dbPath. Use ":memory:" for
// an in-memory database.
func openStore(dbPath string) (*store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	s := &store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS work (
		key TEXT PRIMARY KEY,
		inputs TEXT NOT NULL,
		outputs TEXT NOT NULL,
		result TEXT NOT NULL,
		build_id TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *store) get(ctx context.Context, key string) (*record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		r           record
		outputsJSON string
		updated     int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT key, inputs, outputs, result, build_id, updated_at FROM work WHERE key = ?", key,
	).Scan(&r.Key, &r.InputsSig, &outputsJSON, &r.Result, &r.BuildID, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query work: %w", err)
	}
	if err := json.Unmarshal([]byte(outputsJSON), &r.Outputs); err != nil {
		return nil, fmt.Errorf("unmarshal outputs: %w", err)
	}
	r.UpdatedAt = time.Unix(0, updated)
	return &r, nil
}

func (s *store) put(ctx context.Context, r *record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	outputsJSON, err := json.Marshal(r.Outputs)
	if err != nil {
		return fmt.Errorf("marshal outputs: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO work (key, inputs, outputs, result, build_id, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET inputs = excluded.inputs, outputs = excluded.outputs,
			result = excluded.result, build_id = excluded.build_id, updated_at = excluded.updated_at`,
		r.Key, r.InputsSig, string(outputsJSON), r.Result, r.BuildID, r.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("upsert work: %w", err)
	}
	return nil
}

func (s *store) delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, "DELETE FROM work WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete work: %w", err)
	}
	return nil
}

func (s *store) close() error { return s.db.Close() }
