// Package archive keeps labelled snapshots of a run in a SQLite database.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"ppsim/internal/state"
)

// ErrNotFound is returned when no snapshot matches a lookup.
var ErrNotFound = errors.New("snapshot not found")

// Entry describes a stored snapshot without its payload.
type Entry struct {
	ID      int64
	Label   string
	Tick    int
	Created time.Time
	Num     int
}

// Store is a snapshot archive backed by one SQLite table.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the archive at path. ":memory:" keeps it in memory.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "ppsim.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps an in-memory database alive and serialises writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL,
		tick INTEGER NOT NULL,
		num INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Save stores snap under label and returns its id.
func (s *Store) Save(ctx context.Context, label string, tick int, snap state.Snapshot) (int64, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("encode snapshot: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots(label, tick, num, created_at, payload) VALUES(?,?,?,?,?)`,
		label, tick, len(snap.Particles), time.Now().UnixNano(), data)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	return res.LastInsertId()
}

// Latest returns the most recent snapshot stored under label.
func (s *Store) Latest(ctx context.Context, label string) (state.Snapshot, Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, label, tick, num, created_at, payload FROM snapshots WHERE label = ? ORDER BY id DESC LIMIT 1`,
		label)
	return scanSnapshot(row)
}

// Get returns the snapshot with the given id.
func (s *Store) Get(ctx context.Context, id int64) (state.Snapshot, Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, label, tick, num, created_at, payload FROM snapshots WHERE id = ?`, id)
	return scanSnapshot(row)
}

func scanSnapshot(row *sql.Row) (state.Snapshot, Entry, error) {
	var (
		e       Entry
		created int64
		payload []byte
		snap    state.Snapshot
	)
	if err := row.Scan(&e.ID, &e.Label, &e.Tick, &e.Num, &created, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snap, e, ErrNotFound
		}
		return snap, e, fmt.Errorf("scan snapshot: %w", err)
	}
	e.Created = time.Unix(0, created)
	if err := json.Unmarshal(payload, &snap); err != nil {
		return snap, e, fmt.Errorf("decode snapshot %d: %w", e.ID, err)
	}
	return snap, e, nil
}

// List returns the entries stored under label, oldest first. An empty label
// lists every entry.
func (s *Store) List(ctx context.Context, label string) ([]Entry, error) {
	q := `SELECT id, label, tick, num, created_at FROM snapshots`
	var args []any
	if label != "" {
		q += ` WHERE label = ?`
		args = append(args, label)
	}
	rows, err := s.db.QueryContext(ctx, q+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("select snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			created int64
		)
		if err := rows.Scan(&e.ID, &e.Label, &e.Tick, &e.Num, &created); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		e.Created = time.Unix(0, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }
