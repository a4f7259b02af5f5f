// Package baseline provides the SQLite-backed content-hash side index used
// to confirm drift. Without a recorded baseline the detector can only report
// suspected drift, since mtime alone is unreliable.
package baseline

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS baselines (
	path         TEXT PRIMARY KEY,
	checksum     TEXT NOT NULL,
	annotated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store wraps a sql.DB with baseline-specific operations.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the baseline database and applies the schema.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("baseline: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("baseline: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("baseline: apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Get returns the recorded checksum for path. The second return is false
// when no baseline exists.
func (s *Store) Get(path string) (string, bool, error) {
	var cs string
	err := s.conn.QueryRow(`SELECT checksum FROM baselines WHERE path = ?`, path).Scan(&cs)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("baseline: get %s: %w", path, err)
	}
	return cs, true, nil
}

// Put records (or replaces) the baseline checksum for path.
func (s *Store) Put(path, checksum string, annotatedAt time.Time) error {
	_, err := s.conn.Exec(`
		INSERT INTO baselines (path, checksum, annotated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum     = excluded.checksum,
			annotated_at = excluded.annotated_at
	`, path, checksum, annotatedAt)
	if err != nil {
		return fmt.Errorf("baseline: put %s: %w", path, err)
	}
	return nil
}

// All returns every recorded baseline keyed by path.
func (s *Store) All() (map[string]string, error) {
	rows, err := s.conn.Query(`SELECT path, checksum FROM baselines`)
	if err != nil {
		return nil, fmt.Errorf("baseline: all: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Delete removes the baseline for path.
func (s *Store) Delete(path string) error {
	if _, err := s.conn.Exec(`DELETE FROM baselines WHERE path = ?`, path); err != nil {
		return fmt.Errorf("baseline: delete %s: %w", path, err)
	}
	return nil
}

// Prune drops baselines for paths no longer present on disk.
func (s *Store) Prune(live map[string]struct{}) error {
	all, err := s.All()
	if err != nil {
		return err
	}
	for p := range all {
		if _, ok := live[p]; !ok {
			if err := s.Delete(p); err != nil {
				return err
			}
		}
	}
	return nil
}
