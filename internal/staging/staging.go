// Package staging provides a SQLite-backed queue of blog edits awaiting
// remote sync. Entries survive restarts and are removed only after the
// remote store confirms the write.
package staging

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/ansuz/internal/checksum"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS staged_edits (
	path      TEXT PRIMARY KEY,
	op        TEXT NOT NULL,
	content   BLOB NOT NULL DEFAULT '',
	checksum  TEXT NOT NULL DEFAULT '',
	staged_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Op describes the kind of staged change.
type Op string

const (
	OpPut    Op = "put"
	OpDelete Op = "delete"
)

// Edit is one pending change to a remote file.
type Edit struct {
	Path     string
	Op       Op
	Content  []byte
	Checksum string
	StagedAt time.Time
}

// Store defines the staged-edit operations. Consumers should depend on
// this interface rather than the concrete *DB type to facilitate testing
// with mocks.
type Store interface {
	StagePut(path string, content []byte) error
	StageDelete(path string) error
	Get(path string) (*Edit, error)
	All() ([]Edit, error)
	Clear(path string) error
	Len() (int, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// DB wraps a sql.DB with staging-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("staging: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("staging: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("staging: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// StagePut records (or replaces) a pending write for path. Staging the
// same path again overwrites the previous pending content: only the
// latest version of a file needs to reach the remote.
func (db *DB) StagePut(path string, content []byte) error {
	_, err := db.conn.Exec(`
		INSERT INTO staged_edits (path, op, content, checksum, staged_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			op        = excluded.op,
			content   = excluded.content,
			checksum  = excluded.checksum,
			staged_at = excluded.staged_at
	`, path, string(OpPut), content, checksum.Sum(content), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("staging: stage put: %w", err)
	}
	return nil
}

// StageDelete records a pending deletion for path, replacing any pending
// write for the same path.
func (db *DB) StageDelete(path string) error {
	_, err := db.conn.Exec(`
		INSERT INTO staged_edits (path, op, content, checksum, staged_at)
		VALUES (?, ?, '', '', ?)
		ON CONFLICT(path) DO UPDATE SET
			op        = excluded.op,
			content   = excluded.content,
			checksum  = excluded.checksum,
			staged_at = excluded.staged_at
	`, path, string(OpDelete), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("staging: stage delete: %w", err)
	}
	return nil
}

// Get returns the pending edit for path, or nil when none is staged.
func (db *DB) Get(path string) (*Edit, error) {
	row := db.conn.QueryRow(`
		SELECT path, op, content, checksum, staged_at
		FROM staged_edits WHERE path = ?
	`, path)
	var e Edit
	var op string
	if err := row.Scan(&e.Path, &op, &e.Content, &e.Checksum, &e.StagedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("staging: get: %w", err)
	}
	e.Op = Op(op)
	return &e, nil
}

// All returns every pending edit in staging order (oldest first).
func (db *DB) All() ([]Edit, error) {
	rows, err := db.conn.Query(`
		SELECT path, op, content, checksum, staged_at
		FROM staged_edits ORDER BY staged_at, path
	`)
	if err != nil {
		return nil, fmt.Errorf("staging: all: %w", err)
	}
	defer rows.Close()
	var out []Edit
	for rows.Next() {
		var e Edit
		var op string
		if err := rows.Scan(&e.Path, &op, &e.Content, &e.Checksum, &e.StagedAt); err != nil {
			return nil, err
		}
		e.Op = Op(op)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Clear removes the pending edit for path. Call only after the remote
// write has been confirmed.
func (db *DB) Clear(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM staged_edits WHERE path = ?`, path); err != nil {
		return fmt.Errorf("staging: clear: %w", err)
	}
	return nil
}

// Len returns the number of pending edits.
func (db *DB) Len() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM staged_edits`).Scan(&n); err != nil {
		return 0, fmt.Errorf("staging: len: %w", err)
	}
	return n, nil
}
