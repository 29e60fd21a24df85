// Package index provides the SQLite-backed roster index with optional FTS5
// name search.
package index

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS sources (
	path       TEXT PRIMARY KEY,
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS students (
	username    TEXT PRIMARY KEY,
	source      TEXT NOT NULL REFERENCES sources(path) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	full_name   TEXT NOT NULL DEFAULT '',
	cohort_code TEXT NOT NULL DEFAULT '',
	data        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_students_source ON students(source, position);
CREATE INDEX IF NOT EXISTS idx_students_cohort ON students(cohort_code);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
