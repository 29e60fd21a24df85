//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS students_fts USING fts5(
			username,
			full_name,
			cohort_code,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(tx *sql.Tx, username, fullName, cohortCode string) error {
	_, err := tx.Exec(`INSERT INTO students_fts (username, full_name, cohort_code) VALUES (?, ?, ?)`,
		username, fullName, cohortCode)
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

func ftsDeleteSource(tx *sql.Tx, path string) error {
	_, err := tx.Exec(`
		DELETE FROM students_fts
		WHERE username IN (SELECT username FROM students WHERE source = ?)
	`, path)
	if err != nil {
		return fmt.Errorf("index: delete fts: %w", err)
	}
	return nil
}

// Search performs an FTS5 prefix search over username, full name, and cohort code.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT username, full_name, cohort_code
		FROM students_fts
		WHERE students_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, ftsQuery(query), limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Username, &r.FullName, &r.CohortCode); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ftsQuery quotes the input as a single prefix phrase so that punctuation in
// usernames is not parsed as FTS syntax.
func ftsQuery(q string) string {
	return `"` + strings.ReplaceAll(q, `"`, `""`) + `"*`
}
