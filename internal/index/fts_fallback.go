//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; name search uses LIKE on the students table.
	return nil
}

func ftsInsert(_ *sql.Tx, _, _, _ string) error { return nil }

func ftsDeleteSource(_ *sql.Tx, _ string) error { return nil }

// Search performs a LIKE-based search over username, full name, and cohort code
// (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT username, full_name, cohort_code
		FROM students
		WHERE username LIKE ? OR full_name LIKE ? OR cohort_code LIKE ?
		ORDER BY source, position
		LIMIT ?
	`, like, like, like, limit)
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
