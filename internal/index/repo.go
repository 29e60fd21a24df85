package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/ontrack/internal/apperr"
	"github.com/starford/ontrack/internal/models"
)

// CohortRow is a distinct cohort code with its student count.
type CohortRow struct {
	CohortCode string `json:"cohortCode"`
	Students   int    `json:"students"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	Username   string `json:"username"`
	FullName   string `json:"fullName"`
	CohortCode string `json:"cohortCode"`
}

// ReplaceSource replaces every student indexed from path with students,
// keeping their file order, within a transaction. A username already indexed
// from another source fails the whole replacement.
func (db *DB) ReplaceSource(path, checksum string, students []models.Student) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO sources (path, checksum, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, path, checksum, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("index: upsert source: %w", err)
	}

	if err := ftsDeleteSource(tx, path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM students WHERE source = ?`, path); err != nil {
		return fmt.Errorf("index: clear source: %w", err)
	}

	owner, err := tx.Prepare(`SELECT source FROM students WHERE username = ?`)
	if err != nil {
		return fmt.Errorf("index: prepare owner lookup: %w", err)
	}
	defer owner.Close()
	insert, err := tx.Prepare(`
		INSERT INTO students (username, source, position, full_name, cohort_code, data)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare student insert: %w", err)
	}
	defer insert.Close()

	for i, s := range students {
		var other string
		switch err := owner.QueryRow(s.Username).Scan(&other); {
		case err == nil:
			return fmt.Errorf("%w: username %q already indexed from %s", apperr.ErrInvalidRecord, s.Username, other)
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("index: owner lookup: %w", err)
		}

		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("index: encode student: %w", err)
		}
		if _, err := insert.Exec(s.Username, path, i, s.FullName(), s.Cohort.CohortCode, string(data)); err != nil {
			return fmt.Errorf("index: insert student: %w", err)
		}
		if err := ftsInsert(tx, s.Username, s.FullName(), s.Cohort.CohortCode); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteSource removes a dataset file and every student indexed from it.
func (db *DB) DeleteSource(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDeleteSource(tx, path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM students WHERE source = ?`, path); err != nil {
		return fmt.Errorf("index: delete students of %s: %w", path, err)
	}
	if _, err := tx.Exec(`DELETE FROM sources WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete source %s: %w", path, err)
	}

	return tx.Commit()
}

// AllChecksums returns the stored checksum of every indexed dataset file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM sources`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
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

// ListStudents returns every indexed student ordered by source file and
// position within it.
func (db *DB) ListStudents() ([]models.Student, error) {
	rows, err := db.conn.Query(`SELECT data FROM students ORDER BY source, position`)
	if err != nil {
		return nil, fmt.Errorf("index: list students: %w", err)
	}
	defer rows.Close()

	out := []models.Student{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var s models.Student
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			return nil, fmt.Errorf("index: decode student: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetStudent returns one student by username.
func (db *DB) GetStudent(username string) (*models.Student, error) {
	var data string
	err := db.conn.QueryRow(`SELECT data FROM students WHERE username = ?`, username).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: student %q", apperr.ErrNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get student: %w", err)
	}
	var s models.Student
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("index: decode student: %w", err)
	}
	return &s, nil
}

// Cohorts returns the distinct cohort codes with their student counts,
// ordered by code.
func (db *DB) Cohorts() ([]CohortRow, error) {
	rows, err := db.conn.Query(`
		SELECT cohort_code, count(*)
		FROM students
		GROUP BY cohort_code
		ORDER BY cohort_code
	`)
	if err != nil {
		return nil, fmt.Errorf("index: cohorts: %w", err)
	}
	defer rows.Close()

	out := []CohortRow{}
	for rows.Next() {
		var c CohortRow
		if err := rows.Scan(&c.CohortCode, &c.Students); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
