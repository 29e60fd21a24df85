// Package testutil provides shared test helpers for setting up data
// directories, rosters, and databases.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ontrack/internal/index"
	"github.com/starford/ontrack/internal/models"
	"github.com/starford/ontrack/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "ontrack-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDataDir creates a temporary data directory with a storage.Provider.
func TestDataDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Student builds a student with every certification set unless certs
// supplies all four flags (resume, linkedin, github, mock interview).
func Student(username, cohortCode, startDate string, total int, certs ...bool) models.Student {
	c := models.Certifications{Resume: true, LinkedIn: true, GitHub: true, MockInterview: true}
	if len(certs) == 4 {
		c = models.Certifications{Resume: certs[0], LinkedIn: certs[1], GitHub: certs[2], MockInterview: certs[3]}
	}
	return models.Student{
		Username:       username,
		Names:          models.Names{PreferredName: username, Surname: "Test"},
		Certifications: c,
		Codewars:       models.Codewars{Current: models.CodewarsScore{Total: total}},
		Cohort:         models.Cohort{CohortCode: cohortCode, StartDate: startDate},
		Notes:          []models.Note{},
	}
}

// WriteDataset writes students as a JSON dataset file under dir.
func WriteDataset(t *testing.T, dir, name string, students ...models.Student) {
	t.Helper()
	data, err := json.Marshal(students)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}
