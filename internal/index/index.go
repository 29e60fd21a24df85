package index

import "github.com/starford/ontrack/internal/models"

// RosterIndex defines the interface for roster indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type RosterIndex interface {
	ReplaceSource(path, checksum string, students []models.Student) error
	DeleteSource(path string) error
	AllChecksums() (map[string]string, error)
	ListStudents() ([]models.Student, error)
	GetStudent(username string) (*models.Student, error)
	Cohorts() ([]CohortRow, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies RosterIndex at compile time.
var _ RosterIndex = (*DB)(nil)
