// Package roster coordinates the roster index, the note overlay, and the
// track classifier behind the API, CLI, and MCP surfaces.
package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/ontrack/internal/apperr"
	"github.com/starford/ontrack/internal/checksum"
	"github.com/starford/ontrack/internal/dataset"
	"github.com/starford/ontrack/internal/index"
	"github.com/starford/ontrack/internal/models"
	"github.com/starford/ontrack/internal/storage"
	"github.com/starford/ontrack/internal/track"
)

// StudentDetail is the full representation of one student.
type StudentDetail struct {
	models.Student
	FullName     string         `json:"fullName"`
	Season       string         `json:"season"`
	Status       track.Status   `json:"status"`
	Reasons      []track.Reason `json:"reasons"`
	ReasonLabels []string       `json:"reasonLabels"`
}

// CohortInfo describes a distinct cohort code.
type CohortInfo struct {
	CohortCode string `json:"cohortCode"`
	Season     string `json:"season"`
	Year       string `json:"year,omitempty"`
	Students   int    `json:"students"`
}

// Service coordinates storage, index, and note operations.
type Service struct {
	store      storage.Provider
	db         index.RosterIndex
	classifier track.Classifier
	notes      *Notebook
}

// NewService creates a new roster service.
func NewService(store storage.Provider, db index.RosterIndex, classifier track.Classifier) *Service {
	return &Service{
		store:      store,
		db:         db,
		classifier: classifier,
		notes:      NewNotebook(),
	}
}

// Classifier returns the classifier the service applies.
func (s *Service) Classifier() track.Classifier {
	return s.classifier
}

// Students aggregates every indexed student under f.
func (s *Service) Students(_ context.Context, f track.Filter) (*track.Summary, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	students, err := s.db.ListStudents()
	if err != nil {
		return nil, err
	}
	sum := s.classifier.Aggregate(students, f)
	for i := range sum.FilteredStudents {
		sum.FilteredStudents[i].Notes = s.notes.Notes(sum.FilteredStudents[i])
	}
	return &sum, nil
}

// Student returns one student with status, reasons, and notes.
func (s *Service) Student(_ context.Context, username string) (*StudentDetail, error) {
	st, err := s.db.GetStudent(username)
	if err != nil {
		return nil, err
	}
	st.Notes = s.notes.Notes(*st)

	reasons := s.classifier.OffTrackReasons(*st)
	labels := make([]string, len(reasons))
	for i, r := range reasons {
		labels[i] = r.Label()
	}
	return &StudentDetail{
		Student:      *st,
		FullName:     st.FullName(),
		Season:       track.ParseCohortCode(st.Cohort.CohortCode).SeasonLabel(),
		Status:       s.classifier.Status(*st),
		Reasons:      reasons,
		ReasonLabels: labels,
	}, nil
}

// Trend returns the cohort trend sorted by key.
func (s *Service) Trend(_ context.Context, key track.SortKey, ascending bool) ([]track.CohortAggregate, error) {
	students, err := s.db.ListStudents()
	if err != nil {
		return nil, err
	}
	return track.SortTrend(s.classifier.Summarize(students), key, ascending), nil
}

// Cohorts lists the distinct cohort codes with their decomposition.
func (s *Service) Cohorts(_ context.Context) ([]CohortInfo, error) {
	rows, err := s.db.Cohorts()
	if err != nil {
		return nil, err
	}
	out := make([]CohortInfo, len(rows))
	for i, r := range rows {
		code := track.ParseCohortCode(r.CohortCode)
		out[i] = CohortInfo{
			CohortCode: r.CohortCode,
			Season:     code.SeasonLabel(),
			Year:       code.Year,
			Students:   r.Students,
		}
	}
	return out, nil
}

// Search delegates name search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", apperr.ErrInvalidInput)
	}
	return s.db.Search(query, limit)
}

// AddNote appends a note to a student's in-memory notes.
func (s *Service) AddNote(_ context.Context, username, commenter, comment string) (*models.Note, error) {
	if strings.TrimSpace(comment) == "" {
		return nil, fmt.Errorf("%w: comment is required", apperr.ErrInvalidInput)
	}
	st, err := s.db.GetStudent(username)
	if err != nil {
		return nil, err
	}
	n := s.notes.Add(*st, commenter, comment)
	return &n, nil
}

// DeleteNote removes a note from a student's in-memory notes.
func (s *Service) DeleteNote(_ context.Context, username, id string) error {
	st, err := s.db.GetStudent(username)
	if err != nil {
		return err
	}
	if !s.notes.Delete(*st, id) {
		return fmt.Errorf("%w: note %q", apperr.ErrNotFound, id)
	}
	return nil
}

// Import validates data as a dataset file, indexes it under name, and writes
// it to the data directory. It returns the number of students imported.
// If the write fails, the index is restored to the file previously on disk,
// or cleared of name when there was none.
func (s *Service) Import(_ context.Context, name string, data []byte) (int, error) {
	name, err := storage.CleanPath(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	if !storage.IsDataset(name) {
		return 0, fmt.Errorf("%w: %q is not a .json, .yaml or .yml file", apperr.ErrInvalidInput, name)
	}
	students, err := dataset.Decode(name, data)
	if err != nil {
		return 0, err
	}
	prev, readErr := s.store.Read(name)
	if err := s.db.ReplaceSource(name, checksum.Sum(data), students); err != nil {
		return 0, err
	}
	if err := s.store.Write(name, data); err != nil {
		var undo error
		if readErr == nil {
			_, undo = index.IndexFile(s.db, name, prev)
		}
		if readErr != nil || undo != nil {
			undo = errors.Join(undo, s.db.DeleteSource(name))
		}
		if undo != nil {
			return 0, fmt.Errorf("roster: import %s: %w (index rollback: %v)", name, err, undo)
		}
		return 0, fmt.Errorf("roster: import %s: %w", name, err)
	}
	return len(students), nil
}

// Datasets lists the dataset files in the data directory.
func (s *Service) Datasets(_ context.Context) ([]models.DatasetMetadata, error) {
	items, err := s.store.List("")
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.DatasetMetadata{}
	}
	return items, nil
}
