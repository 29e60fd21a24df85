package roster

import (
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/starford/ontrack/internal/models"
)

// DefaultCommenter is recorded when a note is added without a commenter.
const DefaultCommenter = "User"

// Notebook is an in-memory overlay of per-student notes. The first access
// for a username seeds it from the notes carried by the dataset record;
// later dataset reloads do not replace the overlay. Nothing is persisted.
type Notebook struct {
	mu    sync.RWMutex
	notes map[string][]models.Note
}

// NewNotebook returns an empty notebook.
func NewNotebook() *Notebook {
	return &Notebook{notes: make(map[string][]models.Note)}
}

// Notes returns the notes of s, seeding the overlay on first access.
func (nb *Notebook) Notes(s models.Student) []models.Note {
	nb.mu.RLock()
	notes, ok := nb.notes[s.Username]
	nb.mu.RUnlock()
	if ok {
		return slices.Clone(notes)
	}

	nb.mu.Lock()
	defer nb.mu.Unlock()
	return slices.Clone(nb.seedLocked(s))
}

// Add appends a note for s and returns it.
func (nb *Notebook) Add(s models.Student, commenter, comment string) models.Note {
	commenter = strings.TrimSpace(commenter)
	if commenter == "" {
		commenter = DefaultCommenter
	}
	n := models.Note{ID: uuid.NewString(), Commenter: commenter, Comment: comment}

	nb.mu.Lock()
	defer nb.mu.Unlock()
	nb.notes[s.Username] = append(nb.seedLocked(s), n)
	return n
}

// Delete removes the note with id from s. It reports whether a note was removed.
func (nb *Notebook) Delete(s models.Student, id string) bool {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	notes := nb.seedLocked(s)
	i := slices.IndexFunc(notes, func(n models.Note) bool { return n.ID == id })
	if i < 0 {
		return false
	}
	nb.notes[s.Username] = slices.Delete(slices.Clone(notes), i, i+1)
	return true
}

func (nb *Notebook) seedLocked(s models.Student) []models.Note {
	if notes, ok := nb.notes[s.Username]; ok {
		return notes
	}
	notes := make([]models.Note, len(s.Notes))
	for i, n := range s.Notes {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if n.Commenter == "" {
			n.Commenter = DefaultCommenter
		}
		notes[i] = n
	}
	nb.notes[s.Username] = notes
	return notes
}
