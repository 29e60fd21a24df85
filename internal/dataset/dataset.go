// Package dataset decodes and validates roster dataset files.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/ontrack/internal/apperr"
	"github.com/starford/ontrack/internal/models"
)

// Decode parses the contents of a dataset file and validates every record.
// The format is chosen by the extension of path: .json holds a JSON array,
// .yaml and .yml a YAML sequence. Both also accept a mapping with a single
// "students" key wrapping the list.
//
// The first invalid record aborts decoding; the returned error wraps
// apperr.ErrInvalidRecord and names the record position and username.
func Decode(path string, data []byte) ([]models.Student, error) {
	var (
		records []rawStudent
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		records, err = decodeJSON(data)
	case ".yaml", ".yml":
		records, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: unsupported dataset file %q", apperr.ErrInvalidInput, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrInvalidRecord, path, err)
	}

	out := make([]models.Student, 0, len(records))
	seen := make(map[string]int, len(records))
	for i, r := range records {
		n := i + 1
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%w: record %d (username %q): %v", apperr.ErrInvalidRecord, n, deref(r.Username), err)
		}
		if prev, dup := seen[*r.Username]; dup {
			return nil, fmt.Errorf("%w: record %d (username %q): username: duplicate of record %d",
				apperr.ErrInvalidRecord, n, *r.Username, prev)
		}
		seen[*r.Username] = n
		out = append(out, r.student())
	}
	return out, nil
}

type wrapped struct {
	Students []rawStudent `json:"students" yaml:"students"`
}

func decodeJSON(data []byte) ([]rawStudent, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '{' {
		var w wrapped
		if err := json.Unmarshal(trimmed, &w); err != nil {
			return nil, err
		}
		return w.Students, nil
	}
	var list []rawStudent
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func decodeYAML(data []byte) ([]rawStudent, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var list []rawStudent
		if err := root.Decode(&list); err != nil {
			return nil, err
		}
		return list, nil
	case yaml.MappingNode:
		var w wrapped
		if err := root.Decode(&w); err != nil {
			return nil, err
		}
		return w.Students, nil
	default:
		return nil, errors.New("expected a list of students")
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
