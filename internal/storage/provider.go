// Package storage defines the dataset directory abstraction.
package storage

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/starford/ontrack/internal/models"
)

// Extensions lists the file extensions recognised as dataset files.
var Extensions = []string{".json", ".yaml", ".yml"}

// IsDataset reports whether name has a dataset file extension.
func IsDataset(name string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(name)))
}

// CleanPath normalises a path relative to the data root. It rejects empty,
// absolute, and escaping paths, and paths with a hidden segment, which List
// never reports.
func CleanPath(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("storage: empty path")
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: path escapes data root: %s", rel)
	}
	for _, seg := range strings.Split(filepath.ToSlash(cleaned), "/") {
		if strings.HasPrefix(seg, ".") {
			return "", fmt.Errorf("storage: hidden path not allowed: %s", rel)
		}
	}
	return cleaned, nil
}

// Provider is the interface for dataset file operations.
type Provider interface {
	// List returns metadata for every dataset file under dir (relative to the data root).
	List(dir string) ([]models.DatasetMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the data root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the data root).
	Write(path string, content []byte) error
}
