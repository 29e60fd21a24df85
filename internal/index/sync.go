package index

import (
	"log/slog"

	"github.com/starford/ontrack/internal/checksum"
	"github.com/starford/ontrack/internal/dataset"
	"github.com/starford/ontrack/internal/storage"
)

// Sync walks the data directory and brings the index up to date:
//   - new/changed files are decoded and their students replaced
//   - files removed from disk are deleted from the index
//
// A file that fails to decode is logged and left as previously indexed.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	indexed, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}
	changed, removed := checksum.Diff(disk, indexed)

	for _, p := range changed {
		data, err := store.Read(p)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		if n, err := IndexFile(db, p, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", p), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", p), slog.Int("students", n))
		}
	}

	for _, p := range removed {
		if err := db.DeleteSource(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("path", p))
		}
	}

	logger.Info("sync: done", slog.Int("files", len(metas)), slog.Int("indexed", len(changed)), slog.Int("removed", len(removed)))
	return nil
}

// IndexFile decodes data and replaces the students indexed from path.
// It returns the number of students indexed.
func IndexFile(db RosterIndex, path string, data []byte) (int, error) {
	students, err := dataset.Decode(path, data)
	if err != nil {
		return 0, err
	}
	if err := db.ReplaceSource(path, checksum.Sum(data), students); err != nil {
		return 0, err
	}
	return len(students), nil
}
