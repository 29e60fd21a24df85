package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/ontrack/internal/storage"
)

// Event kinds passed to EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// reconcileDelay debounces the reconciliation pass after renames.
const reconcileDelay = 200 * time.Millisecond

// EventCallback is called after a watcher-driven index change.
// kind is one of EventCreated, EventUpdated, EventDeleted.
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the data root and processes file
// change events until ctx is cancelled. It calls cb (if non-nil) after
// each successful index mutation.
//
// New directories are added to the watch list as they appear. A rename
// schedules a reconciliation pass against the files on disk. Files that fail
// to decode keep their previously indexed students.
func Watch(ctx context.Context, db *DB, store storage.Provider, dataRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, dataRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", dataRoot))

	// reconcileTimer is used to debounce rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcileAfterRename(db, store, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories: add to watcher.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					// Index any dataset files already in the new directory.
					indexNewDir(db, store, dataRoot, absPath, logger, cb)
					continue
				}
			}

			if strings.HasPrefix(filepath.Base(absPath), ".") || !storage.IsDataset(absPath) {
				continue
			}

			rel, relErr := filepath.Rel(dataRoot, absPath)
			if relErr != nil {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(rel)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
					continue
				}
				n, idxErr := IndexFile(db, rel, data)
				if idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
					continue
				}
				kind := EventUpdated
				if ev.Op&fsnotify.Create != 0 {
					kind = EventCreated
				}
				logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind), slog.Int("students", n))
				if cb != nil {
					cb(kind, rel)
				}

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.DeleteSource(rel); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("path", rel))
				if cb != nil {
					cb(EventDeleted, rel)
				}

			case ev.Op&fsnotify.Rename != 0:
				// Rename fires on the old path only; the new path arrives
				// as a Create if it stays inside a watched directory.
				if delErr := db.DeleteSource(rel); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: rename old deleted", slog.String("path", rel))
					if cb != nil {
						cb(EventDeleted, rel)
					}
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcileAfterRename removes sources whose files are gone and indexes
// on-disk files whose checksum differs from the index.
func reconcileAfterRename(db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if delErr := db.DeleteSource(p); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("path", p))
				if cb != nil {
					cb(EventDeleted, p)
				}
			}
		}
	}

	for p, cs := range disk {
		if checksums[p] == cs {
			continue
		}
		data, readErr := store.Read(p)
		if readErr != nil {
			continue
		}
		if _, idxErr := IndexFile(db, p, data); idxErr == nil {
			logger.Debug("reconcile: indexed", slog.String("path", p))
			if cb != nil {
				cb(EventCreated, p)
			}
		}
	}
}

// indexNewDir indexes the dataset files found in a newly created directory.
func indexNewDir(db *DB, store storage.Provider, dataRoot, dirPath string, logger *slog.Logger, cb EventCallback) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || strings.HasPrefix(d.Name(), ".") || !storage.IsDataset(path) {
			return nil
		}
		rel, relErr := filepath.Rel(dataRoot, path)
		if relErr != nil {
			return nil
		}
		data, readErr := store.Read(rel)
		if readErr != nil {
			return nil
		}
		if _, idxErr := IndexFile(db, rel, data); idxErr == nil {
			logger.Debug("watcher: indexed from new dir", slog.String("path", rel))
			if cb != nil {
				cb(EventCreated, rel)
			}
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
