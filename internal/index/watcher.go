package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a root directory for file changes and keeps the index
// current: changed eligible files are re-indexed through UpdateFile,
// deleted files are dropped through RemoveFile. Events are debounced so an
// editor save burst triggers one update batch.
type Watcher struct {
	manager      *Manager
	root         string
	watcher      *fsnotify.Watcher
	debounceTime time.Duration
	logger       *slog.Logger
	stopCh       chan struct{}
	doneCh       chan struct{}
	stopOnce     sync.Once
}

// NewWatcher creates a watcher over root, recursively registering every
// non-ignored directory.
func NewWatcher(manager *Manager, root string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		manager:      manager,
		root:         root,
		watcher:      fsWatcher,
		debounceTime: 500 * time.Millisecond,
		logger:       manager.logger,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}

	if err := w.addDirectoriesRecursively(root); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// Start begins watching for file changes.
func (w *Watcher) Start(ctx context.Context) {
	go w.watch(ctx)
}

// Stop stops the watcher and waits for the event loop to drain.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		w.watcher.Close()
	})
}

// watch is the event loop with debouncing.
func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	var debounceTimer *time.Timer
	flushCh := make(chan struct{}, 1)
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			// New directories need to join the watch set.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirectoriesRecursively(event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
					}
					continue
				}
			}

			relPath, err := filepath.Rel(w.root, event.Name)
			if err != nil {
				continue
			}
			relPath = filepath.ToSlash(relPath)
			pending[relPath] = true

			if debounceTimer != nil {
				if !debounceTimer.Stop() {
					select {
					case <-debounceTimer.C:
					default:
					}
				}
			}
			debounceTimer = time.AfterFunc(w.debounceTime, func() {
				select {
				case flushCh <- struct{}{}:
				default:
				}
			})

		case <-flushCh:
			w.flush(pending)
			pending = make(map[string]bool)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// flush applies one debounced batch of changes to the index. A path that
// no longer exists is removed; an existing eligible path is re-indexed.
// Renames arrive as a remove of the old path and a create of the new one.
func (w *Watcher) flush(pending map[string]bool) {
	for relPath := range pending {
		absPath := filepath.Join(w.root, relPath)
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			result := w.manager.RemoveFile(w.root, relPath)
			if result.SymbolsRemoved > 0 {
				w.logger.Info("removed deleted file from index", "file", relPath, "symbols_removed", result.SymbolsRemoved)
			}
			continue
		}

		if !w.manager.IsEligible(w.root, relPath) {
			continue
		}

		result := w.manager.UpdateFile(w.root, relPath)
		if !result.Success {
			w.logger.Warn("failed to update file", "file", relPath, "message", result.Message)
			continue
		}
		if result.SymbolsAdded > 0 || result.SymbolsRemoved > 0 {
			w.logger.Info("updated file in index",
				"file", relPath,
				"symbols_added", result.SymbolsAdded,
				"symbols_removed", result.SymbolsRemoved)
		}
	}
}

// addDirectoriesRecursively registers every watchable directory under
// rootPath. Per-directory failures are logged and skipped.
func (w *Watcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			w.logger.Warn("error accessing path during watch setup", "path", path, "error", err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}

		relPath, relErr := filepath.Rel(w.root, path)
		if relErr == nil && relPath != "." && w.manager.shouldIgnore(filepath.ToSlash(relPath)) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "dir", path, "error", err)
		}
		return nil
	})
}
