// Package watch re-runs documentation generation when source files under
// the watched roots change.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"github.com/dusk-indust/autodocs/internal/scan"
)

// Watcher watches directory trees and reports batches of changed source
// files once no further change has arrived for the debounce interval.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	debounce   time.Duration
	exclude    *scan.Matcher
	onChange   func(context.Context, []string)
	logger     *slog.Logger
	callbackMu sync.Mutex

	roots     []string
	pending   map[string]time.Time
	pendingMu sync.Mutex
	timer     *time.Timer
}

// New creates a Watcher. onChange receives the sorted changed paths; calls
// never overlap.
func New(debounce time.Duration, exclude []glob.Glob, logger *slog.Logger, onChange func(context.Context, []string)) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("watch: onChange is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsw,
		debounce:  debounce,
		exclude:   scan.NewMatcher(exclude),
		onChange:  onChange,
		logger:    logger,
		pending:   make(map[string]time.Time),
	}, nil
}

// Watch registers every non-excluded directory under roots and processes
// events until ctx is done. It closes the Watcher before returning.
func (w *Watcher) Watch(ctx context.Context, roots []string) error {
	defer w.Close()

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			abs = filepath.Dir(abs)
		}
		w.roots = append(w.roots, abs)
		if err := w.watchRecursive(abs); err != nil {
			return err
		}
	}

	w.run(ctx)
	return nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.excluded(path) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if event.Op.Has(fsnotify.Create) {
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() {
					if !w.excluded(event.Name) {
						if err := w.watchRecursive(event.Name); err != nil {
							w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
						} else {
							w.enqueueExistingFiles(ctx, event.Name)
						}
					}
					continue
				}
			}

			if !w.relevant(event.Name) {
				continue
			}

			if event.Op.Has(fsnotify.Write) ||
				event.Op.Has(fsnotify.Create) ||
				event.Op.Has(fsnotify.Remove) ||
				event.Op.Has(fsnotify.Rename) {
				w.scheduleChange(ctx, event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleChange(ctx context.Context, path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = time.Now()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.flushChanges(ctx)
	})
}

func (w *Watcher) flushChanges(ctx context.Context) {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]time.Time)
	w.pendingMu.Unlock()

	if len(paths) == 0 || ctx.Err() != nil {
		return
	}
	sort.Strings(paths)

	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(ctx, paths)
}

// relevant reports whether a file event should trigger a run.
func (w *Watcher) relevant(path string) bool {
	return scan.Supported(path) && !w.excluded(path)
}

// excluded matches path relative to the watched root containing it.
func (w *Watcher) excluded(path string) bool {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return w.exclude.Excluded(rel)
	}
	return false
}

func (w *Watcher) enqueueExistingFiles(ctx context.Context, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if w.relevant(path) {
			w.scheduleChange(ctx, path)
		}
		return nil
	})
}

// Close stops the pending timer and releases the file-system watcher.
func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}
