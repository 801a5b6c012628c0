// Package watch re-runs the batch pipeline when files under the input
// roots change. Events are debounced so bursts of writes trigger a
// single run.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/TeamDman/cm-sub000/pkg/cm/logging"
	"github.com/TeamDman/cm-sub000/pkg/cm/outpath"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before a
// batch is triggered.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches input roots recursively and invokes a callback after
// changes settle.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onBatch  func(ctx context.Context)

	mu     sync.Mutex
	paths  map[string]bool
	closed bool
}

// New creates a Watcher that calls onBatch after changes settle.
// A non-positive debounce uses DefaultDebounce.
func New(debounce time.Duration, onBatch func(ctx context.Context)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		watcher:  fsw,
		debounce: debounce,
		onBatch:  onBatch,
		paths:    make(map[string]bool),
	}, nil
}

// Watch starts watching a root recursively. Symlinks are skipped to
// avoid loops. A root that is a single file gets its parent watched.
func (w *Watcher) Watch(root string) error {
	info, err := os.Lstat(root)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return w.addWatch(filepath.Dir(root))
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Skip entries with errors
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if d.IsDir() {
			return w.addWatch(path)
		}
		return nil
	})
}

// addWatch adds a single directory to the watch list.
func (w *Watcher) addWatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.paths[path] {
		return nil
	}

	if err := w.watcher.Add(path); err != nil {
		logging.Get("watcher").Warn("failed to add watch", "path", path, "error", err)
		return err
	}

	w.paths[path] = true
	return nil
}

// Run consumes filesystem events until the context is cancelled. Newly
// created directories are added to the watch; events settle for the
// debounce window before onBatch fires. Events inside output trees are
// ignored so a batch run does not retrigger itself.
func (w *Watcher) Run(ctx context.Context) {
	logger := logging.Get("watcher")

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.isOutputPath(event.Name) {
				continue
			}

			logger.Debug("fs event", "op", event.Op.String(), "path", event.Name)

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
					_ = w.addWatch(event.Name)
				}
			}

			if timer == nil {
				timer = time.AfterFunc(w.debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error", "error", err)

		case <-fire:
			timer = nil
			logger.Info("changes settled, running batch")
			w.onBatch(ctx)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return w.watcher.Close()
}

// isOutputPath reports whether a path lies inside any "-output" tree.
func (w *Watcher) isOutputPath(path string) bool {
	sep := string(filepath.Separator)
	for _, part := range strings.Split(path, sep) {
		if strings.HasSuffix(part, outpath.OutputSuffix) {
			return true
		}
	}
	return false
}
