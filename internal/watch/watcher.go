// Package watch re-runs a callback when any of a fixed set of input files
// changes on disk. Parent directories are watched rather than the files
// themselves so editors that save by rename are still seen.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Handler is called with the settled paths of one batch of changes.
type Handler func(ctx context.Context, paths []string)

// Stats tracks watcher activity.
type Stats struct {
	Events        int
	Triggers      int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
}

// Watcher watches a set of files and invokes a Handler after they settle.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	logger      *zap.Logger
	handler     Handler
	targets     map[string]struct{} // absolute file paths
	pending     map[string]time.Time
	debounceDur time.Duration
	tick        time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	closed      bool
	stats       Stats
}

// New creates a watcher for files. Empty paths are ignored.
func New(files []string, debounce time.Duration, handler Handler, logger *zap.Logger) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("watch: handler is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	targets := make(map[string]struct{}, len(files))
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("watch: failed to resolve %s: %w", f, err)
		}
		targets[abs] = struct{}{}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("watch: no files to watch")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	tick := debounce / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}

	return &Watcher{
		watcher:     fw,
		logger:      logger,
		handler:     handler,
		targets:     targets,
		pending:     make(map[string]time.Time),
		debounceDur: debounce,
		tick:        tick,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. It is non-blocking; events are handled on a
// goroutine until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return fmt.Errorf("watch: watcher is stopped")
	}
	if w.running {
		w.mu.Unlock()
		return nil
	}

	for _, dir := range w.dirs() {
		if err := w.watcher.Add(dir); err != nil {
			w.mu.Unlock()
			return fmt.Errorf("watch: failed to watch %s: %w", dir, err)
		}
		w.logger.Debug("Watching directory", zap.String("dir", dir))
	}
	w.running = true
	w.mu.Unlock()

	go w.run(ctx)
	return nil
}

// Stop stops the watcher, waits for the event loop to exit and releases the
// underlying fsnotify watcher. A stopped watcher cannot be restarted.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("Failed to close watcher", zap.Error(err))
	}
	w.logger.Debug("Watcher stopped")
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// Files returns the watched files, sorted.
func (w *Watcher) Files() []string {
	files := make([]string, 0, len(w.targets))
	for f := range w.targets {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

func (w *Watcher) dirs() []string {
	seen := make(map[string]struct{})
	var dirs []string
	for _, f := range w.Files() {
		dir := filepath.Dir(f)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	return dirs
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	path, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	if _, ok := w.targets[path]; !ok {
		return
	}

	w.logger.Debug("File event", zap.String("path", path), zap.String("op", event.Op.String()))

	now := time.Now()
	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEventTime = now
	w.stats.LastEventPath = path
	w.pending[path] = now
	w.mu.Unlock()
}

// flush hands every path quiet for the debounce window to the handler in
// one batch.
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	if len(settled) > 0 {
		w.stats.Triggers++
	}
	w.mu.Unlock()

	if len(settled) == 0 {
		return
	}
	sort.Strings(settled)
	w.handler(ctx, settled)
}
