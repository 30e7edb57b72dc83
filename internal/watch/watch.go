// Package watch feeds newly written settlement files to a handler.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rickgao/settlement-data/internal/files"
)

// ErrNoDir is returned by New when no directory is configured.
var ErrNoDir = errors.New("watch: no directory")

// Handler is called once per settled file.
type Handler func(ctx context.Context, path string)

// Config holds watcher configuration.
type Config struct {
	Dir      string
	Patterns []string      // Base-name globs; empty matches everything
	Debounce time.Duration // Quiet period after the last event (default: 2s)
}

// Stats tracks watcher activity.
type Stats struct {
	Events     int
	Dispatched int
	Errors     int
	LastPath   string
	LastEvent  time.Time
}

// Watcher watches one directory for created or written files.
type Watcher struct {
	cfg     Config
	handler Handler
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	tick    time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	stats   Stats
}

// New creates a Watcher. The directory is not watched until Start.
func New(cfg Config, handler Handler, logger *slog.Logger) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, ErrNoDir
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	tick := cfg.Debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	return &Watcher{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		watcher: fw,
		tick:    tick,
		pending: make(map[string]time.Time),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins watching. It returns once the directory is registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.cfg.Dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("watch %s: %w", w.cfg.Dir, err)
	}

	go w.run(ctx)

	w.logger.Info("watcher started",
		"dir", w.cfg.Dir,
		"patterns", w.cfg.Patterns,
		"debounce", w.cfg.Debounce,
	)
	return nil
}

// Stop stops the event loop, waits for in-flight handlers and closes the
// underlying watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		select {
		case <-w.stopCh:
		default:
			close(w.stopCh)
		}
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("failed to close watcher", "error", err)
	}
	if wasRunning {
		w.logger.Info("watcher stopped")
	}
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
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
			w.logger.Warn("watcher error", "error", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !files.Match(filepath.Base(event.Name), w.cfg.Patterns) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[event.Name] = time.Now()
	w.stats.Events++
	w.stats.LastPath = event.Name
	w.stats.LastEvent = time.Now()
}

// flush dispatches paths that have been quiet for the debounce period.
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.cfg.Debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.stats.Dispatched += len(ready)
	w.mu.Unlock()

	for _, path := range ready {
		if ctx.Err() != nil {
			return
		}
		w.logger.Debug("file settled", "path", path)
		if w.handler != nil {
			w.handler(ctx, path)
		}
	}
}
