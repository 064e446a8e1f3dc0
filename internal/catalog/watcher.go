package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher monitors a catalog directory and hot-reloads it into a Store.
// Reloads that fail validation are logged and discarded; the previous
// catalog stays in service, so a half-edited catalog on disk never
// breaks a running process.
//
// A Watcher is single-use: Stop releases the underlying filesystem
// watch, so Start after Stop returns an error. Create a new Watcher to
// watch again.
type Watcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	loader  *Loader
	store   *Store
	dir     string
	log     *zap.Logger

	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	stopped  bool

	// Stats for tests and debugging.
	reloads       int
	rejectedLoads int
}

// NewWatcher creates a watcher over dir that swaps validated catalogs
// into store.
func NewWatcher(dir string, loader *Loader, store *Store, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		watcher:  fw,
		loader:   loader,
		store:    store,
		dir:      dir,
		log:      log,
		debounce: 500 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetDebounce adjusts the quiet period after the last event before a
// reload fires. Intended for tests.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// Start begins watching. Non-blocking; the watch loop runs in a
// goroutine until Stop or context cancellation. Starting an already
// running watcher is a no-op; starting a stopped one is an error.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return errors.New("catalog watcher already stopped, create a new one")
	}
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}

	w.log.Info("watching catalog directory", zap.String("dir", w.dir))
	go w.run(ctx)
	return nil
}

// Stop stops the watcher, waits for the loop to exit, and releases the
// filesystem watch. Safe to call more than once; the watcher cannot be
// started again afterwards.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}
	_ = w.watcher.Close()
}

// Stats returns the number of successful and rejected reloads so far.
func (w *Watcher) Stats() (reloads, rejected int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads, w.rejectedLoads
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	w.mu.Lock()
	debounce := w.debounce
	w.mu.Unlock()

	// The timer coalesces bursts of events (editors write several
	// times per save) into a single reload.
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

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
			if !isYAMLEvent(event) {
				continue
			}
			w.log.Debug("catalog change detected",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()))
			if pending {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
			}
			timer.Reset(debounce)
			pending = true
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("catalog watcher error", zap.Error(err))
		case <-timer.C:
			pending = false
			w.reload()
		}
	}
}

// reload loads the directory and swaps the result in if it validates.
func (w *Watcher) reload() {
	cat, err := w.loader.Load(w.dir)
	if err != nil {
		w.mu.Lock()
		w.rejectedLoads++
		w.mu.Unlock()
		w.log.Warn("catalog reload rejected, keeping previous catalog",
			zap.String("dir", w.dir),
			zap.Error(err))
		return
	}

	old := w.store.Swap(cat)
	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()
	w.log.Info("catalog reloaded",
		zap.Int("units", cat.Len()),
		zap.Int("previous_units", old.Len()))
}

func isYAMLEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	return ext == ".yaml" || ext == ".yml"
}
