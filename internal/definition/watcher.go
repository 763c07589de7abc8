package definition

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/tourguide/internal/event"
	"github.com/Iron-Ham/tourguide/internal/logging"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before reloading.
const DefaultDebounce = 100 * time.Millisecond

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherBus publishes catalog.reloaded events on b.
func WithWatcherBus(b *event.Bus) WatcherOption {
	return func(w *Watcher) { w.bus = b }
}

// WithWatcherLogger sets the watcher logger.
func WithWatcherLogger(l *logging.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithReloadCallback registers fn to receive every successfully reloaded
// catalog.
func WithReloadCallback(fn func(*Catalog)) WatcherOption {
	return func(w *Watcher) { w.onReload = fn }
}

// Watcher keeps a Catalog in sync with a definition directory. A reload that
// fails keeps the previous catalog. Sequencers already mounted keep the steps
// they were built with.
type Watcher struct {
	dir     string
	actions *Actions
	watcher *fsnotify.Watcher

	bus      *event.Bus
	logger   *logging.Logger
	debounce time.Duration
	onReload func(*Catalog)

	mu      sync.RWMutex
	catalog *Catalog

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher loads dir and starts watching it. The directory must exist.
func NewWatcher(dir string, actions *Actions, opts ...WatcherOption) (*Watcher, error) {
	if actions == nil {
		actions = NewActions(nil)
	}
	catalog, err := LoadDir(dir, actions)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		dir:      dir,
		actions:  actions,
		watcher:  fsw,
		debounce: DefaultDebounce,
		catalog:  catalog,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logging.NopLogger()
	}

	go w.watchLoop()
	return w, nil
}

// Catalog returns the current catalog.
func (w *Watcher) Catalog() *Catalog {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.catalog
}

// Stop stops watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
		<-w.doneCh
	})
}

func (w *Watcher) watchLoop() {
	defer close(w.doneCh)

	// Editors emit several events per save
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C
	pending := false

	for {
		select {
		case <-w.stopCh:
			debounceTimer.Stop()
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !IsDefinitionFile(ev.Name) {
				continue
			}
			pending = true
			debounceTimer.Reset(w.debounce)

		case <-debounceTimer.C:
			if pending {
				pending = false
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("definition watcher error", "dir", w.dir, "error", err.Error())
		}
	}
}

func (w *Watcher) reload() {
	catalog, err := LoadDir(w.dir, w.actions)
	if err != nil {
		w.logger.Warn("definition reload failed, keeping previous catalog", "dir", w.dir, "error", err.Error())
		w.publish(event.NewCatalogReloadedEvent(w.dir, w.Catalog().Len(), err))
		return
	}

	w.mu.Lock()
	w.catalog = catalog
	w.mu.Unlock()

	w.logger.Info("definitions reloaded", "dir", w.dir, "tours", catalog.Len())
	w.publish(event.NewCatalogReloadedEvent(w.dir, catalog.Len(), nil))
	if w.onReload != nil {
		w.onReload(catalog)
	}
}

func (w *Watcher) publish(e event.Event) {
	if w.bus != nil {
		w.bus.Publish(e)
	}
}
