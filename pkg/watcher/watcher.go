// Package watcher implements hot reload for the configuration store.
// It watches the configuration directory (the directory, not the file,
// so atomic rename saves are observed), debounces bursts of events, and
// triggers a store reload when the file content actually changed.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/aitherzero/configcore/pkg/errors"
	"github.com/aitherzero/configcore/pkg/logging"
	"github.com/aitherzero/configcore/pkg/store"
)

// Stats tracks watcher activity for debugging.
type Stats struct {
	EventsSeen       int
	ReloadsTriggered int
	SelfWritesSeen   int
	Errors           int
	LastEventTime    time.Time
}

// Watcher debounces file events on the store file into reloads.
type Watcher struct {
	mu       sync.RWMutex
	fsw      *fsnotify.Watcher
	st       *store.Store
	logger   zerolog.Logger
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	stats    Stats
}

// New creates a watcher for the given store. The debounce interval comes
// from the store's persisted hot-reload settings.
func New(st *store.Store) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrWatchFailed, "failed to create file watcher")
	}

	hr := st.HotReloadSettings()
	return &Watcher{
		fsw:      fsw,
		st:       st,
		logger:   logging.GetLogger("watcher"),
		debounce: time.Duration(hr.DebounceMs) * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// WithDebounce overrides the debounce interval for this watcher without
// touching the store's persisted settings. Call before Start.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Debounce returns the active debounce interval.
func (w *Watcher) Debounce() time.Duration {
	return w.debounce
}

// Start begins watching the configuration directory. Non-blocking; the
// event loop runs in a goroutine until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dir := w.st.Paths().ConfigDir()
	if err := w.st.Paths().EnsureConfigDir(); err != nil {
		return err
	}
	if err := w.fsw.Add(dir); err != nil {
		return errors.Wrapf(err, errors.ErrWatchFailed, "failed to watch %s", dir)
	}
	w.logger.Info().Str("dir", dir).Dur("debounce", w.debounce).Msg("Watching configuration directory")

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.fsw.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Error closing file watcher")
	}
	w.logger.Debug().Msg("Watcher stopped")
}

// Stats returns a copy of the activity counters.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	var timerCh <-chan time.Time

	configFile := filepath.Base(w.st.Paths().ConfigFile())

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug().Msg("Watcher context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFile {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.mu.Lock()
			w.stats.EventsSeen++
			w.stats.LastEventTime = time.Now()
			w.mu.Unlock()

			// Restart the debounce window on every event in a burst.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
			w.logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

// reload re-reads the store unless the file still matches what the store
// last wrote (our own save landing back on us).
func (w *Watcher) reload() {
	path := w.st.Paths().ConfigFile()
	if sum := store.FileChecksum(path); sum != "" && sum == w.st.LastChecksum() {
		w.mu.Lock()
		w.stats.SelfWritesSeen++
		w.mu.Unlock()
		w.logger.Debug().Msg("Ignoring event from our own save")
		return
	}

	if err := w.st.Reload(); err != nil {
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		w.logger.Error().Err(err).Msg("Hot reload failed")
		return
	}

	w.mu.Lock()
	w.stats.ReloadsTriggered++
	w.mu.Unlock()
}
