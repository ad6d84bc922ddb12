package watch

import (
	"context"
	"time"

	"github.com/aitherzero/configcore/pkg/commands/internal/session"
	"github.com/aitherzero/configcore/pkg/errors"
	"github.com/aitherzero/configcore/pkg/events"
	"github.com/aitherzero/configcore/pkg/logging"
	"github.com/aitherzero/configcore/pkg/store"
	"github.com/aitherzero/configcore/pkg/watcher"
)

// WatchStoreOptions defines the options for the WatchStore command.
type WatchStoreOptions struct {
	ConfigDir string
	// DebounceMs overrides the store's hot-reload debounce when positive.
	DebounceMs int
	// Force watches even when the store's hot-reload flag is off.
	Force bool
	// OnReload is invoked after each hot reload, with the modules whose
	// effective configuration changed.
	OnReload func(changed []string)
}

// WatchStoreResult reports the watcher's counters after it stops.
type WatchStoreResult struct {
	Stats watcher.Stats
}

// WatchStore watches the configuration file and hot-reloads the store
// on external changes until the context is cancelled.
func WatchStore(ctx context.Context, opts WatchStoreOptions) (*WatchStoreResult, error) {
	log := logging.GetLogger("commands.watch")
	log.Debug().Str("command", "WatchStore").Msg("Executing command")

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	if !s.HotReloadSettings().Enabled && !opts.Force {
		return nil, errors.New(errors.ErrWatchDisabled,
			"hot reload is disabled for this store; enable it first or pass force")
	}

	if opts.OnReload != nil {
		unsubscribe := s.Bus().Subscribe(func(e events.Event) {
			changed, _ := e.Data["modules"].([]string)
			opts.OnReload(changed)
		}, events.EventConfigReloaded)
		defer unsubscribe()
	}

	w, err := watcher.New(s)
	if err != nil {
		return nil, err
	}
	if opts.DebounceMs > 0 {
		w.WithDebounce(time.Duration(opts.DebounceMs) * time.Millisecond)
	}

	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	<-ctx.Done()
	w.Stop()

	stats := w.Stats()
	log.Info().
		Str("command", "WatchStore").
		Int("eventsSeen", stats.EventsSeen).
		Int("reloads", stats.ReloadsTriggered).
		Msg("Command finished")
	return &WatchStoreResult{Stats: stats}, nil
}

// SetHotReloadOptions defines the options for the SetHotReload command.
type SetHotReloadOptions struct {
	ConfigDir string
	Enabled   bool
	// DebounceMs replaces the persisted debounce when positive.
	DebounceMs int
}

// SetHotReloadResult reports the persisted hot-reload settings.
type SetHotReloadResult struct {
	Settings store.HotReload
}

// SetHotReload persists the store's hot-reload flag and debounce. The
// watch command refuses to run while the flag is off.
func SetHotReload(opts SetHotReloadOptions) (*SetHotReloadResult, error) {
	log := logging.GetLogger("commands.watch")
	log.Debug().Str("command", "SetHotReload").Bool("enabled", opts.Enabled).Msg("Executing command")

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	hr := s.HotReloadSettings()
	hr.Enabled = opts.Enabled
	if opts.DebounceMs > 0 {
		hr.DebounceMs = opts.DebounceMs
	}
	if err := s.SetHotReload(hr); err != nil {
		return nil, err
	}

	log.Info().
		Str("command", "SetHotReload").
		Bool("enabled", hr.Enabled).
		Int("debounceMs", hr.DebounceMs).
		Msg("Command finished")
	return &SetHotReloadResult{Settings: s.HotReloadSettings()}, nil
}
