package watcher

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitherzero/configcore/pkg/events"
	"github.com/aitherzero/configcore/pkg/paths"
	"github.com/aitherzero/configcore/pkg/store"
)

func openStore(t *testing.T, dir string) *store.Store {
	t.Helper()
	p, err := paths.New(dir)
	require.NoError(t, err)
	s, err := store.Open(p, events.NewBus())
	require.NoError(t, err)
	return s
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestWatcherTriggersReloadOnExternalChange(t *testing.T) {
	dir := t.TempDir()
	s := openStore(t, dir)
	require.NoError(t, s.RegisterModule("labrunner", nil, map[string]interface{}{"port": 8080}))
	require.NoError(t, s.SetHotReload(store.HotReload{Enabled: true, DebounceMs: 50}))

	// Incremented on the watcher goroutine, read here: keep it atomic.
	var reloads atomic.Int32
	s.Bus().Subscribe(func(events.Event) { reloads.Add(1) }, events.EventConfigReloaded)

	w, err := New(s)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	// Simulate an external writer: a second store handle on the same file
	other := openStore(t, dir)
	require.NoError(t, other.Set("labrunner", "", "port", 9999))

	require.True(t, waitFor(t, 3*time.Second, func() bool { return reloads.Load() > 0 }),
		"expected a reload after an external write")

	v, err := s.Get("labrunner", "port")
	require.NoError(t, err)
	assert.InDelta(t, 9999, v.(float64), 0)
}

func TestWatcherIgnoresOwnSaves(t *testing.T) {
	dir := t.TempDir()
	s := openStore(t, dir)
	require.NoError(t, s.RegisterModule("labrunner", nil, nil))
	require.NoError(t, s.SetHotReload(store.HotReload{Enabled: true, DebounceMs: 50}))

	w, err := New(s)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, s.Set("labrunner", "", "hostname", "self"))

	waitFor(t, time.Second, func() bool { return w.Stats().SelfWritesSeen > 0 })
	stats := w.Stats()
	assert.Zero(t, stats.ReloadsTriggered, "own saves must not trigger reloads")
}

func TestWatcherStartIsIdempotentAndStops(t *testing.T) {
	s := openStore(t, t.TempDir())
	w, err := New(s)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Start(ctx))

	w.Stop()
	w.Stop()
}

func TestDebounceFromStoreSettings(t *testing.T) {
	s := openStore(t, t.TempDir())
	require.NoError(t, s.SetHotReload(store.HotReload{Enabled: true, DebounceMs: 250}))

	w, err := New(s)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, w.Debounce())
}
