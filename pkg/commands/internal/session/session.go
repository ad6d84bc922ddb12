// Package session opens configuration stores for the command layer.
package session

import (
	"github.com/aitherzero/configcore/pkg/events"
	"github.com/aitherzero/configcore/pkg/paths"
	"github.com/aitherzero/configcore/pkg/store"
)

// Open initializes paths for the given config directory (empty means
// the platform default) and opens the store with a fresh event bus.
func Open(configDir string) (*store.Store, error) {
	p, err := paths.New(configDir)
	if err != nil {
		return nil, err
	}
	return store.Open(p, events.NewBus())
}
