// Package events provides in-process change notification for the
// configuration store. Handlers are invoked synchronously in publish
// order; a panicking handler is recovered and logged so one bad
// subscriber cannot take down a mutation.
package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies what happened to the store.
type EventType string

// Store event types.
const (
	EventModuleRegistered EventType = "module.registered"
	EventConfigChanged    EventType = "config.changed"
	EventConfigReloaded   EventType = "config.reloaded"
	EventConfigImported   EventType = "config.imported"
	EventEnvCreated       EventType = "environment.created"
	EventEnvSwitched      EventType = "environment.switched"
	EventEnvDeleted       EventType = "environment.deleted"
	EventBackupCreated    EventType = "backup.created"
	EventBackupRestored   EventType = "backup.restored"
)

// Event describes a single store change.
type Event struct {
	ID          string                 `json:"id"`
	Type        EventType              `json:"type"`
	Module      string                 `json:"module,omitempty"`
	Environment string                 `json:"environment,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// New creates an event with a fresh ID and timestamp.
func New(eventType EventType, module, environment string, data map[string]interface{}) Event {
	if data == nil {
		data = make(map[string]interface{})
	}
	return Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		Module:      module,
		Environment: environment,
		Timestamp:   time.Now(),
		Data:        data,
	}
}

// NewModuleEvent creates an event scoped to a module.
func NewModuleEvent(eventType EventType, module string, data map[string]interface{}) Event {
	return New(eventType, module, "", data)
}

// NewEnvironmentEvent creates an event scoped to an environment.
func NewEnvironmentEvent(eventType EventType, environment string, data map[string]interface{}) Event {
	return New(eventType, "", environment, data)
}
