package events

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/aitherzero/configcore/pkg/logging"
)

// Handler receives published events.
type Handler func(Event)

type subscription struct {
	id      int
	handler Handler
	types   map[EventType]bool // nil means all types
}

// Bus dispatches store events to subscribers.
type Bus struct {
	mu     sync.RWMutex
	logger zerolog.Logger
	nextID int
	subs   []*subscription
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{logger: logging.GetLogger("events")}
}

// Subscribe registers a handler for the given event types. With no types
// the handler receives every event. The returned function removes the
// subscription and is safe to call more than once.
func (b *Bus) Subscribe(handler Handler, types ...EventType) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscription{id: b.nextID, handler: handler}
	b.nextID++
	if len(types) > 0 {
		sub.types = make(map[EventType]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}
	b.subs = append(b.subs, sub)

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(sub.id) })
	}
}

func (b *Bus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every matching subscriber, in
// subscription order. Handler panics are recovered and logged.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := make([]*subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, sub := range subs {
		if sub.types != nil && !sub.types[event.Type] {
			continue
		}
		b.dispatch(sub, event)
	}
}

func (b *Bus) dispatch(sub *subscription, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Interface("panic", r).
				Str("eventType", string(event.Type)).
				Msg("Event handler panicked")
		}
	}()
	sub.handler(event)
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
