package bus

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultHistorySize is how many recent events are retained for replay.
const DefaultHistorySize = 100

// Handler receives published events. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(Event)

// SubscriptionID identifies a subscription for cancellation.
type SubscriptionID uint64

// Bus is a thread-safe pub/sub dispatcher with bounded event history.
type Bus struct {
	mu          sync.RWMutex
	nextID      SubscriptionID
	typed       map[EventType]map[SubscriptionID]Handler
	wildcard    map[SubscriptionID]Handler
	history     []Event
	historySize int
	closed      bool
}

// New creates a bus with the default history size.
func New() *Bus {
	return NewWithHistory(DefaultHistorySize)
}

// NewWithHistory creates a bus retaining up to historySize events.
func NewWithHistory(historySize int) *Bus {
	if historySize < 0 {
		historySize = 0
	}
	return &Bus{
		typed:       make(map[EventType]map[SubscriptionID]Handler),
		wildcard:    make(map[SubscriptionID]Handler),
		historySize: historySize,
	}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(eventType EventType, handler Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.allocID()
	subs, ok := b.typed[eventType]
	if !ok {
		subs = make(map[SubscriptionID]Handler)
		b.typed[eventType] = subs
	}
	subs[id] = handler
	return id
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(handler Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.allocID()
	b.wildcard[id] = handler
	return id
}

// Unsubscribe removes a subscription. Unknown IDs are a no-op.
func (b *Bus) Unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.wildcard, id)
	for _, subs := range b.typed {
		delete(subs, id)
	}
}

// Publish delivers an event to typed and wildcard subscribers and
// records it in history. Publishing on a closed bus is dropped.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}

	if b.historySize > 0 {
		b.history = append(b.history, event)
		if len(b.history) > b.historySize {
			b.history = b.history[len(b.history)-b.historySize:]
		}
	}

	handlers := make([]Handler, 0, len(b.typed[event.Type])+len(b.wildcard))
	for _, h := range b.typed[event.Type] {
		handlers = append(handlers, h)
	}
	for _, h := range b.wildcard {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		b.dispatch(h, event)
	}
}

// dispatch runs one handler, absorbing panics so a broken observer
// cannot take down the publisher.
func (b *Bus) dispatch(h Handler, event Event) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).
				Str("event_type", string(event.Type)).
				Msg("event handler panicked")
		}
	}()
	h(event)
}

// History returns a copy of the retained events, oldest first.
func (b *Bus) History() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Event, len(b.history))
	copy(out, b.history)
	return out
}

// Close stops delivery. Further publishes are silently dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// allocID issues the next subscription ID. Caller must hold b.mu.
func (b *Bus) allocID() SubscriptionID {
	b.nextID++
	return b.nextID
}
