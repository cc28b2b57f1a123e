// Package bus provides synchronous fan-out of payment events to subscribers.
package bus

import (
	"log/slog"
	"sync"

	"github.com/paywatch/paywatch/internal/model"
)

// Bus delivers payment events to all current subscribers. Delivery is
// synchronous; a panicking subscriber is isolated and logged so the rest
// still receive the event.
type Bus struct {
	subscribers map[int]func(model.PaymentEvent)
	nextID      int
	mu          sync.RWMutex
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subscribers: make(map[int]func(model.PaymentEvent))}
}

// Subscribe registers a callback for every published event and returns an
// unsubscribe handle. Unsubscribing twice is safe.
func (b *Bus) Subscribe(fn func(model.PaymentEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subscribers[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
	}
}

// Publish invokes all current subscribers with the event.
func (b *Bus) Publish(event model.PaymentEvent) {
	b.mu.RLock()
	callbacks := make([]func(model.PaymentEvent), 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		callbacks = append(callbacks, fn)
	}
	b.mu.RUnlock()

	for _, fn := range callbacks {
		b.deliver(fn, event)
	}
}

func (b *Bus) deliver(fn func(model.PaymentEvent), event model.PaymentEvent) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Subscriber panicked during event delivery",
				"event_kind", event.Kind,
				"payment_id", event.PaymentID,
				"panic", r)
		}
	}()

	fn(event)
}
