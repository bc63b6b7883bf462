// Package event carries the engine's outbound notifications to subscribers
// (terminal renderer, transports, tests) without direct dependencies.
package event

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Handler is a function that handles an event.
type Handler func(Event)

type subscription struct {
	id      string
	handler Handler
}

// Bus is a synchronous pub-sub bus. Delivery happens on the publisher's
// goroutine, so subscribers observe events in publish order.
type Bus struct {
	mu            sync.RWMutex
	subscriptions map[string][]subscription // eventType -> subscriptions
	nextID        atomic.Uint64
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subscriptions: make(map[string][]subscription),
	}
}

// Subscribe registers a handler for one event type and returns its id.
func (b *Bus) Subscribe(eventType string, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := fmt.Sprintf("sub-%d", b.nextID.Add(1))
	b.subscriptions[eventType] = append(b.subscriptions[eventType], subscription{id: id, handler: handler})
	return id
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(handler Handler) string {
	return b.Subscribe("*", handler)
}

// Unsubscribe removes a subscription by id.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscriptions {
		for i, sub := range subs {
			if sub.id == id {
				b.subscriptions[eventType] = append(subs[:i:i], subs[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Publish dispatches an event to type-specific handlers, then to wildcard
// handlers. A panicking handler is logged and skipped.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	specific := append([]subscription(nil), b.subscriptions[e.EventType()]...)
	wildcard := append([]subscription(nil), b.subscriptions["*"]...)
	b.mu.RUnlock()

	for _, sub := range specific {
		b.safeCall(sub.handler, e)
	}
	for _, sub := range wildcard {
		b.safeCall(sub.handler, e)
	}
}

func (b *Bus) safeCall(handler Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked",
				"event", e.EventType(), "panic", r, "stack", string(debug.Stack()))
		}
	}()
	handler(e)
}

// SubscriptionCount returns the total number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, subs := range b.subscriptions {
		count += len(subs)
	}
	return count
}
