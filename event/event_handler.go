// Package event provides a constructible event handler with subscriptions
// keyed by an arbitrary value, for cases where events must be routed to a
// subset of subscribers rather than broadcast by type.
package event

import (
	"sync"
)

type Key any
type subscribers map[*Subscription]func(data any)

// Subscription allows unsubscribing from an event key.
type Subscription struct {
	key Key
}

// Handler manages event subscriptions and emissions.
type Handler struct {
	subscribers map[Key]subscribers
	mu          sync.RWMutex
}

func NewHandler() *Handler {
	return &Handler{
		subscribers: make(map[Key]subscribers),
	}
}

// Subscribe registers a callback for the given event key.
// Returns a Subscription for later unsubscription.
func (eh *Handler) Subscribe(key Key, callback func(data any)) *Subscription {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	if eh.subscribers[key] == nil {
		eh.subscribers[key] = make(subscribers)
	}
	sub := &Subscription{key: key}
	eh.subscribers[key][sub] = callback
	return sub
}

// Unsubscribe removes the given subscription.
func (eh *Handler) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	eh.mu.Lock()
	defer eh.mu.Unlock()
	if subs, ok := eh.subscribers[sub.key]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(eh.subscribers, sub.key)
		}
	}
}

// Emit notifies subscribers of the key, passing data. Callbacks are invoked
// asynchronously in separate goroutines. It returns the number of subscribers
// notified so callers can tell whether anyone was listening.
func (eh *Handler) Emit(key Key, data any) int {
	eh.mu.RLock()
	defer eh.mu.RUnlock()
	subs := eh.subscribers[key]
	for _, cb := range subs {
		go cb(data)
	}
	return len(subs)
}
