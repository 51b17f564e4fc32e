// Package events provides a simple publish-subscribe mechanism for event
// handling, keyed by event type.
package events

import (
	"sync"
)

// Event is the constraint for event types. The zero value of the type is used
// as the subscription key, so any comparable struct works.
type Event comparable

type subscriber struct {
	fn   func(any)
	once bool
}

var (
	subscriptions   = make(map[any]map[*Subscription]subscriber)
	subscriptionsMu sync.Mutex
)

// Subscription allows unsubscribing from an event.
type Subscription struct {
	key any
}

// Subscribe registers a callback for events of type T.
func Subscribe[T Event](callback func(evt T)) *Subscription {
	return subscribe(callback, false)
}

// SubscribeOnce registers a callback that is removed after the first delivery.
func SubscribeOnce[T Event](callback func(evt T)) *Subscription {
	return subscribe(callback, true)
}

func subscribe[T Event](callback func(evt T), once bool) *Subscription {
	subscriptionsMu.Lock()
	defer subscriptionsMu.Unlock()
	var key T
	if subscriptions[key] == nil {
		subscriptions[key] = make(map[*Subscription]subscriber)
	}
	sub := &Subscription{key: key}
	subscriptions[key][sub] = subscriber{
		fn:   func(e any) { callback(e.(T)) },
		once: once,
	}
	return sub
}

// Unsubscribe removes the subscription. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	subscriptionsMu.Lock()
	defer subscriptionsMu.Unlock()
	if subs, ok := subscriptions[s.key]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(subscriptions, s.key)
		}
	}
}

// Emit notifies all subscribers of the event, passing event data.
// Callbacks are invoked asynchronously in separate goroutines.
func Emit[T Event](evt T) {
	subscriptionsMu.Lock()
	var key T
	subs := subscriptions[key]
	callbacks := make([]func(any), 0, len(subs))
	for sub, s := range subs {
		callbacks = append(callbacks, s.fn)
		if s.once {
			delete(subs, sub)
		}
	}
	if len(subs) == 0 {
		delete(subscriptions, key)
	}
	subscriptionsMu.Unlock()

	for _, cb := range callbacks {
		go cb(evt)
	}
}
