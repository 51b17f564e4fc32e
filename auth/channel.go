package auth

import (
	"sync"
	"time"

	"github.com/taskdeck/taskdeck/event"
	"github.com/taskdeck/taskdeck/events"
)

// Kind classifies a terminal authentication event.
type Kind string

const (
	KindSuccess   Kind = "success"
	KindError     Kind = "error"
	KindExpired   Kind = "expired"
	KindCancelled Kind = "cancelled"
)

// Message is the terminal notification for a single attempt. Exactly one is
// published per attempt, keyed by its correlation id. It never carries tokens
// or codes.
type Message struct {
	CorrelationID string
	Kind          Kind
	Err           error
}

func (m Message) resultErr() error {
	switch m.Kind {
	case KindSuccess:
		return nil
	case KindExpired:
		if m.Err == nil {
			return ErrExpiredRequest
		}
	case KindCancelled:
		if m.Err == nil {
			return ErrCancelled
		}
	}
	return m.Err
}

// Channel routes terminal events from the deep-link side of the bridge to
// whoever initiated the attempt, which may live in a different process. Each
// message is consumed by at most one attempt-scoped subscriber; messages that
// arrive before the subscriber attaches are held for a grace window rather
// than dropped, since the browser handoff gives the initiator no way to know
// when the callback will land.
type Channel struct {
	handler *event.Handler
	grace   time.Duration

	mu   sync.Mutex
	held map[string]Message
}

func NewChannel(grace time.Duration) *Channel {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Channel{
		handler: event.NewHandler(),
		grace:   grace,
		held:    make(map[string]Message),
	}
}

// Publish delivers msg to the subscriber for its correlation id, holding it
// for the grace window if no subscriber is attached yet. The message is also
// re-emitted on the process-wide bus for observers such as the IPC event
// stream.
func (c *Channel) Publish(msg Message) {
	events.Emit(msg)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handler.Emit(msg.CorrelationID, msg) > 0 {
		return
	}
	c.held[msg.CorrelationID] = msg
	time.AfterFunc(c.grace, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if held, ok := c.held[msg.CorrelationID]; ok && held == msg {
			delete(c.held, msg.CorrelationID)
		}
	})
}

// Subscribe registers cb for the attempt's terminal message. If the message
// already arrived and is still held, it is delivered immediately, consumed,
// and no subscription is created (the returned subscription is nil, which
// Unsubscribe accepts).
func (c *Channel) Subscribe(correlationID string, cb func(Message)) *event.Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg, ok := c.held[correlationID]; ok {
		delete(c.held, correlationID)
		go cb(msg)
		return nil
	}
	return c.handler.Subscribe(correlationID, func(data any) {
		cb(data.(Message))
	})
}

func (c *Channel) Unsubscribe(sub *event.Subscription) {
	c.handler.Unsubscribe(sub)
}

// Drop discards a held message, if any. Used when the attempt that would have
// consumed it is gone for good.
func (c *Channel) Drop(correlationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.held, correlationID)
}
