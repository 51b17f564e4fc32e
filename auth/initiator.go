package auth

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/taskdeck/taskdeck/event"
)

// Initiator starts browser-handoff sign-in attempts on behalf of the UI and
// tracks each until it settles.
type Initiator struct {
	launcher *Launcher
	registry *Registry
	channel  *Channel
	timeout  time.Duration
}

func NewInitiator(launcher *Launcher, registry *Registry, channel *Channel, timeout time.Duration) *Initiator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Initiator{
		launcher: launcher,
		registry: registry,
		channel:  channel,
		timeout:  timeout,
	}
}

// Attempt is a single in-flight sign-in. It settles exactly once; events
// arriving after it settled are ignored.
type Attempt struct {
	CorrelationID string

	registry *Registry
	channel  *Channel
	timeout  time.Duration
	sub      *event.Subscription
	result   chan Message
	settled  atomic.Bool
}

// Start registers a new attempt and opens the browser. It returns as soon as
// the browser has been asked to open; the outcome arrives via Wait or the
// event channel.
func (i *Initiator) Start(provider Provider) (*Attempt, error) {
	cid, err := i.launcher.Launch(provider)
	if err != nil {
		return nil, err
	}
	a := &Attempt{
		CorrelationID: cid,
		registry:      i.registry,
		channel:       i.channel,
		timeout:       i.timeout,
		result:        make(chan Message, 1),
	}
	a.sub = i.channel.Subscribe(cid, a.deliver)
	return a, nil
}

// SignIn runs a complete attempt synchronously: start, then wait.
func (i *Initiator) SignIn(ctx context.Context, provider Provider) error {
	a, err := i.Start(provider)
	if err != nil {
		return err
	}
	return a.Wait(ctx)
}

func (a *Attempt) deliver(msg Message) {
	if a.settled.CompareAndSwap(false, true) {
		a.result <- msg
	}
}

// Wait blocks until the attempt settles, the client-side timeout elapses, or
// ctx is cancelled. The timeout is deliberately independent of the registry
// TTL: even if the expiry event is lost, the caller is released.
func (a *Attempt) Wait(ctx context.Context) error {
	timer := time.NewTimer(a.timeout)
	defer timer.Stop()
	select {
	case msg := <-a.result:
		a.channel.Unsubscribe(a.sub)
		return msg.resultErr()
	case <-timer.C:
		a.settle(StatusExpired, ErrExpiredRequest)
		return ErrExpiredRequest
	case <-ctx.Done():
		a.settle(StatusCancelled, ErrCancelled)
		return ErrCancelled
	}
}

// Cancel aborts the attempt. The registry entry is driven terminal, so a
// callback landing afterwards can no longer trigger an exchange, and any late
// event for this attempt is dropped.
func (a *Attempt) Cancel() {
	a.settle(StatusCancelled, ErrCancelled)
}

func (a *Attempt) settle(status Status, cause error) {
	if !a.settled.CompareAndSwap(false, true) {
		return
	}
	a.channel.Unsubscribe(a.sub)
	_ = a.registry.Transition(a.CorrelationID, status, cause)
	// the transition above may have published through the channel after we
	// unsubscribed; drop any held copy so it cannot be replayed
	a.channel.Drop(a.CorrelationID)
	// unblock a concurrent Wait; the buffer absorbs it when Wait settled us
	a.result <- Message{CorrelationID: a.CorrelationID, Kind: kindFor(status), Err: cause}
}
