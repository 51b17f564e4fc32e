package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registry is the single source of truth for in-flight authentication
// attempts. Both the initiating side and the deep-link side consult it, so
// every state transition is serialized here: exactly one terminal transition
// wins per attempt, no matter how callbacks, timeouts, and cancellations race.
type Registry struct {
	ttl     time.Duration
	channel *Channel
	// now is replaceable for expiry tests.
	now func() time.Time

	mu       sync.Mutex
	requests map[string]*PendingAuthRequest
	timers   map[string]*time.Timer
}

func NewRegistry(ttl time.Duration, channel *Channel) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		ttl:      ttl,
		channel:  channel,
		now:      time.Now,
		requests: make(map[string]*PendingAuthRequest),
		timers:   make(map[string]*time.Timer),
	}
}

// newCorrelationID returns a cryptographically random 256-bit identifier.
// The id is the only thing tying a deep-link callback to an attempt, so it
// must be unguessable.
func newCorrelationID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Create registers a new pending attempt and starts its expiry timer. Only
// one attempt may be outstanding per instance: any prior non-terminal attempt
// is cancelled (superseded) before the new one is inserted, so its callback
// can no longer complete.
func (r *Registry) Create(provider Provider) (PendingAuthRequest, error) {
	id, err := newCorrelationID()
	if err != nil {
		return PendingAuthRequest{}, fmt.Errorf("generating correlation id: %w", err)
	}

	r.mu.Lock()
	for cid := range r.requests {
		slog.Debug("Superseding in-flight sign-in attempt")
		r.terminateLocked(cid, StatusCancelled, ErrCancelled)
	}
	now := r.now()
	req := &PendingAuthRequest{
		CorrelationID: id,
		Provider:      provider,
		CreatedAt:     now,
		ExpiresAt:     now.Add(r.ttl),
		Status:        StatusPending,
	}
	r.requests[id] = req
	r.timers[id] = time.AfterFunc(r.ttl, func() {
		_ = r.Transition(id, StatusExpired, ErrExpiredRequest)
	})
	r.mu.Unlock()
	return *req, nil
}

// Lookup returns the attempt for the correlation id. Unknown, expired, and
// already-terminal ids are indistinguishable: all report not found, so a
// caller can never act on a closed window.
func (r *Registry) Lookup(id string) (PendingAuthRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status.Terminal() || r.now().After(req.ExpiresAt) {
		return PendingAuthRequest{}, false
	}
	return *req, true
}

// Pending returns the currently outstanding attempt, if any.
func (r *Registry) Pending() (PendingAuthRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if !req.Status.Terminal() && !r.now().After(req.ExpiresAt) {
			return *req, true
		}
	}
	return PendingAuthRequest{}, false
}

// Transition moves the attempt to status, enforcing the state machine. A
// terminal transition stops the expiry timer, evicts the entry, and publishes
// the attempt's single terminal event; any later transition for the same id
// fails with ErrExpiredRequest.
func (r *Registry) Transition(id string, status Status, cause error) error {
	r.mu.Lock()
	req, ok := r.requests[id]
	if !ok {
		r.mu.Unlock()
		return ErrExpiredRequest
	}
	if !req.Status.canTransition(status) {
		from := req.Status
		r.mu.Unlock()
		return fmt.Errorf("invalid transition %s -> %s", from, status)
	}
	if status.Terminal() {
		r.terminateLocked(id, status, cause)
	} else {
		req.Status = status
	}
	r.mu.Unlock()
	return nil
}

// Evict removes the attempt without publishing an event. Terminal transitions
// evict implicitly; this is for teardown, where nobody is listening anymore.
func (r *Registry) Evict(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t := r.timers[id]; t != nil {
		t.Stop()
	}
	delete(r.timers, id)
	delete(r.requests, id)
}

// terminateLocked finalizes the attempt and publishes its terminal event.
// Callers hold r.mu.
func (r *Registry) terminateLocked(id string, status Status, cause error) {
	if t := r.timers[id]; t != nil {
		t.Stop()
	}
	delete(r.timers, id)
	delete(r.requests, id)
	msg := Message{CorrelationID: id, Kind: kindFor(status), Err: cause}
	if r.channel != nil {
		// Publish takes the channel lock only, never the registry lock.
		r.channel.Publish(msg)
	}
}

func kindFor(status Status) Kind {
	switch status {
	case StatusCompleted:
		return KindSuccess
	case StatusExpired:
		return KindExpired
	case StatusCancelled:
		return KindCancelled
	default:
		return KindError
	}
}
