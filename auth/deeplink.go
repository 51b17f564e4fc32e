package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/taskdeck/taskdeck/app"
)

const (
	callbackHost = "oauth"
	callbackPath = "/callback"
)

// Listener handles custom-URL-scheme activations. The OS (or another
// instance forwarding via IPC) delivers the raw URL; the listener validates
// it, matches it to a pending attempt by state, and drives the exchange.
//
// Callback URLs are untrusted input: anything on the machine can invoke the
// scheme. The state parameter is the sole authentication of the callback.
type Listener struct {
	registry  *Registry
	channel   *Channel
	exchanger *Exchanger
	applier   SessionApplier
}

func NewListener(registry *Registry, channel *Channel, exchanger *Exchanger, applier SessionApplier) *Listener {
	return &Listener{
		registry:  registry,
		channel:   channel,
		exchanger: exchanger,
		applier:   applier,
	}
}

// HandleURL processes one deep-link activation end to end: validate, match,
// exchange, apply, complete. Every failure path lands the matched attempt in
// exactly one terminal state; a URL that matches nothing changes nothing.
func (l *Listener) HandleURL(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != app.Scheme || u.Host != callbackHost || u.Path != callbackPath {
		return fmt.Errorf("%w: not an oauth callback URL", ErrValidation)
	}
	q := u.Query()

	state := q.Get("state")
	if state == "" {
		// malformed: reject without consulting the registry, so a garbage
		// activation cannot disturb a pending attempt
		return fmt.Errorf("%w: missing state", ErrValidation)
	}

	if errCode := q.Get("error"); errCode != "" {
		perr := &ProviderError{Code: errCode, Description: q.Get("error_description")}
		if _, ok := l.registry.Lookup(state); ok {
			_ = l.registry.Transition(state, StatusFailed, perr)
		} else {
			slog.Debug("Dropping provider error for unmatched callback", "code", errCode)
		}
		return perr
	}

	req, ok := l.registry.Lookup(state)
	if !ok {
		// unknown, expired, or already settled. The code, if any, is never
		// exchanged: a replayed or stale callback must not mint a session.
		l.channel.Publish(Message{CorrelationID: state, Kind: KindExpired, Err: ErrExpiredRequest})
		return ErrExpiredRequest
	}

	code := q.Get("code")
	if code == "" {
		verr := fmt.Errorf("%w: missing code", ErrValidation)
		_ = l.registry.Transition(state, StatusFailed, verr)
		return verr
	}

	if err := l.registry.Transition(state, StatusExchanging, nil); err != nil {
		// lost the race against expiry, cancellation, or a duplicate callback
		return ErrExpiredRequest
	}
	slog.Debug("Exchanging authorization code", "provider", req.Provider)

	session, err := l.exchanger.Exchange(ctx, req.Provider, code)
	if err != nil {
		_ = l.registry.Transition(state, StatusFailed, err)
		return err
	}
	if l.applier != nil {
		if err := l.applier.Apply(ctx, session); err != nil {
			err = fmt.Errorf("applying session: %w", err)
			_ = l.registry.Transition(state, StatusFailed, err)
			return err
		}
	}
	slog.Info("Sign-in completed", "provider", req.Provider)
	return l.registry.Transition(state, StatusCompleted, nil)
}
