// Package auth implements the desktop authentication bridge: browser-handoff
// OAuth sign-in with a custom-URL-scheme callback. The embedded web view
// cannot complete provider sign-in itself, so the bridge opens the system
// browser, correlates the eventual deep-link callback to the attempt that
// started it, exchanges the one-time code for a session, and installs that
// session for the UI.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/taskdeck/taskdeck/api"
)

// Bridge wires the registry, launcher, listener, exchanger, and event channel
// together. It is the surface the IPC server and the desktop shell call into.
type Bridge struct {
	cfg       Config
	registry  *Registry
	channel   *Channel
	launcher  *Launcher
	exchanger *Exchanger
	listener  *Listener
	initiator *Initiator

	mu       sync.Mutex
	attempts map[string]*Attempt
}

// NewBridge validates cfg and assembles the bridge. Missing required
// configuration fails fast with ErrConfiguration rather than surfacing later
// as a broken browser handoff.
func NewBridge(cfg Config, identity api.IdentityClient, applier SessionApplier) (*Bridge, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	channel := NewChannel(cfg.Grace)
	registry := NewRegistry(cfg.TTL, channel)
	launcher := NewLauncher(cfg, registry)
	exchanger := NewExchanger(cfg, identity)
	return &Bridge{
		cfg:       cfg,
		registry:  registry,
		channel:   channel,
		launcher:  launcher,
		exchanger: exchanger,
		listener:  NewListener(registry, channel, exchanger, applier),
		initiator: NewInitiator(launcher, registry, channel, cfg.Timeout),
		attempts:  make(map[string]*Attempt),
	}, nil
}

// StartOAuth begins a sign-in attempt for the provider and returns its
// correlation id. The outcome is delivered asynchronously through the event
// channel; callers that want to block can subscribe before calling.
func (b *Bridge) StartOAuth(provider Provider) (string, error) {
	attempt, err := b.initiator.Start(provider)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	b.attempts[attempt.CorrelationID] = attempt
	b.mu.Unlock()

	go func() {
		err := attempt.Wait(context.Background())
		switch {
		case err == nil:
			slog.Info("Sign-in attempt succeeded", "provider", provider)
		case errors.Is(err, ErrCancelled):
			slog.Debug("Sign-in attempt cancelled", "provider", provider)
		default:
			slog.Warn("Sign-in attempt failed", "provider", provider, "error", err)
		}
		b.mu.Lock()
		delete(b.attempts, attempt.CorrelationID)
		b.mu.Unlock()
	}()
	return attempt.CorrelationID, nil
}

// Cancel aborts the attempt with the given correlation id. Unknown ids are
// reported as expired, same as everywhere else.
func (b *Bridge) Cancel(correlationID string) error {
	b.mu.Lock()
	attempt, ok := b.attempts[correlationID]
	b.mu.Unlock()
	if !ok {
		return ErrExpiredRequest
	}
	attempt.Cancel()
	return nil
}

// HandleDeepLink forwards a custom-URL-scheme activation to the listener.
func (b *Bridge) HandleDeepLink(ctx context.Context, rawURL string) error {
	return b.listener.HandleURL(ctx, rawURL)
}

// Pending reports the outstanding attempt, if any.
func (b *Bridge) Pending() (PendingAuthRequest, bool) {
	return b.registry.Pending()
}
