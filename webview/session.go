// Package webview manages the session state of the embedded web UI. The UI
// process renders the hosted web app; it picks its session up from the shared
// settings file, so "applying" a session here means persisting it where the
// UI will find it and announcing the change.
package webview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taskdeck/taskdeck/api"
	"github.com/taskdeck/taskdeck/common/settings"
	"github.com/taskdeck/taskdeck/events"
)

// SessionEvent announces a sign-in state change on the process-wide bus.
type SessionEvent struct {
	Authenticated bool
	Email         string
}

// Applier installs exchanged sessions for the embedded UI. It implements
// auth.SessionApplier.
type Applier struct {
	mu        sync.Mutex
	lastToken string
}

func NewApplier() *Applier {
	return &Applier{}
}

// Apply persists the session and announces it. Applying the same session
// twice is a no-op, so a duplicate delivery cannot thrash the UI.
func (a *Applier) Apply(_ context.Context, session *api.Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if session.Token == a.lastToken {
		slog.Debug("Session already applied")
		return nil
	}
	if err := persistSession(session); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	a.lastToken = session.Token
	slog.Info("Session applied", "email", session.Email)
	events.Emit(SessionEvent{Authenticated: true, Email: session.Email})
	return nil
}

// Clear removes the persisted session on sign-out.
func (a *Applier) Clear(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := settings.Delete(
		settings.SessionTokenKey,
		settings.SessionExpiry,
		settings.EmailKey,
		settings.UserIDKey,
	); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	a.lastToken = ""
	events.Emit(SessionEvent{Authenticated: false})
	return nil
}

func persistSession(session *api.Session) error {
	if err := settings.Set(settings.SessionTokenKey, session.Token); err != nil {
		return err
	}
	if err := settings.Set(settings.SessionExpiry, session.ExpiresAt.Format(time.RFC3339)); err != nil {
		return err
	}
	if err := settings.Set(settings.EmailKey, session.Email); err != nil {
		return err
	}
	return settings.Set(settings.UserIDKey, session.UserID)
}

// CurrentSession rebuilds the persisted session, if any. Used at startup so
// the UI does not force a fresh sign-in on every launch.
func CurrentSession() (*api.Session, bool) {
	token := settings.GetString(settings.SessionTokenKey)
	if token == "" {
		return nil, false
	}
	return &api.Session{
		Token:     token,
		ExpiresAt: settings.GetTime(settings.SessionExpiry, time.RFC3339),
		UserID:    settings.GetString(settings.UserIDKey),
		Email:     settings.GetString(settings.EmailKey),
	}, true
}
