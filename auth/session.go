package auth

import (
	"context"

	"github.com/taskdeck/taskdeck/api"
)

// SessionApplier installs an exchanged session into the app's execution
// context, typically the embedded web view's storage. Apply must be
// idempotent: the bridge may hand it the same session more than once.
type SessionApplier interface {
	Apply(ctx context.Context, session *api.Session) error
}
