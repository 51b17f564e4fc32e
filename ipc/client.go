package ipc

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/taskdeck/taskdeck/auth"
)

// Client-side helpers for the UI process and for secondary instances
// forwarding deep links. Each call goes over the platform IPC transport.

// StartOAuth asks the daemon to begin a sign-in attempt and returns its
// correlation id.
func StartOAuth(ctx context.Context, provider auth.Provider) (string, error) {
	res, err := sendRequest[startResponse](ctx, "POST", oauthStartEndpoint, startRequest{Provider: provider.String()})
	if err != nil {
		return "", mapStatusError(err)
	}
	return res.CorrelationID, nil
}

// CancelOAuth asks the daemon to abort the attempt.
func CancelOAuth(ctx context.Context, correlationID string) error {
	_, err := sendRequest[empty](ctx, "POST", oauthCancelEndpoint, cancelRequest{CorrelationID: correlationID})
	return mapStatusError(err)
}

// ForwardDeepLink hands a custom-URL-scheme activation received by this
// instance to the running daemon. Used by second instances: the OS delivers
// the deep link to a fresh process, which forwards and exits.
func ForwardDeepLink(ctx context.Context, rawURL string) error {
	_, err := sendRequest[empty](ctx, "POST", deepLinkEndpoint, deepLinkRequest{URL: rawURL})
	return mapStatusError(err)
}

// SignOut asks the daemon to clear the session.
func SignOut(ctx context.Context) error {
	_, err := sendRequest[empty](ctx, "POST", signOutEndpoint, nil)
	return mapStatusError(err)
}

// GetStatus reports the daemon state, or ErrIPCNotRunning when no daemon is
// listening.
func GetStatus(ctx context.Context) (Status, error) {
	if canDial, err := tryDial(ctx); !canDial {
		if err == nil {
			err = ErrIPCNotRunning
		}
		return Status{}, err
	}
	return sendRequest[Status](ctx, "GET", statusEndpoint, nil)
}

func tryDial(ctx context.Context) (bool, error) {
	conn, err := dialContext(ctx, "", "")
	if err == nil {
		conn.Close()
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil // the daemon is not running; not an error
	}
	return false, err
}

// mapStatusError turns IPC error responses back into the bridge sentinels the
// UI process is written against.
func mapStatusError(err error) error {
	var serr *statusError
	if !errors.As(err, &serr) {
		return err
	}
	switch serr.code {
	case http.StatusGone:
		return auth.ErrExpiredRequest
	case http.StatusBadRequest:
		return auth.ErrValidation
	default:
		return err
	}
}
