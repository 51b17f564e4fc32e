package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedProvider is returned when a sign-in is requested for a
	// provider outside the supported set.
	ErrUnsupportedProvider = errors.New("unsupported identity provider")
	// ErrLaunch is returned when the OS refuses to open the system browser.
	// This is distinct from any later callback failure.
	ErrLaunch = errors.New("could not open system browser")
	// ErrValidation is returned for malformed callbacks (missing code or state).
	ErrValidation = errors.New("malformed callback")
	// ErrExpiredRequest is returned for callbacks whose correlation id is
	// unknown, expired, or already terminal.
	ErrExpiredRequest = errors.New("authentication request expired")
	// ErrNetwork is returned when the exchange call to the identity service fails.
	ErrNetwork = errors.New("identity service unreachable")
	// ErrCancelled is returned when the attempt was cancelled before completing.
	ErrCancelled = errors.New("authentication cancelled")
	// ErrConfiguration is returned when a required URL or client id is
	// missing. It is fatal: the flow does not start at all.
	ErrConfiguration = errors.New("missing required configuration")
)

// ProviderError carries a failure reported by the identity provider itself,
// such as the user denying consent.
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("provider error: %s", e.Code)
	}
	return fmt.Sprintf("provider error: %s (%s)", e.Code, e.Description)
}
