package auth

import (
	"slices"
	"time"
)

// Status of an authentication attempt.
type Status string

const (
	StatusPending    Status = "pending"
	StatusExchanging Status = "exchanging"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusExpired    Status = "expired"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether the status ends the attempt. A request reaches
// exactly one terminal status and is then evicted from the registry.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

var validTransitions = map[Status][]Status{
	StatusPending:    {StatusExchanging, StatusFailed, StatusExpired, StatusCancelled},
	StatusExchanging: {StatusCompleted, StatusFailed, StatusExpired, StatusCancelled},
}

func (s Status) canTransition(to Status) bool {
	return slices.Contains(validTransitions[s], to)
}

// PendingAuthRequest is an in-flight browser-handoff attempt.
type PendingAuthRequest struct {
	// CorrelationID is a cryptographically random identifier, unique per
	// attempt. It doubles as the CSRF-style state parameter and as the
	// routing key for events.
	CorrelationID string
	Provider      Provider
	CreatedAt     time.Time
	ExpiresAt     time.Time
	Status        Status
}
