package api

import (
	"errors"
	"time"
)

// ErrUnauthorized is returned for calls that require a session when none is
// present or the backend rejects the one provided.
var ErrUnauthorized = errors.New("unauthorized")

// Session is an authenticated backend session for the signed-in user.
type Session struct {
	Token     string
	ExpiresAt time.Time
	UserID    string
	Email     string
}

// SignInToken is a short-lived, single-use credential for handing a session
// from one execution context to another. The backend owns its TTL (~60s).
type SignInToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Task and Category describe the boundary contract of the task data store.
// The store itself lives in the backend; the desktop core only syncs.
type Task struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Notes      string     `json:"notes,omitempty"`
	CategoryID string     `json:"categoryId,omitempty"`
	Done       bool       `json:"done"`
	DueAt      *time.Time `json:"dueAt,omitempty"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChangeSet is a page of task/category changes since a sync point.
type ChangeSet struct {
	Tasks      []Task     `json:"tasks"`
	Categories []Category `json:"categories"`
	SyncedAt   time.Time  `json:"syncedAt"`
}
