// Package api contains the clients for the TaskDeck backend services: the
// identity service used by the desktop authentication bridge and the task
// sync boundary used by the embedded UI.
package api

import (
	"net/http"
)

// SessionSource provides the identity attached to outgoing requests. The
// session token is read per request so a session applied mid-flight is picked
// up without rebuilding clients.
type SessionSource interface {
	DeviceID() string
	Locale() string
	SessionToken() string
}

type Client struct {
	identity IdentityClient
	tasks    *TaskSyncClient
}

// NewClient builds the backend API client set. httpClient may be nil, in
// which case a default client is used for identity calls; the task sync
// client always uses its own retrying client.
func NewClient(httpClient *http.Client, baseURL string, source SessionSource) *Client {
	return &Client{
		identity: &identityClient{wc: newWebClient(httpClient, baseURL, source)},
		tasks:    newTaskSyncClient(baseURL, source),
	}
}

func (c *Client) Identity() IdentityClient {
	return c.identity
}

func (c *Client) Tasks() *TaskSyncClient {
	return c.tasks
}
