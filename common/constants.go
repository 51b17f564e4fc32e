package common

import "time"

const (
	// Default backend endpoints. Self-hosted deployments override these via
	// the TASKDECK_API_URL / TASKDECK_WEB_URL environment variables.
	APIBaseURL = "https://api.taskdeck.io/v1"
	WebBaseURL = "https://app.taskdeck.io"

	DefaultHTTPTimeout = 60 * time.Second
)
