// Package backend holds the request header names shared by every client that
// talks to the TaskDeck backend services.
package backend

const (
	// Required common headers to send to the backend.
	AppNameHeader  = "X-Taskdeck-App"
	VersionHeader  = "X-Taskdeck-Version"
	PlatformHeader = "X-Taskdeck-Platform"
	DeviceIDHeader = "X-Taskdeck-Device-Id"
	LocaleHeader   = "Accept-Language"

	// SessionHeader carries the bearer session token on authenticated calls.
	SessionHeader = "Authorization"
)
