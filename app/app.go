package app

import "runtime"

const (
	Name = "taskdeck"

	// Scheme is the custom URL scheme the desktop shell registers with the OS.
	// Deep-link callbacks arrive as taskdeck://oauth/callback?code=...&state=...
	Scheme = "taskdeck"

	Version = "2.4.1"

	Platform = runtime.GOOS

	LogFileName = "taskdeck.log"
)
