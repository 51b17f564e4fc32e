package auth

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// Launcher registers an attempt and hands the user off to the system browser.
// Opening the browser is fire-and-forget: the launcher never learns whether
// the user completed, abandoned, or closed the page. Resolution comes back
// only through the deep-link callback or the expiry timer.
type Launcher struct {
	cfg      Config
	registry *Registry
	// open is replaceable in tests.
	open func(url string) error
}

func NewLauncher(cfg Config, registry *Registry) *Launcher {
	return &Launcher{cfg: cfg, registry: registry, open: openBrowser}
}

// Launch creates a pending attempt, builds the authorization URL with the
// attempt's correlation id as the state parameter, and opens it in the
// default browser. It returns the correlation id as soon as the browser has
// been asked to open. If the OS refuses, the attempt is failed immediately
// with ErrLaunch.
func (l *Launcher) Launch(provider Provider) (string, error) {
	if !provider.Supported() {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
	if err := l.cfg.validate(); err != nil {
		return "", err
	}
	req, err := l.registry.Create(provider)
	if err != nil {
		return "", err
	}
	authURL := l.cfg.authCodeURL(provider, req.CorrelationID)
	slog.Debug("Opening system browser for sign-in", "provider", provider)
	if err := l.open(authURL); err != nil {
		launchErr := fmt.Errorf("%w: %v", ErrLaunch, err)
		_ = l.registry.Transition(req.CorrelationID, StatusFailed, launchErr)
		return "", launchErr
	}
	return req.CorrelationID, nil
}

// openBrowser opens the URL in the user's default browser. Start, not Run:
// the browser process outlives us and we must not block on it.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
