// Package taskdeck is the desktop core of the TaskDeck client. It wires the
// authentication bridge, the backend API clients, the embedded web view's
// session state, and the IPC surface the UI process talks to. The UI renders
// the hosted web app; everything that cannot happen inside the web view,
// browser-handoff sign-in above all, happens here.
package taskdeck

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/Xuanwo/go-locale"

	"github.com/taskdeck/taskdeck/api"
	"github.com/taskdeck/taskdeck/auth"
	"github.com/taskdeck/taskdeck/common"
	"github.com/taskdeck/taskdeck/common/deviceid"
	"github.com/taskdeck/taskdeck/common/env"
	"github.com/taskdeck/taskdeck/common/settings"
	"github.com/taskdeck/taskdeck/ipc"
	"github.com/taskdeck/taskdeck/traces"
	"github.com/taskdeck/taskdeck/webview"
)

// ClientID identifies the desktop client to the identity service.
const ClientID = "taskdeck-desktop"

// TaskDeck is the assembled desktop core.
type TaskDeck struct {
	client    *api.Client
	bridge    *auth.Bridge
	applier   *webview.Applier
	ipcServer *ipc.Server

	shutdownFuncs []func(context.Context) error
	closeOnce     sync.Once
	stopChan      chan struct{}
}

type Options struct {
	DataDir  string
	LogDir   string
	Locale   string
	LogLevel string
}

// New builds the desktop core. opts fields may be empty; platform defaults
// are used.
func New(opts Options) (*TaskDeck, error) {
	if opts.Locale == "" {
		// Prefer the locale from the frontend; fall back to the system locale.
		if tag, err := locale.Detect(); err != nil {
			opts.Locale = "en-US"
		} else {
			opts.Locale = tag.String()
		}
	}

	if err := common.Init(opts.DataDir, opts.LogDir, opts.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	dataDir := common.DataPath()
	if err := settings.InitSettings(dataDir); err != nil {
		return nil, err
	}
	if err := settings.Set(settings.LocaleKey, opts.Locale); err != nil {
		slog.Warn("Failed to persist locale", "error", err)
	}
	deviceID := deviceid.Get(dataDir)
	if err := settings.Set(settings.DeviceIDKey, deviceID); err != nil {
		slog.Warn("Failed to persist device ID", "error", err)
	}

	apiURL := common.APIBaseURL
	if v, ok := env.Get[string](env.APIURL); ok {
		apiURL = v
	}
	webURL := common.WebBaseURL
	if v, ok := env.Get[string](env.WebURL); ok {
		webURL = v
	}

	httpClient := &http.Client{
		Transport: traces.NewRoundTripper(nil),
		Timeout:   common.DefaultHTTPTimeout,
	}
	source := &sessionSource{deviceID: deviceID, locale: opts.Locale}
	client := api.NewClient(httpClient, apiURL, source)

	overrides, err := auth.LoadProviderOverrides(dataDir)
	if err != nil {
		return nil, fmt.Errorf("loading provider overrides: %w", err)
	}
	applier := webview.NewApplier()
	bridge, err := auth.NewBridge(auth.Config{
		StartURL:   webURL + "/oauth/start",
		TokenURL:   apiURL + "/oauth/token",
		ClientID:   ClientID,
		Overrides:  overrides,
		HTTPClient: httpClient,
	}, client.Identity(), applier)
	if err != nil {
		return nil, err
	}

	t := &TaskDeck{
		client:   client,
		bridge:   bridge,
		applier:  applier,
		stopChan: make(chan struct{}),
	}
	t.ipcServer = ipc.NewServer(bridge, t)
	t.addShutdownFunc(func(context.Context) error {
		return t.ipcServer.Close()
	})
	return t, nil
}

// StartIPC starts the IPC server so the UI process can drive sign-in.
func (t *TaskDeck) StartIPC() error {
	return t.ipcServer.Start()
}

// Bridge exposes the authentication bridge for in-process callers such as the
// desktop shell's URL-scheme handler.
func (t *TaskDeck) Bridge() *auth.Bridge {
	return t.bridge
}

// Client returns the backend API client set.
func (t *TaskDeck) Client() *api.Client {
	return t.client
}

// SignOut invalidates the backend session and clears local session state. A
// backend failure does not block the local sign-out.
func (t *TaskDeck) SignOut(ctx context.Context) error {
	if err := t.client.Identity().SignOut(ctx); err != nil {
		slog.Warn("Backend sign-out failed, clearing local session anyway", "error", err)
	}
	return t.applier.Clear(ctx)
}

// SessionEmail reports the signed-in account, if any.
func (t *TaskDeck) SessionEmail() (string, bool) {
	session, ok := webview.CurrentSession()
	if !ok {
		return "", false
	}
	return session.Email, true
}

func (t *TaskDeck) addShutdownFunc(fns ...func(context.Context) error) {
	for _, fn := range fns {
		if fn != nil {
			t.shutdownFuncs = append(t.shutdownFuncs, fn)
		}
	}
}

// Close shuts the core down. Safe to call more than once.
func (t *TaskDeck) Close() {
	t.closeOnce.Do(func() {
		slog.Debug("Closing TaskDeck")
		close(t.stopChan)
		for _, shutdown := range t.shutdownFuncs {
			if err := shutdown(context.Background()); err != nil {
				slog.Error("Failed to shutdown", "error", err)
			}
		}
	})
	<-t.stopChan
}

// sessionSource feeds request identity to the API clients. The session token
// is read from settings on every request, so a sign-in that completes while
// the app is running takes effect immediately.
type sessionSource struct {
	deviceID string
	locale   string
}

func (s *sessionSource) DeviceID() string { return s.deviceID }
func (s *sessionSource) Locale() string   { return s.locale }
func (s *sessionSource) SessionToken() string {
	return settings.GetString(settings.SessionTokenKey)
}
