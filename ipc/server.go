// Package ipc implements the IPC surface between the TaskDeck daemon and the
// UI process. It provides HTTP endpoints over a Unix domain socket (named
// pipe on Windows) for starting and cancelling sign-in attempts, forwarding
// deep-link activations from a second instance, signing out, and streaming
// authentication events.
package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/app"
	"github.com/taskdeck/taskdeck/auth"
)

var ErrIPCNotRunning = errors.New("IPC not running")

// Bridge is the slice of the authentication bridge the IPC server exposes.
type Bridge interface {
	StartOAuth(provider auth.Provider) (string, error)
	Cancel(correlationID string) error
	HandleDeepLink(ctx context.Context, rawURL string) error
	Pending() (auth.PendingAuthRequest, bool)
}

// App supplies the non-bridge operations the IPC surface needs from the host
// application.
type App interface {
	SignOut(ctx context.Context) error
	// SessionEmail returns the signed-in account, if any.
	SessionEmail() (string, bool)
}

// Server is the daemon side of the IPC surface.
type Server struct {
	svr    *http.Server
	bridge Bridge
	app    App
	router chi.Router
}

// NewServer creates a new Server around the given bridge and app.
func NewServer(bridge Bridge, app App) *Server {
	s := &Server{
		bridge: bridge,
		app:    app,
		router: chi.NewMux(),
	}
	s.router.Use(log, tracer)
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.router.Get(statusEndpoint, s.statusHandler)
	s.router.Get(authEventsEndpoint, s.authEventsHandler)
	s.router.Post(oauthStartEndpoint, s.oauthStartHandler)
	s.router.Post(oauthCancelEndpoint, s.oauthCancelHandler)
	s.router.Post(deepLinkEndpoint, s.deepLinkHandler)
	s.router.Post(signOutEndpoint, s.signOutHandler)
	return s
}

// Start starts the IPC server on the platform transport.
func (s *Server) Start() error {
	l, err := listen()
	if err != nil {
		return fmt.Errorf("IPC server: listen: %w", err)
	}
	svr := &http.Server{
		Handler:     s.router,
		ReadTimeout: time.Second * 5,
		// no WriteTimeout: the event stream endpoint is long-lived
	}
	s.svr = svr
	go func() {
		slog.Info("IPC server started", "address", l.Addr().String())
		err := svr.Serve(l)
		if err != nil && err != http.ErrServerClosed {
			slog.Error("IPC server", "error", err)
		}
	}()
	return nil
}

// Close shuts down the IPC server.
func (s *Server) Close() error {
	slog.Info("Closing IPC server")
	if s.svr == nil {
		return nil
	}
	return s.svr.Close()
}

type startRequest struct {
	Provider string `json:"provider"`
}

type startResponse struct {
	CorrelationID string `json:"correlationId"`
}

type cancelRequest struct {
	CorrelationID string `json:"correlationId"`
}

type deepLinkRequest struct {
	URL string `json:"url"`
}

type Status struct {
	State           string `json:"state"`
	Version         string `json:"version"`
	Authenticated   bool   `json:"authenticated"`
	Email           string `json:"email,omitempty"`
	PendingProvider string `json:"pendingProvider,omitempty"`
}

func (s *Server) oauthStartHandler(w http.ResponseWriter, r *http.Request) {
	var p startRequest
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cid, err := s.bridge.StartOAuth(auth.Provider(p.Provider))
	if err != nil {
		http.Error(w, err.Error(), authErrorStatus(err))
		return
	}
	writeJSON(w, startResponse{CorrelationID: cid})
}

func (s *Server) oauthCancelHandler(w http.ResponseWriter, r *http.Request) {
	var p cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.bridge.Cancel(p.CorrelationID); err != nil {
		http.Error(w, err.Error(), authErrorStatus(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) deepLinkHandler(w http.ResponseWriter, r *http.Request) {
	var p deepLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// the outcome also flows through the event stream; the HTTP status here
	// is for the forwarding instance, which just logs it
	if err := s.bridge.HandleDeepLink(r.Context(), p.URL); err != nil {
		http.Error(w, err.Error(), authErrorStatus(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) signOutHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.app.SignOut(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	st := Status{State: "running", Version: app.Version}
	if email, ok := s.app.SessionEmail(); ok {
		st.Authenticated = true
		st.Email = email
	}
	if pending, ok := s.bridge.Pending(); ok {
		st.PendingProvider = pending.Provider.String()
	}
	writeJSON(w, st)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// authErrorStatus maps bridge errors onto HTTP statuses for the IPC wire.
func authErrorStatus(err error) int {
	var perr *auth.ProviderError
	switch {
	case errors.Is(err, auth.ErrUnsupportedProvider),
		errors.Is(err, auth.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrExpiredRequest):
		return http.StatusGone
	case errors.As(err, &perr):
		return http.StatusConflict
	case errors.Is(err, auth.ErrLaunch),
		errors.Is(err, auth.ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
