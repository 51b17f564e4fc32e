package ipc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/auth"
)

type mockBridge struct {
	started   []auth.Provider
	cancelled []string
	deepLinks []string
	startErr  error
	cancelErr error
	linkErr   error
	pending   *auth.PendingAuthRequest
}

func (m *mockBridge) StartOAuth(provider auth.Provider) (string, error) {
	if m.startErr != nil {
		return "", m.startErr
	}
	m.started = append(m.started, provider)
	return "cid-123", nil
}

func (m *mockBridge) Cancel(correlationID string) error {
	if m.cancelErr != nil {
		return m.cancelErr
	}
	m.cancelled = append(m.cancelled, correlationID)
	return nil
}

func (m *mockBridge) HandleDeepLink(_ context.Context, rawURL string) error {
	if m.linkErr != nil {
		return m.linkErr
	}
	m.deepLinks = append(m.deepLinks, rawURL)
	return nil
}

func (m *mockBridge) Pending() (auth.PendingAuthRequest, bool) {
	if m.pending == nil {
		return auth.PendingAuthRequest{}, false
	}
	return *m.pending, true
}

type mockApp struct {
	email      string
	signedOut  bool
	signOutErr error
}

func (m *mockApp) SignOut(context.Context) error {
	if m.signOutErr != nil {
		return m.signOutErr
	}
	m.signedOut = true
	return nil
}

func (m *mockApp) SessionEmail() (string, bool) {
	return m.email, m.email != ""
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, &buf)
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestOAuthStartHandler(t *testing.T) {
	bridge := &mockBridge{}
	s := NewServer(bridge, &mockApp{})

	rec := doRequest(t, s, "POST", oauthStartEndpoint, startRequest{Provider: "google"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res startResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "cid-123", res.CorrelationID)
	assert.Equal(t, []auth.Provider{auth.ProviderGoogle}, bridge.started)
}

func TestOAuthStartHandlerUnsupported(t *testing.T) {
	bridge := &mockBridge{startErr: auth.ErrUnsupportedProvider}
	s := NewServer(bridge, &mockApp{})

	rec := doRequest(t, s, "POST", oauthStartEndpoint, startRequest{Provider: "myspace"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOAuthCancelHandler(t *testing.T) {
	bridge := &mockBridge{}
	s := NewServer(bridge, &mockApp{})

	rec := doRequest(t, s, "POST", oauthCancelEndpoint, cancelRequest{CorrelationID: "cid-123"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"cid-123"}, bridge.cancelled)

	bridge.cancelErr = auth.ErrExpiredRequest
	rec = doRequest(t, s, "POST", oauthCancelEndpoint, cancelRequest{CorrelationID: "stale"})
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestDeepLinkHandler(t *testing.T) {
	bridge := &mockBridge{}
	s := NewServer(bridge, &mockApp{})

	link := "taskdeck://oauth/callback?code=c&state=s"
	rec := doRequest(t, s, "POST", deepLinkEndpoint, deepLinkRequest{URL: link})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{link}, bridge.deepLinks)

	bridge.linkErr = auth.ErrValidation
	rec = doRequest(t, s, "POST", deepLinkEndpoint, deepLinkRequest{URL: "garbage"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignOutHandler(t *testing.T) {
	app := &mockApp{email: "pat@example.com"}
	s := NewServer(&mockBridge{}, app)

	rec := doRequest(t, s, "POST", signOutEndpoint, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, app.signedOut)
}

func TestStatusHandler(t *testing.T) {
	pending := &auth.PendingAuthRequest{Provider: auth.ProviderGitHub}
	s := NewServer(&mockBridge{pending: pending}, &mockApp{email: "pat@example.com"})

	rec := doRequest(t, s, "GET", statusEndpoint, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "running", st.State)
	assert.NotEmpty(t, st.Version)
	assert.True(t, st.Authenticated)
	assert.Equal(t, "pat@example.com", st.Email)
	assert.Equal(t, "github", st.PendingProvider)
}
