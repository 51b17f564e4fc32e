package ipc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/auth"
	"github.com/taskdeck/taskdeck/events"
)

func TestAuthEventsHandler(t *testing.T) {
	s := NewServer(&mockBridge{}, &mockApp{})
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+authEventsEndpoint, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))

	// the handler flushes the headers only after subscribing, so everything
	// emitted from here on reaches the stream
	scanner := bufio.NewScanner(resp.Body)
	readEvent := func() AuthEvent {
		require.True(t, scanner.Scan(), "stream ended early: %v", scanner.Err())
		var evt AuthEvent
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(scanner.Bytes()), &evt))
		return evt
	}

	events.Emit(auth.Message{CorrelationID: "attempt-1", Kind: auth.KindSuccess})
	assert.Equal(t, AuthEvent{CorrelationID: "attempt-1", Kind: "success"}, readEvent())

	events.Emit(auth.Message{CorrelationID: "attempt-2", Kind: auth.KindError, Err: errors.New("denied")})
	assert.Equal(t, AuthEvent{CorrelationID: "attempt-2", Kind: "error", Error: "denied"}, readEvent())

	cancel()
	assert.False(t, scanner.Scan(), "stream should end after client disconnect")
}
