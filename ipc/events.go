package ipc

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/taskdeck/taskdeck/auth"
	"github.com/taskdeck/taskdeck/events"
)

// AuthEvent is the wire form of a terminal authentication event. The error is
// flattened to a string: the UI only displays it.
type AuthEvent struct {
	CorrelationID string `json:"correlationId"`
	Kind          string `json:"kind"`
	Error         string `json:"error,omitempty"`
}

func wireEvent(msg auth.Message) AuthEvent {
	evt := AuthEvent{
		CorrelationID: msg.CorrelationID,
		Kind:          string(msg.Kind),
	}
	if msg.Err != nil {
		evt.Error = msg.Err.Error()
	}
	return evt
}

// authEventsHandler streams terminal authentication events to the client as
// newline-delimited JSON until the client disconnects.
func (s *Server) authEventsHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")

	ch := make(chan AuthEvent, 8)
	sub := events.Subscribe(func(msg auth.Message) {
		select {
		case ch <- wireEvent(msg):
		default: // drop if client is slow
		}
	})
	defer sub.Unsubscribe()

	// Send the headers right away. Once the client has them the subscription
	// is live, so no event emitted after connect can be missed.
	flusher.Flush()

	for {
		select {
		case evt := <-ch:
			buf, err := json.Marshal(evt)
			if err != nil {
				slog.Error("failed to marshal event", "error", err)
				continue
			}
			fmt.Fprintf(w, "%s\r\n", buf)
			flusher.Flush()
		case <-r.Context().Done():
			slog.Debug("event stream client disconnected")
			return
		}
	}
}
