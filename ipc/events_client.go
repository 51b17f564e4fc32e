package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskdeck/taskdeck/common"
	"github.com/taskdeck/taskdeck/events"
)

// StartAuthEventStream connects to the daemon's event stream and re-emits
// received [AuthEvent] events on the local bus until the context is
// cancelled. If waitForConnect is true, it polls in a background goroutine
// until the daemon is reachable; otherwise it streams in the calling
// goroutine and returns when the stream ends.
func StartAuthEventStream(ctx context.Context, waitForConnect bool) error {
	if !waitForConnect {
		return startStream(ctx)
	}
	go func() {
		boff := common.NewBackoff(5 * time.Second)
		for ctx.Err() == nil {
			boff.Wait(ctx)
			listening, err := tryDial(ctx)
			if err != nil {
				slog.Error("auth event stream: dialing daemon", "error", err)
				return
			}
			if !listening {
				continue // the daemon is not up yet
			}
			if err := startStream(ctx); err != nil && ctx.Err() == nil {
				slog.Warn("auth event stream disconnected", "error", err)
			}
			return
		}
	}()
	return nil
}

func startStream(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", apiURL+authEventsEndpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	client := &http.Client{
		Transport: &http.Transport{
			DialContext: dialContext,
		},
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var evt AuthEvent
		if err := json.Unmarshal([]byte(line), &evt); err != nil {
			continue
		}
		events.Emit(evt)
	}
	return scanner.Err()
}
