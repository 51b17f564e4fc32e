package ipc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// empty is a placeholder type for requests that do not expect a response body.
type empty struct{}

// statusError preserves the HTTP status of an error response so callers can
// map it back to a sentinel.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("received error response: %d %s", e.code, e.body)
}

// sendRequest sends an HTTP request over the IPC transport to the given
// endpoint and decodes the JSON response into T.
func sendRequest[T any](ctx context.Context, method, endpoint string, data any) (T, error) {
	buf, err := json.Marshal(data)
	var res T
	if err != nil {
		return res, fmt.Errorf("failed to marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, apiURL+endpoint, bytes.NewReader(buf))
	if err != nil {
		return res, err
	}
	client := &http.Client{
		Transport: &http.Transport{
			DialContext: dialContext,
		},
	}
	resp, err := client.Do(req)
	if err != nil {
		return res, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var body bytes.Buffer
		body.ReadFrom(resp.Body)
		return res, &statusError{code: resp.StatusCode, body: body.String()}
	}
	if _, ok := any(&res).(*empty); ok {
		return res, nil
	}

	err = json.NewDecoder(resp.Body).Decode(&res)
	if err != nil {
		return res, fmt.Errorf("failed to decode response: %w", err)
	}
	return res, nil
}
