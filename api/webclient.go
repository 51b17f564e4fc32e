package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"moul.io/http2curl"

	"github.com/taskdeck/taskdeck/app"
	"github.com/taskdeck/taskdeck/backend"
	"github.com/taskdeck/taskdeck/internal"
)

type webClient struct {
	client *resty.Client
	source SessionSource
}

func newWebClient(httpClient *http.Client, baseURL string, source SessionSource) *webClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	client := resty.NewWithClient(httpClient)
	if baseURL != "" {
		client.SetBaseURL(baseURL)
	}
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")

	wc := &webClient{client: client, source: source}
	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		req.Header.Set(backend.AppNameHeader, app.Name)
		req.Header.Set(backend.VersionHeader, app.Version)
		req.Header.Set(backend.PlatformHeader, app.Platform)
		if source != nil {
			req.Header.Set(backend.DeviceIDHeader, source.DeviceID())
			if locale := source.Locale(); locale != "" {
				req.Header.Set(backend.LocaleHeader, locale)
			}
			if token := source.SessionToken(); token != "" {
				req.Header.Set(backend.SessionHeader, "Bearer "+token)
			}
		}
		return nil
	})
	return wc
}

func (wc *webClient) NewRequest(queryParams, headers map[string]string, body any) *resty.Request {
	return wc.client.NewRequest().SetQueryParams(queryParams).SetHeaders(headers).SetBody(body)
}

func (wc *webClient) Get(ctx context.Context, path string, req *resty.Request, res any) error {
	return wc.send(ctx, resty.MethodGet, path, req, res)
}

func (wc *webClient) Post(ctx context.Context, path string, req *resty.Request, res any) error {
	return wc.send(ctx, resty.MethodPost, path, req, res)
}

func (wc *webClient) send(ctx context.Context, method, path string, req *resty.Request, res any) error {
	if req == nil {
		req = wc.client.NewRequest()
	}
	req.SetContext(ctx)
	if res != nil {
		req.SetResult(res)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	wc.traceRequest(ctx, req)

	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		slog.Debug("error response", "status", resp.StatusCode(), "path", path)
		return fmt.Errorf("unexpected response %d: %s", resp.StatusCode(), string(resp.Body()))
	}
}

// traceRequest dumps the request as a curl command at trace level. The
// session token must never reach the logs, so it is redacted first.
func (wc *webClient) traceRequest(ctx context.Context, req *resty.Request) {
	if !slog.Default().Enabled(ctx, internal.LevelTrace) {
		return
	}
	command, err := http2curl.GetCurlCommand(req.RawRequest)
	if err != nil {
		return
	}
	cmd := command.String()
	if wc.source != nil {
		if token := wc.source.SessionToken(); token != "" {
			cmd = strings.ReplaceAll(cmd, token, "[redacted]")
		}
	}
	slog.Log(ctx, internal.LevelTrace, "api request", "curl", cmd)
}
