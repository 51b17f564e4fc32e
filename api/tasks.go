package api

import (
	"context"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// TaskSyncClient pulls task and category changes from the backend. Reads are
// idempotent, so unlike the identity calls they retry on transient failures.
type TaskSyncClient struct {
	wc *webClient
}

func newTaskSyncClient(baseURL string, source SessionSource) *TaskSyncClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil
	return &TaskSyncClient{
		wc: newWebClient(rc.StandardClient(), baseURL, source),
	}
}

// Changes returns tasks and categories modified since the given sync point.
// A zero since fetches everything.
func (t *TaskSyncClient) Changes(ctx context.Context, since time.Time) (*ChangeSet, error) {
	query := map[string]string{}
	if !since.IsZero() {
		query["since"] = since.UTC().Format(time.RFC3339)
	}
	var resp ChangeSet
	req := t.wc.NewRequest(query, nil, nil)
	if err := t.wc.Get(ctx, "/sync/changes", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
