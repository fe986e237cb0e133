package clients

import (
	"context"
	"net/url"
	"time"
)

// NotebookClient controls a per-user compute server on the notebook
// orchestration API.
type NotebookClient interface {
	Start(ctx context.Context, userKey, profile string) (*NotebookStatus, error)
	Stop(ctx context.Context, userKey string) error
	Status(ctx context.Context, userKey string) (*NotebookStatus, error)
}

type NotebookStatus struct {
	UserKey string `json:"userKey"`
	State   string `json:"state"`
	URL     string `json:"url,omitempty"`
	Profile string `json:"profile,omitempty"`
}

type notebookClient struct {
	httpClient
}

func NewNotebookClient(baseURL string, timeout time.Duration) NotebookClient {
	return &notebookClient{newHTTPClient("notebook", baseURL, timeout)}
}

type startNotebookRequest struct {
	Profile string `json:"profile"`
}

func (c *notebookClient) Start(ctx context.Context, userKey, profile string) (*NotebookStatus, error) {
	var status NotebookStatus
	err := c.postJSON(ctx, "/servers/"+url.PathEscape(userKey), &startNotebookRequest{Profile: profile}, &status)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *notebookClient) Stop(ctx context.Context, userKey string) error {
	return c.deleteJSON(ctx, "/servers/"+url.PathEscape(userKey))
}

func (c *notebookClient) Status(ctx context.Context, userKey string) (*NotebookStatus, error) {
	var status NotebookStatus
	if err := c.getJSON(ctx, "/servers/"+url.PathEscape(userKey), &status); err != nil {
		return nil, err
	}
	return &status, nil
}
