// Package clients holds typed HTTP clients for the collaborating services
// the gateway proxies: catalogue, payment provider, ratings and notebook.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

const getRetryAttempts = 3

// remoteError is returned for any non-2xx upstream response.
type remoteError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *remoteError) Error() string {
	return fmt.Sprintf("%s service returned %d: %s", e.Service, e.StatusCode, e.Body)
}

type httpClient struct {
	service string
	baseURL string
	client  *http.Client
}

func newHTTPClient(service, baseURL string, timeout time.Duration) httpClient {
	return httpClient{
		service: service,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// getJSON performs a GET and decodes the response into out. GETs are
// idempotent, so transient failures and 5xx responses are retried with
// exponential backoff.
func (c *httpClient) getJSON(ctx context.Context, path string, out any) error {
	backoff := retry.WithMaxRetries(getRetryAttempts, retry.NewExponential(200*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.doJSON(ctx, http.MethodGet, path, nil, out)

		var re *remoteError
		if errors.As(err, &re) && re.StatusCode < 500 {
			return err
		}
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (c *httpClient) postJSON(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, in, out)
}

func (c *httpClient) deleteJSON(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (c *httpClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s service: %w", c.service, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", c.service, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return &remoteError{Service: c.service, StatusCode: resp.StatusCode, Body: "not found"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &remoteError{Service: c.service, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding %s response: %w", c.service, err)
		}
	}
	return nil
}
