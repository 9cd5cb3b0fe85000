// Package dkan is the HTTP client for the DKAN metastore and importer
// endpoints: data dictionary retrieval, CSV distribution upload, dataset
// metadata updates, and remote file cleanup.
package dkan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to one DKAN site using HTTP basic auth. The base URL must be
// https because credentials ride on every request.
type Client struct {
	baseURL  *url.URL
	username string
	password string
	retries  int
	http     *http.Client
}

// Options configures a Client.
type Options struct {
	Username string
	Password string
	Timeout  time.Duration
	// Retries is how many extra attempts a failed GET gets. Writes are never
	// retried; a duplicate upload or patch is worse than a failed one.
	Retries int
}

// NewClient validates the base URL and builds a client.
func NewClient(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "https" {
		return nil, fmt.Errorf("base url must use https, got %q", baseURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL:  u,
		username: opts.Username,
		password: opts.Password,
		retries:  retries,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

// endpoint resolves a path relative to the base URL.
func (c *Client) endpoint(format string, args ...any) string {
	return c.baseURL.String() + fmt.Sprintf(format, args...)
}

// do sends a request with auth and JSON accept headers, returning the body
// on 2xx and an *HTTPError otherwise. GETs that fail on transport errors or
// 5xx responses are retried up to the configured count.
func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	req.SetBasicAuth(c.username, c.password)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		body, retryable, err := c.send(req, op)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if req.Method != http.MethodGet || !retryable || attempt >= c.retries {
			return nil, lastErr
		}
		select {
		case <-req.Context().Done():
			return nil, lastErr
		case <-time.After(time.Duration(attempt+1) * 500 * time.Millisecond):
		}
	}
}

// send performs one attempt, reporting whether a failure is worth retrying.
func (c *Client) send(req *http.Request, op string) ([]byte, bool, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("%s: read response: %w", op, err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, resp.StatusCode >= 500, newHTTPError(op, resp, body)
	}
	return body, false, nil
}

// getJSON issues a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, op, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	body, err := c.do(req, op)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: parse response: %w", op, err)
	}
	return nil
}
