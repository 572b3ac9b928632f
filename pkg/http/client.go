// Package http is the small HTTP layer shared by the registry, verified-list and bundle
// components: per-request timeouts, a fixed user agent and status classification.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/glorpus-work/hbpm/pkg/auth"
	"github.com/glorpus-work/hbpm/pkg/errors"
)

// DefaultUserAgent is sent with every request.
const DefaultUserAgent = "hbpm/1.0"

// maxBodySize caps response bodies read into memory.
const maxBodySize = 32 << 20

// Client performs requests with a hard per-request timeout measured from send.
type Client struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	auth      auth.Authenticator
}

// NewClient creates a client. A zero timeout disables the per-request deadline.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		client:    &http.Client{},
		timeout:   timeout,
		userAgent: DefaultUserAgent,
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

// WithAuth applies a to every outgoing request.
func (c *Client) WithAuth(a auth.Authenticator) *Client {
	c.auth = a
	return c
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// GetBytes performs a GET and returns the body of a 2xx response.
// A 404 maps to errors.ErrNotFound; any other non-2xx status to errors.ErrRegistryStatus.
func (c *Client) GetBytes(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request to %s failed", rawURL)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := CheckStatus(resp.StatusCode, rawURL); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	return data, nil
}

// GetJSON performs a GET and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, out any) error {
	data, err := c.GetBytes(ctx, rawURL, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to decode response from %s", rawURL)
	}
	return nil
}

// Head performs a HEAD request and returns the status code.
func (c *Client) Head(ctx context.Context, rawURL string) (int, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, http.NoBody)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "request to %s failed", rawURL)
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

// Do sends req with the client's user agent and credentials. The caller owns the timeout
// and the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	if c.auth != nil {
		if err := c.auth.Apply(req); err != nil {
			return nil, errors.Wrap(err, "failed to apply credentials")
		}
	}
	return c.client.Do(req)
}

// CheckStatus classifies an HTTP status code.
func CheckStatus(code int, rawURL string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("%s: %w", rawURL, errors.ErrNotFound)
	default:
		return fmt.Errorf("%s: HTTP %d: %w", rawURL, code, errors.ErrRegistryStatus)
	}
}
