package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	endpointPath   = "/json_rpc"
	defaultTimeout = 5 * time.Second
	maxBodySize    = 1 << 20
)

// Client issues control commands to one XMRig instance. It is safe for
// reuse across the process lifetime.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-call timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient creates a client for the API rooted at baseURL. The token is
// sent as a bearer credential with every call; an empty token sends none.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(baseURL, "/") + endpointPath,
		token:    token,
		http:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the full JSON-RPC URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) Pause(ctx context.Context) error {
	_, err := c.Call(ctx, MethodPause)
	return err
}

func (c *Client) Resume(ctx context.Context) error {
	_, err := c.Call(ctx, MethodResume)
	return err
}

func (c *Client) Stop(ctx context.Context) error {
	_, err := c.Call(ctx, MethodStop)
	return err
}

// Call invokes a parameterless method and returns the raw result.
// Every failure is an *Error.
func (c *Client) Call(ctx context.Context, method string) (json.RawMessage, error) {
	body, err := json.Marshal(request{
		JSONRPC: Version,
		ID:      uuid.NewString(),
		Method:  method,
	})
	if err != nil {
		return nil, &Error{Method: method, Err: errors.Wrap(err, "marshal request")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Method: method, Err: errors.Wrap(err, "build request")}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Method: method, Err: errors.Wrapf(err, "POST %s", c.endpoint)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{Method: method, Status: resp.StatusCode, Err: errors.Wrap(err, "read response")}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &Error{Method: method, Status: resp.StatusCode, Message: msg}
	}

	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &Error{Method: method, Status: resp.StatusCode, Err: errors.Wrap(err, "decode response")}
	}
	if out.Error != nil {
		return nil, &Error{Method: method, Status: resp.StatusCode, Code: out.Error.Code, Message: out.Error.Message}
	}

	return out.Result, nil
}
