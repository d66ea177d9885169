// Package api implements the HTTP transport for the AegisGate client.
//
// The transport is deliberately thin: it maps typed requests and responses
// onto JSON over HTTP and converts failures into *APIError (non-2xx status)
// or *TransportError (no response at all). Retry policy, error taxonomy and
// workflow logic all live in the packages above it.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 30 * time.Second

// Client is the HTTP API client.
type Client struct {
	http   *resty.Client
	apiKey string
	orgID  string
}

// Option configures the API client.
type Option func(*Client)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.http.SetBaseURL(url)
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// WithOrgID sets the organization scoping header for all requests.
func WithOrgID(orgID string) Option {
	return func(c *Client) {
		c.orgID = orgID
	}
}

// WithHTTPClient replaces the underlying *http.Client (used by tests to
// point at an httptest server or install a recording RoundTripper).
// Apply it before WithBaseURL and WithTimeout: replacing the HTTP client
// resets both.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc)
	}
}

// New creates a new API client. The client performs no network I/O until the
// first request.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		http:   resty.New().SetTimeout(defaultTimeout),
		apiKey: apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetBaseURL updates the base URL for subsequent requests.
func (c *Client) SetBaseURL(url string) {
	c.http.SetBaseURL(url)
}

// SetTimeout updates the per-request timeout for subsequent requests.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.http.SetTimeout(timeout)
}

// Do issues a single HTTP request and decodes the JSON response into result
// (when non-nil). A non-2xx response is returned as *APIError carrying the
// parsed server message and raw body; a failure to obtain any response is
// returned as *TransportError.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "Bearer "+c.apiKey)
	if c.orgID != "" {
		req.SetHeader("X-Org-ID", c.orgID)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return classifyTransport(c.http.BaseURL+path, err)
	}

	if resp.StatusCode() >= 400 {
		return parseErrorResponse(resp)
	}

	if result != nil {
		if err := json.Unmarshal(resp.Body(), result); err != nil {
			return &APIError{
				StatusCode: resp.StatusCode(),
				Message:    "failed to decode response: " + err.Error(),
				Body:       resp.Body(),
			}
		}
	}

	return nil
}

func parseErrorResponse(resp *resty.Response) error {
	body := resp.Body()

	var errResp struct {
		Error     string `json:"error"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	}

	if err := json.Unmarshal(body, &errResp); err == nil {
		msg := errResp.Error
		if msg == "" {
			msg = errResp.Message
		}
		if msg != "" {
			return &APIError{
				StatusCode: resp.StatusCode(),
				Message:    msg,
				RequestID:  errResp.RequestID,
				Body:       body,
			}
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode(),
		Message:    string(body),
		Body:       body,
	}
}
