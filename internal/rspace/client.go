// Package rspace is a typed client for the RSpace ELN and Inventory REST APIs.
//
// The client is a thin pass-through: one exported method per remote
// operation, no caching and no retries. Every method takes a context so the
// caller's deadline and cancellation reach the HTTP request. A Client is
// safe for concurrent use once constructed.
package rspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API roots, relative to the server URL.
const (
	ELNPrefix       = "/api/v1"
	InventoryPrefix = "/api/inventory/v1"
)

// maxErrorBody caps how much of a failed response is read for the error message.
const maxErrorBody = 1 << 20

// Client talks to a single RSpace server on behalf of one API key.
type Client struct {
	baseURL   string
	apiKey    string
	http      *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets an overall per-request timeout on the underlying client.
// Callers usually prefer a context deadline; this is a backstop.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New returns a client for the server at baseURL authenticating with apiKey.
// No request is made until a method is called.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		apiKey:    apiKey,
		http:      &http.Client{},
		userAgent: "rspace-mcp",
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the server URL this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// newRequest builds an authenticated request. body is JSON encoded when non-nil.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("rspace: encode %s %s: %w", method, path, err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, fmt.Errorf("rspace: build %s %s: %w", method, path, err)
	}
	req.Header.Set("apiKey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// send performs the request and converts non-2xx responses to *APIError.
// The caller owns the returned body.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rspace: %s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, newAPIError(req.Method, req.URL.Path, resp.StatusCode, data)
	}
	return resp, nil
}

// do performs a JSON request and decodes the response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("rspace: decode %s %s: %w", method, path, err)
	}
	return nil
}

// stream performs a GET and copies the response body to w.
func (c *Client) stream(ctx context.Context, path string, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "*/*")
	resp, err := c.send(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("rspace: read %s: %w", path, err)
	}
	return n, nil
}

func eln(format string, a ...any) string {
	return ELNPrefix + fmt.Sprintf(format, a...)
}

func inv(format string, a ...any) string {
	return InventoryPrefix + fmt.Sprintf(format, a...)
}
