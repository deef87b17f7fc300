// Package client talks to the reservations REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsConflict reports whether err is a 409 from the server.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict
}

// Client is a thin JSON client. Timestamps are sent and read as naive wall
// clocks in loc.
type Client struct {
	baseURL string
	http    *http.Client
	loc     *time.Location
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:8080/api.
func New(baseURL string, timeout time.Duration, loc *time.Location) *Client {
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		loc:     loc,
	}
}

// Location is the zone the client reads timestamps in.
func (c *Client) Location() *time.Location {
	return c.loc
}

// buildURL joins path segments under the base URL. Collection paths keep
// their trailing slash.
func (c *Client) buildURL(q url.Values, parts ...string) string {
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			segments = append(segments, url.PathEscape(p))
		}
	}
	u := c.baseURL + "/" + strings.Join(segments, "/")
	if len(parts) > 0 && strings.HasSuffix(parts[len(parts)-1], "/") {
		u += "/"
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// newJSONRequest marshals v to JSON (if non-nil) and returns a request with
// Content-Type set.
func (c *Client) newJSONRequest(ctx context.Context, method, u string, v any) (*http.Request, error) {
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if v != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// doAndDecode executes the request, checks the status against expected and
// decodes the body into out. A nil out discards the body.
func (c *Client) doAndDecode(req *http.Request, expected []int, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", req.Method, req.URL.Path, err)
	}

	if !slices.Contains(expected, resp.StatusCode) {
		return newAPIError(resp.StatusCode, b)
	}
	if out == nil || len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	var env model.ErrorResponse
	if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
		return &APIError{Status: status, Message: env.Error}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}

func (c *Client) get(ctx context.Context, u string, out any) error {
	req, err := c.newJSONRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.doAndDecode(req, []int{http.StatusOK}, out)
}

func (c *Client) send(ctx context.Context, method, u string, in any, expected []int, out any) error {
	req, err := c.newJSONRequest(ctx, method, u, in)
	if err != nil {
		return err
	}
	return c.doAndDecode(req, expected, out)
}

// Health checks GET /health.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, c.buildURL(nil, "health"), nil)
}
