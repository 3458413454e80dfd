// Package client talks to the timeline backend: per-day entry lists, the
// finance report and the derived artifacts stored under each checksum.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pbaille/timeline/internal/domain"
)

// Response bodies larger than this are rejected.
const maxBodySize = 32 * 1024 * 1024

// AuthRequiredError is returned for 401 and 403 responses. Callers send the
// user to the login flow instead of showing an empty day.
type AuthRequiredError struct {
	Status int
	URL    string
}

func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf("authentication required (status %d): %s", e.Status, e.URL)
}

// FetchFailureError covers every other failure: non-2xx statuses, transport
// errors and undecodable bodies.
type FetchFailureError struct {
	Status int
	URL    string
	Err    error
}

func (e *FetchFailureError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchFailureError) Unwrap() error { return e.Err }

// IsAuthRequired reports whether err asks for authentication.
func IsAuthRequired(err error) bool {
	var auth *AuthRequiredError
	return errors.As(err, &auth)
}

// Client is a backend API client
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

// WithToken sends token as a bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the backend rooted at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Entries fetches the entries of one day. date is YYYY-MM-DD.
func (c *Client) Entries(ctx context.Context, date string) ([]domain.Entry, error) {
	u := fmt.Sprintf("%s/entries/%s.json", c.baseURL, url.PathEscape(date))
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var resp domain.EntriesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &FetchFailureError{URL: u, Err: fmt.Errorf("decode entries: %w", err)}
	}
	return resp.Entries, nil
}

// ArtifactURL is where the backend serves a derived file of an entry,
// e.g. content.html, content.txt, thumbnail.webp.
func (c *Client) ArtifactURL(checksum, name string) string {
	return fmt.Sprintf("%s/metadata/%s/%s", c.baseURL, url.PathEscape(checksum), url.PathEscape(name))
}

// Artifact downloads a derived file.
func (c *Client) Artifact(ctx context.Context, checksum, name string) ([]byte, error) {
	return c.get(ctx, c.ArtifactURL(checksum, name))
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchFailureError{URL: u, Err: fmt.Errorf("create request: %w", err)}
	}
	reqID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", "url", u, "request_id", reqID, "err", err)
		return nil, &FetchFailureError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		"url", u,
		"request_id", reqID,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthRequiredError{Status: resp.StatusCode, URL: u}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &FetchFailureError{Status: resp.StatusCode, URL: u}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &FetchFailureError{URL: u, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}
