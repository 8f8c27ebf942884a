// Package client talks to the audit backend. Mutations are validated locally
// before any request is sent, are never retried, and invalidate the cached
// listings they affect.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/simonvc/auditledger/internal/api"
)

// ErrInFlight is returned when a mutation for an entry is attempted while
// another one for the same entry is still outstanding.
var ErrInFlight = errors.New("a request for this entry is already in progress")

// ErrNotPersisted is returned when an update or delete names no entry id.
var ErrNotPersisted = errors.New("entry has not been saved yet")

// RemoteError carries the backend's error message verbatim.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *Cache
	inflight   *guard
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:    NewCache(),
		inflight: newGuard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cache exposes the query cache so callers can force a refresh.
func (c *Client) Cache() *Cache {
	return c.cache
}

// Ping checks if the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &RemoteError{Status: resp.StatusCode, Message: resp.Status}
	}
	return nil
}

func get[T any](ctx context.Context, c *Client, path string) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return doRequest[T](c, req)
}

func send[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return doRequest[T](c, req)
}

func doRequest[T any](c *Client, req *http.Request) (*T, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if msg := api.ErrorMessage(bodyBytes); msg != "" {
			return nil, &RemoteError{Status: resp.StatusCode, Message: msg}
		}
		return nil, &RemoteError{Status: resp.StatusCode, Message: strings.TrimSpace(string(bodyBytes))}
	}

	return api.DecodeBytes[T](bodyBytes)
}
