package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const DefaultEndpointURL = "https://annofab.com"

const apiPrefix = "/api/v1"

type Client struct {
	BaseURL  string
	UserID   string
	Password string
	HTTP     *http.Client

	mu    sync.Mutex
	token string
}

type APIError struct {
	Status    int
	Message   string
	RequestID string
}

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("stale last_updated_datetime")
	ErrUnauthorized = errors.New("unauthorized")
)

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Is lets callers match status classes with errors.Is instead of inspecting Status.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

func NewClient(endpointURL, userID, password string, timeout time.Duration) *Client {
	if endpointURL == "" {
		endpointURL = DefaultEndpointURL
	}
	return &Client{
		BaseURL:  strings.TrimRight(endpointURL, "/"),
		UserID:   userID,
		Password: password,
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithToken makes the client skip the login call. Used when a token was already
// obtained by another client handle.
func (c *Client) WithToken(token string) *Client {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return c
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) (string, error) {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, query url.Values, body any, out any) (string, error) {
	return c.doJSON(ctx, http.MethodPost, path, query, body, out)
}

func (c *Client) Put(ctx context.Context, path string, query url.Values, body any, out any) (string, error) {
	return c.doJSON(ctx, http.MethodPut, path, query, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, query url.Values, body any, out any) (string, error) {
	return c.doJSON(ctx, http.MethodPatch, path, query, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, query url.Values) (string, error) {
	return c.doJSON(ctx, http.MethodDelete, path, query, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body any, out any) (string, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("encode body: %w", err)
		}
	}
	resp, requestID, err := c.do(ctx, method, path, query, payload)
	if err != nil {
		return requestID, err
	}
	defer resp.Body.Close()
	if out == nil {
		return requestID, nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return requestID, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return requestID, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return requestID, fmt.Errorf("decode response: %w", err)
	}
	return requestID, nil
}

// do issues one request. Failed calls are never retried; re-running the
// command is left to the operator.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte) (*http.Response, string, error) {
	token, err := c.ensureToken(ctx, path)
	if err != nil {
		return nil, "", err
	}
	fullURL, err := c.buildURL(path, query)
	if err != nil {
		return nil, "", err
	}
	var buf io.Reader
	if payload != nil {
		buf = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, buf)
	if err != nil {
		return nil, "", err
	}
	requestID := NewRequestID()
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, requestID, err
	}
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		_ = resp.Body.Close()
		return nil, requestID, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg)), RequestID: requestID}
	}
	return resp, requestID, nil
}

func (c *Client) buildURL(path string, query url.Values) (string, error) {
	u, err := url.Parse(c.BaseURL + apiPrefix + path)
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}
