// Package apiclient talks to the storefront REST API on behalf of the console.
package apiclient

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

	"github.com/rs/zerolog"
)

const maxBodyBytes = 8 << 20

// Config holds the upstream location and request timeout.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a thin JSON client for the storefront API.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a Client. A zero timeout falls back to 15 seconds.
func New(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type tokenKey struct{}

// WithToken returns a context whose requests carry "Authorization: Bearer token".
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the session token stored by WithToken.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// StatusError is returned for every non-2xx upstream response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string // upstream "message" field, if any
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: upstream returned %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: upstream returned %d", e.Method, e.Path, e.StatusCode)
}

// StatusCode extracts the upstream status from err, or 0 when err is not a
// *StatusError.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Request describes one upstream call. Path is relative to the base URL.
type Request struct {
	Method      string
	Path        string
	Body        io.Reader
	ContentType string
}

// Response is what remains of an upstream response once its body is decoded.
type Response struct {
	StatusCode int
	Cookies    []*http.Cookie
}

// Cookie returns the named response cookie or nil.
func (r *Response) Cookie(name string) *http.Cookie {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Do executes req and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) Do(ctx context.Context, req Request, out any) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request %s %s: %w", req.Method, req.Path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if token := TokenFrom(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Error().Err(err).Str("method", req.Method).Str("path", req.Path).Msg("upstream request failed")
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response of %s %s: %w", req.Method, req.Path, err)
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("upstream call")

	result := &Response{StatusCode: resp.StatusCode, Cookies: resp.Cookies()}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, &StatusError{
			Method:     req.Method,
			Path:       req.Path,
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(body),
		}
	}

	if out != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return result, fmt.Errorf("failed to decode response of %s %s: %w", req.Method, req.Path, err)
		}
	}
	return result, nil
}

// GetJSON performs a GET and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path}, out)
	return err
}

// SendJSON encodes in (when non-nil) as the request body.
func (c *Client) SendJSON(ctx context.Context, method, path string, in, out any) (*Response, error) {
	req := Request{Method: method, Path: path}
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request %s %s: %w", method, path, err)
		}
		req.Body = bytes.NewReader(payload)
		req.ContentType = "application/json"
	}
	return c.Do(ctx, req, out)
}

func upstreamMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
