// Package client talks to the portal HTTP API on behalf of a signed-in
// terminal user. It provides the client-side SessionStore and RoleResolver
// that back a session.Controller, plus typed calls for every API route.
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

	"github.com/rs/zerolog"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseSize = 4 << 20
)

// Config configures a Client.
type Config struct {
	BaseURL   string
	TokenFile string
	Timeout   time.Duration
}

// Client is an HTTP client for the portal API. The bearer token comes from
// the token file maintained by SessionStore.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  *TokenFile
	log     zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		tokens:  NewTokenFile(cfg.TokenFile),
		log:     log,
	}
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status   int
	Message  string
	Field    string
	Redirect string
	body     []byte
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("portal api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return e.Message
}

// Unwrap lets callers test access failures with errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return domain.ErrSessionNotFound
	case http.StatusForbidden:
		return domain.ErrForbidden
	}
	return nil
}

type apiErrorBody struct {
	Error    string `json:"error"`
	Field    string `json:"field"`
	Redirect string `json:"redirect"`
	Message  string `json:"message"`
}

// do sends a JSON request and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("portal api: encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("portal api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess, _ := c.tokens.Load(); sess != nil && sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("portal api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("portal api: read response: %w", err)
	}

	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("api call")

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, body: raw}
		var eb apiErrorBody
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Message, apiErr.Field, apiErr.Redirect = eb.Error, eb.Field, eb.Redirect
			if apiErr.Message == "" {
				apiErr.Message = eb.Message
			}
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("portal api: decode response: %w", err)
	}
	return nil
}

// statusOf returns the HTTP status of an APIError, or 0.
func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
