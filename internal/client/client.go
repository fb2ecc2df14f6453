// Package client provides typed wrappers around the backend REST API. Each
// call attaches the session's bearer token, and transport failures and
// non-2xx responses are translated into the domain error types from
// internal/errors before they reach any flow logic.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperr "eventdesk/internal/errors"
	"eventdesk/internal/logger"
	"eventdesk/internal/models"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// TokenSource supplies the current bearer token. The session store implements
// it; an empty token means unauthenticated.
type TokenSource interface {
	Token() string
}

// Client is the shared HTTP transport for all API gateway clients.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func New(cfg Config, tokens TokenSource) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		tokens: tokens,
	}
}

// BaseURL returns the configured API root, used to resolve relative image
// references.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Auth returns the auth gateway client.
func (c *Client) Auth() *AuthClient { return &AuthClient{c} }

// Events returns the event gateway client.
func (c *Client) Events() *EventClient { return &EventClient{c} }

// Reservations returns the reservation gateway client.
func (c *Client) Reservations() *ReservationClient { return &ReservationClient{c} }

// Payments returns the payment gateway client.
func (c *Client) Payments() *PaymentClient { return &PaymentClient{c} }

// do sends one JSON request and decodes the response into out (when non-nil).
// authed attaches the bearer token; a missing token fails fast with
// ErrNotAuthenticated before any network call.
func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.prepare(req, authed); err != nil {
		return err
	}

	return c.send(req, out)
}

// prepare stamps the headers every request carries.
func (c *Client) prepare(req *http.Request, authed bool) error {
	req.Header.Set("X-Request-ID", logger.NewRequestID())
	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if authed {
		return apperr.ErrNotAuthenticated
	}
	return nil
}

// send executes a prepared request and translates the outcome.
func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperr.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeAPIError extracts the server's message when the body carries one.
func decodeAPIError(resp *http.Response) error {
	apiErr := &apperr.APIError{Status: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(raw) > 0 {
		var envelope models.ErrorResponse
		if json.Unmarshal(raw, &envelope) == nil {
			apiErr.ServerMessage = envelope.Text()
		}
	}
	return apiErr
}
