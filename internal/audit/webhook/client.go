// Package webhook pushes event batches to a Discord-compatible webhook endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"horizon/backend/internal/audit"
)

const (
	defaultUsername = "Core Platform API"
	requestTimeout  = 10 * time.Second
)

// payload is the webhook request body.
type payload struct {
	Username  string        `json:"username"`
	AvatarURL string        `json:"avatar_url,omitempty"`
	Embeds    []audit.Event `json:"embeds"`
}

// Client delivers event batches via HTTP POST. It implements audit.Sink.
type Client struct {
	url        string
	username   string
	avatarURL  string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithIdentity overrides the webhook display name and avatar.
func WithIdentity(username, avatarURL string) Option {
	return func(c *Client) {
		if username != "" {
			c.username = username
		}
		c.avatarURL = avatarURL
	}
}

// WithHTTPClient overrides the HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New returns a webhook client posting to url with a bounded request timeout.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		username:   defaultUsername,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Deliver posts one batch of events. Returns an error if the request fails or
// the endpoint responds non-2xx; the caller decides what to do with it (the
// dispatcher logs and moves on).
func (c *Client) Deliver(ctx context.Context, events []audit.Event) error {
	if c.url == "" {
		return fmt.Errorf("webhook: endpoint URL is empty")
	}
	body, err := json.Marshal(payload{
		Username:  c.username,
		AvatarURL: c.avatarURL,
		Embeds:    events,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: post returned %s", resp.Status)
	}
	return nil
}
