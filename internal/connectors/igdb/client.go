package igdb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/refsync/internal/core/domain"
)

const (
	// HeaderClientID carries the Twitch application id.
	HeaderClientID = "Client-ID"

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 1024
)

// Client performs authenticated, rate-limited IGDB requests.
type Client struct {
	cfg         Config
	http        *http.Client
	tokens      oauth2.TokenSource
	rateLimiter *RateLimiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for API and token requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTokenSource replaces the client-credentials token source.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// NewClient creates a new IGDB API client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	c := &Client{
		cfg:         cfg,
		http:        &http.Client{Timeout: cfg.Timeout},
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokens == nil {
		c.tokens = NewTokenSource(context.Background(), cfg, c.http)
	}
	return c, nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Post sends an Apicalypse query to {base}/{endpoint} and decodes the JSON
// response into out.
func (c *Client) Post(ctx context.Context, endpoint string, query Query, out any) error {
	url := c.cfg.BaseURL + "/" + strings.TrimLeft(endpoint, "/")

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	token, err := c.tokens.Token()
	if err != nil {
		return tokenError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(query.String()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(HeaderClientID, c.cfg.ClientID)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return unavailable("POST "+endpoint, err)
	}
	defer resp.Body.Close()

	return c.decode(resp, out)
}

// decode checks the response status and unmarshals the body.
func (c *Client) decode(resp *http.Response, out any) error {
	if err := c.rateLimiter.CheckRateLimit(resp); err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			URL:        resp.Request.URL.String(),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w: %w", ErrUnexpectedResponse, domain.ErrSourceUnavailable, err)
	}
	return nil
}
