package igdb

import (
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the IGDB v4 API root.
	DefaultBaseURL = "https://api.igdb.com/v4"

	// DefaultTokenURL is the Twitch OAuth token endpoint.
	DefaultTokenURL = "https://id.twitch.tv/oauth2/token"

	// DefaultValidateURL is the Twitch token validation endpoint.
	DefaultValidateURL = "https://id.twitch.tv/oauth2/validate"

	// DefaultRequestsPerSecond is IGDB's documented per-client limit.
	DefaultRequestsPerSecond = 4.0

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
)

// Config holds the settings for the IGDB client.
type Config struct {
	ClientID          string
	ClientSecret      string
	BaseURL           string
	TokenURL          string
	ValidateURL       string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// withDefaults fills empty fields and trims trailing slashes.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.TokenURL == "" {
		c.TokenURL = DefaultTokenURL
	}
	if c.ValidateURL == "" {
		c.ValidateURL = DefaultValidateURL
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}

// Validate checks that credentials are present.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return ErrMissingCredentials
	}
	return nil
}
