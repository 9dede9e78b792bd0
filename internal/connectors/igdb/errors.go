package igdb

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/refsync/internal/core/domain"
)

// IGDB-specific errors.
var (
	// ErrMissingCredentials indicates the client id or secret is empty.
	ErrMissingCredentials = errors.New("igdb: client id and client secret are required")

	// ErrUnexpectedResponse indicates the response body could not be decoded.
	ErrUnexpectedResponse = errors.New("igdb: unexpected response")
)

// RateLimitError represents a 429 response.
type RateLimitError struct {
	RetryAfter time.Duration
	URL        string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("igdb: rate limit exceeded, retry after %s (URL: %s)", e.RetryAfter, e.URL)
	}
	return fmt.Sprintf("igdb: rate limit exceeded (URL: %s)", e.URL)
}

// Unwrap lets callers match domain.ErrRateLimited.
func (e *RateLimitError) Unwrap() error {
	return domain.ErrRateLimited
}

// APIError represents a non-2xx IGDB or Twitch response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("igdb: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Unwrap maps the status code onto domain sentinels. Auth failures match
// both domain.ErrSourceUnavailable and domain.ErrNotAuthenticated.
func (e *APIError) Unwrap() []error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return []error{domain.ErrSourceUnavailable, domain.ErrNotAuthenticated}
	}
	return []error{domain.ErrSourceUnavailable}
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// unavailable wraps transport failures so they match domain.ErrSourceUnavailable.
func unavailable(op string, err error) error {
	if errors.Is(err, domain.ErrSourceUnavailable) || errors.Is(err, domain.ErrRateLimited) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrSourceUnavailable, err)
}
