package igdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/refsync/internal/core/domain"
)

// NewTokenSource returns a cached app access token source for the Twitch
// client-credentials flow. Tokens are refreshed when they expire.
func NewTokenSource(ctx context.Context, cfg Config, httpClient *http.Client) oauth2.TokenSource {
	cfg = cfg.withDefaults()
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}
	return cc.TokenSource(ctx)
}

// tokenError classifies a token fetch failure. Rejected credentials map to
// domain.ErrSourceUnavailable and domain.ErrNotAuthenticated, anything else
// to domain.ErrSourceUnavailable alone.
func tokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		switch retrieveErr.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("get token: %w: %w: %w", domain.ErrSourceUnavailable, domain.ErrNotAuthenticated, err)
		}
	}
	return unavailable("get token", err)
}
