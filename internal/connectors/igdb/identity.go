package igdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/custodia-labs/refsync/internal/core/domain"
	"github.com/custodia-labs/refsync/internal/core/ports/driven"
)

// Ensure Identity implements the interface.
var _ driven.IdentityProvider = (*Identity)(nil)

// validateResponse is the Twitch token validation payload.
type validateResponse struct {
	ClientID  string   `json:"client_id"`
	Login     string   `json:"login"`
	Scopes    []string `json:"scopes"`
	ExpiresIn int64    `json:"expires_in"`
}

// Identity resolves the principal behind the client's credentials.
type Identity struct {
	client *Client
	now    func() time.Time
}

// NewIdentity creates an identity provider backed by client.
func NewIdentity(client *Client) *Identity {
	return &Identity{client: client, now: time.Now}
}

// CurrentPrincipal validates the current access token with Twitch.
func (i *Identity) CurrentPrincipal(ctx context.Context) (*domain.Principal, error) {
	token, err := i.client.tokens.Token()
	if err != nil {
		return nil, tokenError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.client.cfg.ValidateURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "OAuth "+token.AccessToken)

	resp, err := i.client.http.Do(req)
	if err != nil {
		return nil, unavailable("validate token", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("validate token: %w", domain.ErrNotAuthenticated)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			URL:        i.client.cfg.ValidateURL,
		}
	}

	var v validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}

	return &domain.Principal{
		ClientID:  v.ClientID,
		Login:     v.Login,
		Scopes:    v.Scopes,
		ExpiresAt: i.now().Add(time.Duration(v.ExpiresIn) * time.Second).UTC(),
	}, nil
}
