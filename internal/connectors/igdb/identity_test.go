package igdb

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/refsync/internal/core/domain"
)

func TestIdentity_CurrentPrincipal(t *testing.T) {
	fake, srv := newFakeIGDB(t)
	fake.handle("/oauth2/validate", jsonHandler(`{"client_id":"client-abc","scopes":[],"expires_in":3600}`))

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	identity := NewIdentity(newTestClient(t, srv.URL))
	identity.now = func() time.Time { return now }

	p, err := identity.CurrentPrincipal(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "client-abc", p.ClientID)
	assert.True(t, p.IsAppOnly())
	assert.Equal(t, now.Add(time.Hour), p.ExpiresAt)
	assert.Equal(t, "OAuth tok-123", fake.headers[0].Get("Authorization"))
}

func TestIdentity_CurrentPrincipal_InvalidToken(t *testing.T) {
	fake, srv := newFakeIGDB(t)
	fake.handle("/oauth2/validate", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := NewIdentity(newTestClient(t, srv.URL)).CurrentPrincipal(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestIdentity_CurrentPrincipal_ServerError(t *testing.T) {
	fake, srv := newFakeIGDB(t)
	fake.handle("/oauth2/validate", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := NewIdentity(newTestClient(t, srv.URL)).CurrentPrincipal(context.Background())
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}
