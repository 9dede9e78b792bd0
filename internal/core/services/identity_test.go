package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/refsync/internal/core/domain"
)

// mockIdentityProvider implements driven.IdentityProvider for testing.
type mockIdentityProvider struct {
	principal *domain.Principal
	err       error
}

func (m *mockIdentityProvider) CurrentPrincipal(_ context.Context) (*domain.Principal, error) {
	return m.principal, m.err
}

func TestIdentityService_Me(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	svc := NewIdentityService(&mockIdentityProvider{
		principal: &domain.Principal{ClientID: "abc", ExpiresAt: expires},
	})

	p, err := svc.Me(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "abc", p.ClientID)
	assert.True(t, p.IsAppOnly())
}

func TestIdentityService_Me_NotAuthenticated(t *testing.T) {
	tests := []struct {
		name string
		svc  *IdentityService
	}{
		{"nil provider", NewIdentityService(nil)},
		{"nil principal", NewIdentityService(&mockIdentityProvider{})},
		{"provider rejects", NewIdentityService(&mockIdentityProvider{err: domain.ErrNotAuthenticated})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.svc.Me(context.Background())
			assert.Nil(t, p)
			assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
		})
	}
}

func TestIdentityService_Me_ProviderError(t *testing.T) {
	svc := NewIdentityService(&mockIdentityProvider{err: errors.New("dns failure")})

	_, err := svc.Me(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "current principal")
	assert.False(t, errors.Is(err, domain.ErrNotAuthenticated))
}
