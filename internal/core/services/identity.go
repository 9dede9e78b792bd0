package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/refsync/internal/core/domain"
	"github.com/custodia-labs/refsync/internal/core/ports/driven"
	"github.com/custodia-labs/refsync/internal/core/ports/driving"
)

// Ensure IdentityService implements the interface.
var _ driving.IdentityService = (*IdentityService)(nil)

// IdentityService returns the principal behind the configured credentials.
type IdentityService struct {
	provider driven.IdentityProvider
}

// NewIdentityService creates a new identity service.
func NewIdentityService(provider driven.IdentityProvider) *IdentityService {
	return &IdentityService{provider: provider}
}

// Me returns the current principal or an error wrapping domain.ErrNotAuthenticated.
func (s *IdentityService) Me(ctx context.Context) (*domain.Principal, error) {
	if s.provider == nil {
		return nil, domain.ErrNotAuthenticated
	}

	principal, err := s.provider.CurrentPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("current principal: %w", err)
	}
	if principal == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return principal, nil
}
