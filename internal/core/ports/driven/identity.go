package driven

import (
	"context"

	"github.com/custodia-labs/refsync/internal/core/domain"
)

// IdentityProvider resolves the principal behind the configured credentials.
type IdentityProvider interface {
	// CurrentPrincipal returns the authenticated principal.
	// Returns an error wrapping domain.ErrNotAuthenticated when there is none.
	CurrentPrincipal(ctx context.Context) (*domain.Principal, error)
}
