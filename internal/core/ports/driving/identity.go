package driving

import (
	"context"

	"github.com/custodia-labs/refsync/internal/core/domain"
)

// IdentityService returns the current authenticated principal.
type IdentityService interface {
	// Me returns the principal, or an error wrapping domain.ErrNotAuthenticated.
	Me(ctx context.Context) (*domain.Principal, error)
}
