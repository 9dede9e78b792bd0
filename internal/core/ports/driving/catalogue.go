package driving

import (
	"context"

	"github.com/custodia-labs/refsync/internal/core/domain"
)

// CatalogueService provides read access to synchronised reference data.
type CatalogueService interface {
	// List returns all stored entities ordered by external identifier.
	List(ctx context.Context) ([]domain.Entity, error)

	// Get returns a single entity by external identifier.
	Get(ctx context.Context, externalID int64) (*domain.Entity, error)

	// Count returns the number of stored entities.
	Count(ctx context.Context) (int, error)
}
