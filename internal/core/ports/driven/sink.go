package driven

import (
	"context"

	"github.com/custodia-labs/refsync/internal/core/domain"
)

// EntitySink persists batches of entities.
// Backed by SQLite or Postgres, or memory for dry runs.
type EntitySink interface {
	// UpsertBatch inserts or updates every entity keyed by ExternalID and
	// returns the number written. The batch is atomic: on error nothing from
	// it is visible. Errors wrap domain.ErrPersistence.
	UpsertBatch(ctx context.Context, entities []domain.Entity) (int, error)
}

// EntityStore provides read access to synchronised entities.
type EntityStore interface {
	// List returns all entities ordered by ExternalID.
	List(ctx context.Context) ([]domain.Entity, error)

	// Get returns the entity with the given external identifier.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, externalID int64) (*domain.Entity, error)

	// Count returns the number of stored entities.
	Count(ctx context.Context) (int, error)
}
