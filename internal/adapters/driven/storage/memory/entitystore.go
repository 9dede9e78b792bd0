package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/refsync/internal/core/domain"
	"github.com/custodia-labs/refsync/internal/core/ports/driven"
)

// Ensure EntityStore implements the interfaces.
var (
	_ driven.EntitySink  = (*EntityStore)(nil)
	_ driven.EntityStore = (*EntityStore)(nil)
)

// EntityStore is an in-memory implementation of driven.EntitySink and
// driven.EntityStore. Used for dry runs and tests.
type EntityStore struct {
	mu       sync.RWMutex
	entities map[int64]domain.Entity
	batches  int
}

// NewEntityStore creates a new in-memory entity store.
func NewEntityStore() *EntityStore {
	return &EntityStore{
		entities: make(map[int64]domain.Entity),
	}
}

// UpsertBatch inserts or updates entities keyed by ExternalID and returns the
// number of entities inserted or changed. The batch is validated before any
// write, so it applies fully or not at all.
func (s *EntityStore) UpsertBatch(_ context.Context, entities []domain.Entity) (int, error) {
	for _, e := range entities {
		if e.ExternalID <= 0 {
			return 0, fmt.Errorf("%w: external id %d violates key constraint", domain.ErrPersistence, e.ExternalID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	written := 0
	for _, e := range entities {
		if old, ok := s.entities[e.ExternalID]; ok && old == e {
			continue
		}
		s.entities[e.ExternalID] = e
		written++
	}
	s.batches++
	return written, nil
}

// List returns all entities ordered by ExternalID.
func (s *EntityStore) List(_ context.Context) ([]domain.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Entity, 0, len(s.entities))
	for _, e := range s.entities {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ExternalID < result[j].ExternalID
	})
	return result, nil
}

// Get returns the entity with the given external identifier.
func (s *EntityStore) Get(_ context.Context, externalID int64) (*domain.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entities[externalID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

// Count returns the number of stored entities.
func (s *EntityStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities), nil
}

// Batches returns the number of batches committed.
func (s *EntityStore) Batches() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batches
}
