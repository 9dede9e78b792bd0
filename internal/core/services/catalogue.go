package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/refsync/internal/core/domain"
	"github.com/custodia-labs/refsync/internal/core/ports/driven"
	"github.com/custodia-labs/refsync/internal/core/ports/driving"
)

// Ensure CatalogueService implements the interface.
var _ driving.CatalogueService = (*CatalogueService)(nil)

// CatalogueService provides read access to synchronised entities.
type CatalogueService struct {
	store driven.EntityStore
}

// NewCatalogueService creates a new catalogue service.
func NewCatalogueService(store driven.EntityStore) *CatalogueService {
	return &CatalogueService{store: store}
}

// List returns all stored entities ordered by external identifier.
func (s *CatalogueService) List(ctx context.Context) ([]domain.Entity, error) {
	entities, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	return entities, nil
}

// Get returns a single entity by external identifier.
func (s *CatalogueService) Get(ctx context.Context, externalID int64) (*domain.Entity, error) {
	if externalID <= 0 {
		return nil, fmt.Errorf("%w: external id must be positive", domain.ErrInvalidArgument)
	}

	entity, err := s.store.Get(ctx, externalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get entity: %w", err)
	}
	return entity, nil
}

// Count returns the number of stored entities.
func (s *CatalogueService) Count(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count entities: %w", err)
	}
	return n, nil
}
