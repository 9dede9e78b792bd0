package driven

import "github.com/custodia-labs/refsync/internal/core/domain"

// Transformer maps raw source records into the persisted shape.
// Implementations must be pure: the same record always yields the same entity.
type Transformer interface {
	// Transform returns the entity for a record, or an error wrapping
	// domain.ErrInvalidRecord when the record lacks an identifier or name.
	Transform(record domain.SourceRecord) (domain.Entity, error)
}

// TransformFunc adapts a function to the Transformer interface.
type TransformFunc func(record domain.SourceRecord) (domain.Entity, error)

// Transform calls f(record).
func (f TransformFunc) Transform(record domain.SourceRecord) (domain.Entity, error) {
	return f(record)
}
