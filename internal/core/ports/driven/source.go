package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/refsync/internal/core/domain"
)

// RecordSource reads records from an external paginated catalogue.
// Each catalogue endpoint (IGDB genres, platforms, etc.) implements this interface.
//
// Failures wrap domain.ErrSourceUnavailable or domain.ErrRateLimited so that
// callers can classify them with errors.Is.
type RecordSource interface {
	// Name identifies the source in logs and metrics (e.g. "igdb/genres").
	Name() string

	// Count returns the number of available records, restricted to records
	// created or updated at or after since when since is non-nil.
	Count(ctx context.Context, since *time.Time) (int, error)

	// FetchPage returns up to cursor.PageSize records starting at cursor.Offset,
	// using the same filter semantics as Count. Only the final page may be short.
	FetchPage(ctx context.Context, cursor domain.SyncCursor) ([]domain.SourceRecord, error)
}
