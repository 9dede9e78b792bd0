package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/refsync/internal/core/domain"
)

// SyncOrchestrator runs batched synchronisation from a record source into a sink.
type SyncOrchestrator interface {
	// Run performs one full sync run.
	Run(ctx context.Context, req SyncRequest) (*SyncResult, error)

	// Status returns the state of the current or most recent run.
	Status(ctx context.Context) (*SyncStatus, error)
}

// SyncRequest holds the inputs of a sync run.
type SyncRequest struct {
	// Since is an optional UNIX timestamp, as typed by the user.
	// Empty means no filter.
	Since string
}

// SyncResult summarises a completed run.
type SyncResult struct {
	// RunID identifies the run in logs.
	RunID string

	// Total is the record count read at run start.
	Total int

	// Batches is the number of pages fetched.
	Batches int

	// Processed counts fetched records, including skipped ones.
	Processed int

	// Upserted counts records written to the sink.
	Upserted int

	// Skipped counts records rejected by the transformer.
	Skipped int

	// Duration is the wall time of the run.
	Duration time.Duration
}

// SyncStatus represents the current state of a sync run.
type SyncStatus struct {
	// RunID identifies the run. Empty when no run has started.
	RunID string

	// State is the run state machine state.
	State domain.RunState

	// Progress is the cumulative progress.
	Progress domain.ProgressState

	// Skipped counts records rejected by the transformer so far.
	Skipped int
}

// Running reports whether the run is still in progress.
func (s *SyncStatus) Running() bool {
	switch s.State {
	case domain.RunIdle, domain.RunDone, domain.RunFailed:
		return false
	default:
		return true
	}
}
