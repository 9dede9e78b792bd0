package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// Adapters wrap their own failures with one of these so the core can
// classify them with errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates malformed caller input, such as a
	// since filter that is not a UNIX timestamp.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidRecord indicates a source record is missing its identifier or name.
	ErrInvalidRecord = errors.New("invalid record")

	// Source Errors.

	// ErrSourceUnavailable indicates the external source could not be reached
	// or rejected our credentials.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrRateLimited indicates the external source rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Persistence Errors.

	// ErrPersistence indicates the sink failed to write a batch.
	ErrPersistence = errors.New("persistence error")

	// Run Errors.

	// ErrSyncFailed indicates a sync run was aborted. Use errors.As with
	// *SyncFailedError to find the failing stage.
	ErrSyncFailed = errors.New("sync failed")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// Authentication Errors.

	// ErrNotAuthenticated indicates there is no valid principal.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// SyncFailedError reports an aborted sync run.
// Batches committed before the failure remain persisted.
type SyncFailedError struct {
	// Stage is the run state that failed.
	Stage RunState

	// Offset is the cursor offset of the failing batch.
	Offset int

	// Cause is the underlying error.
	Cause error
}

func (e *SyncFailedError) Error() string {
	return fmt.Sprintf("sync failed while %s at offset %d: %v", e.Stage, e.Offset, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *SyncFailedError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrSyncFailed.
func (e *SyncFailedError) Is(target error) bool {
	return target == ErrSyncFailed
}
