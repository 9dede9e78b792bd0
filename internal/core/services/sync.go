package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/refsync/internal/core/domain"
	"github.com/custodia-labs/refsync/internal/core/ports/driven"
	"github.com/custodia-labs/refsync/internal/core/ports/driving"
	"github.com/custodia-labs/refsync/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// SyncOrchestrator drives the fetch, transform, persist loop for one source.
type SyncOrchestrator struct {
	source      driven.RecordSource
	transformer driven.Transformer
	sink        driven.EntitySink
	progress    driven.ProgressReporter
	pageSize    int

	// Status tracking
	mu      sync.RWMutex
	running bool
	status  driving.SyncStatus
}

// NewSyncOrchestrator creates a new sync orchestrator.
// progress may be nil, in which case no progress is reported.
// A pageSize of zero or less selects domain.DefaultPageSize.
func NewSyncOrchestrator(
	source driven.RecordSource,
	transformer driven.Transformer,
	sink driven.EntitySink,
	progress driven.ProgressReporter,
	pageSize int,
) *SyncOrchestrator {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return &SyncOrchestrator{
		source:      source,
		transformer: transformer,
		sink:        sink,
		progress:    progress,
		pageSize:    pageSize,
		status:      driving.SyncStatus{State: domain.RunIdle},
	}
}

// Run performs one sync run.
//
// An invalid since filter fails with domain.ErrInvalidArgument before any
// source or sink call. Source and sink failures abort the run with a
// *domain.SyncFailedError; the returned result then describes the batches
// committed before the failure. Cancelling ctx stops the run between batches.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *SyncOrchestrator) Run(ctx context.Context, req driving.SyncRequest) (*driving.SyncResult, error) {
	// 1. Validate input before any I/O
	since, err := domain.ParseSince(req.Since)
	if err != nil {
		return nil, err
	}

	if !o.begin() {
		return nil, domain.ErrSyncInProgress
	}
	defer o.end()

	runID := uuid.NewString()
	log := logger.With("run", runID, "source", o.source.Name())
	start := time.Now()
	result := &driving.SyncResult{RunID: runID}
	o.resetStatus(runID)

	if since != nil {
		log.Info("Starting sync of records changed since %s", since.Format(time.RFC3339))
	} else {
		log.Info("Starting full sync")
	}

	// 2. Count
	o.setState(domain.RunCountingTotal)
	total, err := o.source.Count(ctx, since)
	if err != nil {
		return o.fail(log, result, start, domain.RunCountingTotal, 0, fmt.Errorf("count records: %w", err))
	}
	result.Total = total
	o.setTotal(total)
	log.Info("Number of records to check: %d", total)

	// 3. Initialise progress
	o.report(func(p driven.ProgressReporter) { p.Total(total) })
	defer o.report(func(p driven.ProgressReporter) { p.Finish() })

	// 4. Batches
	cursor := domain.SyncCursor{PageSize: o.pageSize, Since: since}
	for ; cursor.Offset < total; cursor = cursor.Next() {
		if err := ctx.Err(); err != nil {
			return o.fail(log, result, start, domain.RunFetchingBatch, cursor.Offset, err)
		}

		stage, err := o.runBatch(ctx, log, cursor, result)
		if err != nil {
			return o.fail(log, result, start, stage, cursor.Offset, err)
		}
	}

	result.Duration = time.Since(start)
	o.setState(domain.RunDone)
	log.Info("Sync complete: %d processed, %d upserted, %d skipped in %s",
		result.Processed, result.Upserted, result.Skipped, result.Duration.Round(time.Millisecond))
	return result, nil
}

// runBatch fetches, transforms and persists the page at cursor.
// On error it returns the stage that failed.
func (o *SyncOrchestrator) runBatch(
	ctx context.Context,
	log logger.Fields,
	cursor domain.SyncCursor,
	result *driving.SyncResult,
) (domain.RunState, error) {
	// a. Fetch
	o.setState(domain.RunFetchingBatch)
	records, err := o.source.FetchPage(ctx, cursor)
	if err != nil {
		return domain.RunFetchingBatch, fmt.Errorf("fetch page: %w", err)
	}
	result.Batches++
	log.Debug("Fetched %d records at offset %d", len(records), cursor.Offset)

	// b. Transform, skipping invalid records
	o.setState(domain.RunTransformingBatch)
	entities := make([]domain.Entity, 0, len(records))
	skipped := 0
	for _, rec := range records {
		entity, err := o.transformer.Transform(rec)
		if err != nil {
			skipped++
			log.Error("Skipping invalid record %d: %v", rec.ExternalID, err)
			continue
		}
		entities = append(entities, entity)
	}

	// c. Persist as one atomic batch
	if len(entities) > 0 {
		o.setState(domain.RunPersistingBatch)
		written, err := o.sink.UpsertBatch(ctx, entities)
		if err != nil {
			return domain.RunPersistingBatch, fmt.Errorf("upsert batch: %w", err)
		}
		result.Upserted += written
	}

	// d. Advance by everything fetched, including skipped records
	result.Processed += len(records)
	result.Skipped += skipped
	o.advance(len(records), skipped)
	o.report(func(p driven.ProgressReporter) { p.Advance(len(records)) })

	return "", nil
}

// Status returns the state of the current or most recent run.
func (o *SyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	// Return a copy to avoid race conditions
	status := o.status
	return &status, nil
}

// fail records the failure and wraps err in a SyncFailedError.
func (o *SyncOrchestrator) fail(
	log logger.Fields,
	result *driving.SyncResult,
	start time.Time,
	stage domain.RunState,
	offset int,
	err error,
) (*driving.SyncResult, error) {
	result.Duration = time.Since(start)
	o.setState(domain.RunFailed)
	log.Error("Sync failed while %s at offset %d after %d committed records: %v",
		stage, offset, result.Upserted, err)
	return result, &domain.SyncFailedError{Stage: stage, Offset: offset, Cause: err}
}

// report calls fn on the progress reporter, if any.
// Reporter panics are logged and never reach the run.
func (o *SyncOrchestrator) report(fn func(driven.ProgressReporter)) {
	if o.progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Progress reporter failed: %v", r)
		}
	}()
	fn(o.progress)
}

// begin marks a run as started. Returns false if one is already running.
func (o *SyncOrchestrator) begin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return false
	}
	o.running = true
	return true
}

// end marks the current run as finished.
func (o *SyncOrchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.running = false
}

func (o *SyncOrchestrator) resetStatus(runID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = driving.SyncStatus{RunID: runID, State: domain.RunIdle}
}

func (o *SyncOrchestrator) setState(state domain.RunState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.State = state
}

func (o *SyncOrchestrator) setTotal(total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.Progress.Total = total
}

func (o *SyncOrchestrator) advance(processed, skipped int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.Progress.Processed += processed
	o.status.Skipped += skipped
}

// IsSyncFailure reports whether err aborted a run, and the stage it failed in.
func IsSyncFailure(err error) (domain.RunState, bool) {
	var sf *domain.SyncFailedError
	if errors.As(err, &sf) {
		return sf.Stage, true
	}
	return "", false
}
