package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultPageSize is the number of records fetched and persisted per batch.
const DefaultPageSize = 500

// SyncCursor is the position of a sync run within the source.
// It lives only for the duration of one run.
type SyncCursor struct {
	// Offset is the index of the first record of the next page.
	Offset int

	// PageSize is the fixed number of records requested per page.
	PageSize int

	// Since restricts the run to records created or updated at or after it.
	// Nil means no restriction.
	Since *time.Time
}

// Next returns the cursor for the following page.
func (c SyncCursor) Next() SyncCursor {
	c.Offset += c.PageSize
	return c
}

// ProgressState is the cumulative progress of a sync run.
type ProgressState struct {
	// Processed counts fetched records, including skipped invalid ones.
	Processed int

	// Total is the record count read once at run start.
	Total int
}

// Percent returns the completion percentage, capped at 100.
func (p ProgressState) Percent() float64 {
	if p.Total <= 0 {
		return 100
	}
	pct := float64(p.Processed) / float64(p.Total) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// RunState is a state of the sync run state machine.
type RunState string

const (
	RunIdle              RunState = "idle"
	RunCountingTotal     RunState = "counting total"
	RunFetchingBatch     RunState = "fetching batch"
	RunTransformingBatch RunState = "transforming batch"
	RunPersistingBatch   RunState = "persisting batch"
	RunDone              RunState = "done"
	RunFailed            RunState = "failed"
)

// ParseSince parses an optional since filter given as UNIX seconds.
// An empty string means no filter and returns nil.
func ParseSince(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: since %q must be a valid UNIX timestamp", ErrInvalidArgument, s)
	}
	if secs < 0 {
		return nil, fmt.Errorf("%w: since %q must not be negative", ErrInvalidArgument, s)
	}

	t := time.Unix(secs, 0).UTC()
	return &t, nil
}
