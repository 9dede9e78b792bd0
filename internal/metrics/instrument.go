package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/refsync/internal/core/domain"
	"github.com/custodia-labs/refsync/internal/core/ports/driven"
)

// Ensure decorators implement the interfaces.
var (
	_ driven.RecordSource     = (*instrumentedSource)(nil)
	_ driven.EntitySink       = (*instrumentedSink)(nil)
	_ driven.ProgressReporter = (*Progress)(nil)
)

type instrumentedSource struct {
	next driven.RecordSource
}

// InstrumentSource records request counts and latency for src.
func InstrumentSource(src driven.RecordSource) driven.RecordSource {
	return &instrumentedSource{next: src}
}

func (s *instrumentedSource) Name() string {
	return s.next.Name()
}

func (s *instrumentedSource) Count(ctx context.Context, since *time.Time) (int, error) {
	start := time.Now()
	n, err := s.next.Count(ctx, since)
	s.observe("count", start, err)
	return n, err
}

func (s *instrumentedSource) FetchPage(ctx context.Context, cursor domain.SyncCursor) ([]domain.SourceRecord, error) {
	start := time.Now()
	records, err := s.next.FetchPage(ctx, cursor)
	s.observe("fetch_page", start, err)
	return records, err
}

func (s *instrumentedSource) observe(op string, start time.Time, err error) {
	name := s.next.Name()
	SourceRequestDuration.WithLabelValues(name, op).Observe(time.Since(start).Seconds())
	SourceRequests.WithLabelValues(name, op, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	default:
		return "error"
	}
}

type instrumentedSink struct {
	next driven.EntitySink
}

// InstrumentSink records batch outcomes and latency for sink.
func InstrumentSink(sink driven.EntitySink) driven.EntitySink {
	return &instrumentedSink{next: sink}
}

func (s *instrumentedSink) UpsertBatch(ctx context.Context, entities []domain.Entity) (int, error) {
	start := time.Now()
	n, err := s.next.UpsertBatch(ctx, entities)
	SinkBatchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		SinkBatches.WithLabelValues("failure").Inc()
		return n, err
	}
	SinkBatches.WithLabelValues("success").Inc()
	RecordsUpserted.Add(float64(n))
	return n, nil
}

// Progress is a ProgressReporter that feeds the run gauges.
type Progress struct{}

// Total records the run's record count.
func (Progress) Total(n int) {
	RecordsTotal.Set(float64(n))
}

// Advance counts processed records.
func (Progress) Advance(by int) {
	if by > 0 {
		RecordsProcessed.Add(float64(by))
	}
}

// Finish does nothing.
func (Progress) Finish() {}
