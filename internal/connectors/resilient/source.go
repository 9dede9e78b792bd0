// Package resilient wraps a RecordSource with bounded retries for rate
// limited calls and a circuit breaker that fails fast once the source keeps
// failing.
package resilient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/custodia-labs/refsync/internal/core/domain"
	"github.com/custodia-labs/refsync/internal/core/ports/driven"
	"github.com/custodia-labs/refsync/internal/logger"
)

// Defaults for Options.
const (
	DefaultMaxRetries       = 3
	DefaultInitialInterval  = 500 * time.Millisecond
	DefaultMaxInterval      = 10 * time.Second
	DefaultFailureThreshold = 5
	DefaultOpenTimeout      = 30 * time.Second
)

// Options configures a Source.
type Options struct {
	// MaxRetries bounds retries of rate-limited calls. Zero disables retry.
	MaxRetries int

	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration

	// MaxInterval caps a single backoff delay.
	MaxInterval time.Duration

	// FailureThreshold is the number of consecutive failed calls that opens
	// the breaker.
	FailureThreshold uint32

	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration

	// OnStateChange observes breaker transitions.
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultOptions returns production settings.
func DefaultOptions() Options {
	return Options{
		MaxRetries:       DefaultMaxRetries,
		InitialInterval:  DefaultInitialInterval,
		MaxInterval:      DefaultMaxInterval,
		FailureThreshold: DefaultFailureThreshold,
		OpenTimeout:      DefaultOpenTimeout,
	}
}

// Ensure Source implements the interface.
var _ driven.RecordSource = (*Source)(nil)

// Source decorates a RecordSource.
type Source struct {
	next driven.RecordSource
	opts Options
	cb   *gobreaker.CircuitBreaker[any]
}

// Wrap decorates next with retry and circuit breaking.
func Wrap(next driven.RecordSource, opts Options) *Source {
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = DefaultInitialInterval
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = DefaultMaxInterval
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = DefaultFailureThreshold
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = DefaultOpenTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	name := next.Name()
	threshold := opts.FailureThreshold
	onChange := opts.OnStateChange

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Cancellation says nothing about the source's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.With("source", name, "from", from.String(), "to", to.String()).
				Warn("circuit breaker state changed")
			if onChange != nil {
				onChange(name, from, to)
			}
		},
	})

	return &Source{next: next, opts: opts, cb: cb}
}

// Name returns the wrapped source's name.
func (s *Source) Name() string {
	return s.next.Name()
}

// State returns the breaker state.
func (s *Source) State() gobreaker.State {
	return s.cb.State()
}

// Count delegates to the wrapped source.
func (s *Source) Count(ctx context.Context, since *time.Time) (int, error) {
	var n int
	err := s.call(ctx, "count", func() error {
		var err error
		n, err = s.next.Count(ctx, since)
		return err
	})
	return n, err
}

// FetchPage delegates to the wrapped source.
func (s *Source) FetchPage(ctx context.Context, cursor domain.SyncCursor) ([]domain.SourceRecord, error) {
	var records []domain.SourceRecord
	err := s.call(ctx, "fetch page", func() error {
		var err error
		records, err = s.next.FetchPage(ctx, cursor)
		return err
	})
	return records, err
}

// call runs fn through the breaker, retrying rate-limited failures.
func (s *Source) call(ctx context.Context, op string, fn func() error) error {
	attempt := 0
	operation := func() error {
		attempt++
		_, err := s.cb.Execute(func() (any, error) {
			return nil, fn()
		})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return backoff.Permanent(fmt.Errorf("%s: circuit open: %w: %w", op, domain.ErrSourceUnavailable, err))
		case errors.Is(err, domain.ErrRateLimited):
			logger.With("source", s.Name(), "op", op).Debug("rate limited, attempt %d", attempt)
			return err
		default:
			return backoff.Permanent(err)
		}
	}

	return backoff.Retry(operation, backoff.WithContext(s.policy(), ctx))
}

func (s *Source) policy() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.opts.InitialInterval
	exp.MaxInterval = s.opts.MaxInterval
	exp.MaxElapsedTime = 0
	return backoff.WithMaxRetries(exp, uint64(s.opts.MaxRetries))
}
