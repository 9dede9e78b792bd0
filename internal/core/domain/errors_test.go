package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidArgument", ErrInvalidArgument},
		{"ErrInvalidRecord", ErrInvalidRecord},
		{"ErrSourceUnavailable", ErrSourceUnavailable},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrPersistence", ErrPersistence},
		{"ErrSyncFailed", ErrSyncFailed},
		{"ErrSyncInProgress", ErrSyncInProgress},
		{"ErrNotAuthenticated", ErrNotAuthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Distinct(t *testing.T) {
	assert.False(t, errors.Is(ErrRateLimited, ErrSourceUnavailable))
	assert.False(t, errors.Is(ErrPersistence, ErrSyncFailed))
	assert.False(t, errors.Is(ErrInvalidRecord, ErrInvalidArgument))
}

func TestSyncFailedError_IsAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("upsert: %w", ErrPersistence)
	err := error(&SyncFailedError{Stage: RunPersistingBatch, Offset: 500, Cause: cause})

	assert.True(t, errors.Is(err, ErrSyncFailed))
	assert.True(t, errors.Is(err, ErrPersistence))
	assert.False(t, errors.Is(err, ErrSourceUnavailable))

	var sf *SyncFailedError
	assert.True(t, errors.As(err, &sf))
	assert.Equal(t, RunPersistingBatch, sf.Stage)
	assert.Equal(t, 500, sf.Offset)
}

func TestSyncFailedError_Message(t *testing.T) {
	err := &SyncFailedError{Stage: RunFetchingBatch, Offset: 1000, Cause: ErrRateLimited}
	assert.Equal(t, "sync failed while fetching batch at offset 1000: rate limited", err.Error())
}

func TestSyncFailedError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("genres: %w", &SyncFailedError{Stage: RunCountingTotal, Cause: ErrSourceUnavailable})
	assert.True(t, errors.Is(err, ErrSyncFailed))
	assert.True(t, errors.Is(err, ErrSourceUnavailable))
}
