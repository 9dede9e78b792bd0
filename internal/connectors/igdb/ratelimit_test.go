package igdb

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter_DefaultsInvalidRate(t *testing.T) {
	assert.Equal(t, DefaultRequestsPerSecond, NewRateLimiter(0).Limit())
	assert.Equal(t, 10.0, NewRateLimiter(10).Limit())
}

func TestRateLimiter_CheckRateLimit(t *testing.T) {
	r := NewRateLimiter(1000)

	assert.NoError(t, r.CheckRateLimit(nil))
	assert.NoError(t, r.CheckRateLimit(&http.Response{StatusCode: http.StatusOK}))

	err := r.CheckRateLimit(&http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}})
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
}

func TestRateLimiter_WaitHonoursRetryAfter(t *testing.T) {
	r := NewRateLimiter(1000)
	resp := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Header:     http.Header{HeaderRetryAfter: []string{"30"}},
	}
	require.Error(t, r.CheckRateLimit(resp))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
