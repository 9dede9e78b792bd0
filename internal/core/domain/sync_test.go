package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSince(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *time.Time
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"whitespace", "   ", nil, false},
		{"epoch", "0", ptrTime(time.Unix(0, 0).UTC()), false},
		{"timestamp", "1700000000", ptrTime(time.Unix(1700000000, 0).UTC()), false},
		{"padded", " 1700000000 ", ptrTime(time.Unix(1700000000, 0).UTC()), false},
		{"word", "yesterday", nil, true},
		{"date", "2024-01-01", nil, true},
		{"float", "1700000000.5", nil, true},
		{"negative", "-5", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSince(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidArgument))
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSyncCursor_Next(t *testing.T) {
	since := time.Unix(10, 0)
	c := SyncCursor{PageSize: DefaultPageSize, Since: &since}

	c = c.Next()
	assert.Equal(t, 500, c.Offset)
	c = c.Next()
	assert.Equal(t, 1000, c.Offset)
	assert.Equal(t, &since, c.Since)
}

func TestProgressState_Percent(t *testing.T) {
	assert.Equal(t, 100.0, ProgressState{}.Percent())
	assert.Equal(t, 50.0, ProgressState{Processed: 600, Total: 1200}.Percent())
	assert.Equal(t, 100.0, ProgressState{Processed: 1300, Total: 1200}.Percent())
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
