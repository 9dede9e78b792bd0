package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/refsync/internal/adapters/driven/storage/postgres/migrations"
	"github.com/custodia-labs/refsync/internal/core/domain"
)

func TestNewStore_RequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestNullTime(t *testing.T) {
	assert.False(t, nullTime(time.Time{}).Valid)

	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	nt := nullTime(ts)
	assert.True(t, nt.Valid)
	assert.Equal(t, time.UTC, nt.Time.Location())
	assert.True(t, ts.Equal(nt.Time))
}

func TestSchemaIsEmbedded(t *testing.T) {
	content, err := migrations.FS.ReadFile("001_genres.sql")
	assert.NoError(t, err)
	assert.Contains(t, string(content), "UNIQUE (api_id)")
}
