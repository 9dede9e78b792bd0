//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/custodia-labs/refsync/internal/core/domain"
)

const (
	postgresImage    = "postgres:16-alpine"
	postgresPassword = "refsync"
)

// startPostgres runs a throwaway Postgres container and returns a store bound to it.
func startPostgres(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       "refsync",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		container.Terminate(ctx) //nolint:errcheck
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:%s@%s:%s/refsync?sslmode=disable", postgresPassword, host, port.Port())
	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close() //nolint:errcheck
	})
	return store
}

func TestPostgres_UpsertIsIdempotent(t *testing.T) {
	store := startPostgres(t)
	ctx := context.Background()
	genres := store.Genres()

	batch := []domain.Entity{
		{ExternalID: 2, Name: "Point-and-click", Slug: "point-and-click"},
		{ExternalID: 4, Name: "Fighting", Slug: "fighting", SourceUpdatedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	written, err := genres.UpsertBatch(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	written, err = genres.UpsertBatch(ctx, batch)
	require.NoError(t, err)
	assert.Zero(t, written)

	n, err := genres.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPostgres_UpdateChangesName(t *testing.T) {
	store := startPostgres(t)
	ctx := context.Background()
	genres := store.Genres()

	_, err := genres.UpsertBatch(ctx, []domain.Entity{{ExternalID: 5, Name: "Shooter"}})
	require.NoError(t, err)
	_, err = genres.UpsertBatch(ctx, []domain.Entity{{ExternalID: 5, Name: "Shooter (FPS)"}})
	require.NoError(t, err)

	got, err := genres.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Shooter (FPS)", got.Name)
}

func TestPostgres_FailedBatchRollsBack(t *testing.T) {
	store := startPostgres(t)
	ctx := context.Background()
	genres := store.Genres()

	_, err := genres.UpsertBatch(ctx, []domain.Entity{
		{ExternalID: 7, Name: "Music"},
		{ExternalID: 8, Name: ""},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPersistence))
	assert.Contains(t, err.Error(), "constraint")

	list, err := genres.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
