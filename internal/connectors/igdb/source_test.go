package igdb

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/refsync/internal/core/domain"
)

func TestGenreSource_Name(t *testing.T) {
	assert.Equal(t, "igdb.genres", NewGenreSource(nil).Name())
}

func TestGenreSource_Count(t *testing.T) {
	fake, srv := newFakeIGDB(t)
	fake.handle("/genres/count", jsonHandler(`{"count":23}`))
	source := NewGenreSource(newTestClient(t, srv.URL))

	since := time.Unix(1600000000, 0)
	n, err := source.Count(context.Background(), &since)

	require.NoError(t, err)
	assert.Equal(t, 23, n)
	assert.Equal(t, "where updated_at >= 1600000000;", fake.bodies[0])
}

func TestGenreSource_FetchPage(t *testing.T) {
	fake, srv := newFakeIGDB(t)
	fake.handle("/genres", jsonHandler(`[
		{"id":2,"name":"Point-and-click","slug":"point-and-click","url":"https://www.igdb.com/genres/point-and-click","created_at":1297555200,"updated_at":1323302400},
		{"id":4,"name":"Fighting","slug":"fighting","url":"https://www.igdb.com/genres/fighting","created_at":1297555200,"updated_at":1323302400}
	]`))
	source := NewGenreSource(newTestClient(t, srv.URL))

	records, err := source.FetchPage(context.Background(), domain.SyncCursor{Offset: 500, PageSize: 500})

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[0].ExternalID)
	assert.Equal(t, "Point-and-click", records[0].Name)
	assert.Equal(t, "point-and-click", records[0].Fields["slug"])
	assert.Equal(t, int64(1323302400), records[0].Fields["updated_at"])
	assert.Equal(t, int64(4), records[1].ExternalID)
	assert.Equal(t,
		"fields id,name,slug,url,created_at,updated_at; sort id asc; limit 500; offset 500;",
		fake.bodies[0])
}

func TestGenreSource_FetchPage_Empty(t *testing.T) {
	fake, srv := newFakeIGDB(t)
	fake.handle("/genres", jsonHandler(`[]`))

	records, err := NewGenreSource(newTestClient(t, srv.URL)).
		FetchPage(context.Background(), domain.SyncCursor{PageSize: 500})

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGenreSource_FetchPage_RateLimited(t *testing.T) {
	fake, srv := newFakeIGDB(t)
	fake.handle("/genres", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := NewGenreSource(newTestClient(t, srv.URL)).
		FetchPage(context.Background(), domain.SyncCursor{PageSize: 500})

	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Contains(t, err.Error(), "offset 0")
}

func TestGenreSource_Count_Unavailable(t *testing.T) {
	fake, srv := newFakeIGDB(t)
	fake.handle("/genres/count", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := NewGenreSource(newTestClient(t, srv.URL)).Count(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestGenreSource_Count_Unauthorized(t *testing.T) {
	fake, srv := newFakeIGDB(t)
	fake.handle("/genres/count", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := NewGenreSource(newTestClient(t, srv.URL)).Count(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}
