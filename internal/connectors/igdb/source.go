package igdb

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/refsync/internal/core/domain"
	"github.com/custodia-labs/refsync/internal/core/ports/driven"
)

// EndpointGenres is the IGDB genres collection.
const EndpointGenres = "genres"

// genreFields are the fields requested for each genre.
var genreFields = []string{"id", "name", "slug", "url", "created_at", "updated_at"}

// Ensure GenreSource implements the interface.
var _ driven.RecordSource = (*GenreSource)(nil)

// genre is the IGDB wire representation of a genre.
type genre struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

type countResponse struct {
	Count int `json:"count"`
}

// GenreSource pages through IGDB genres.
type GenreSource struct {
	client *Client
}

// NewGenreSource creates a genre source backed by client.
func NewGenreSource(client *Client) *GenreSource {
	return &GenreSource{client: client}
}

// Name identifies the source in logs and metrics.
func (s *GenreSource) Name() string {
	return "igdb." + EndpointGenres
}

// Count returns the number of genres updated at or after since.
func (s *GenreSource) Count(ctx context.Context, since *time.Time) (int, error) {
	var resp countResponse
	q := Query{}.UpdatedSince(since)
	if err := s.client.Post(ctx, EndpointGenres+"/count", q, &resp); err != nil {
		return 0, fmt.Errorf("count genres: %w", err)
	}
	return resp.Count, nil
}

// FetchPage returns up to cursor.PageSize genres starting at cursor.Offset,
// ordered by id so pages stay stable across requests.
func (s *GenreSource) FetchPage(ctx context.Context, cursor domain.SyncCursor) ([]domain.SourceRecord, error) {
	q := Query{
		Fields: genreFields,
		Sort:   "id asc",
		Limit:  cursor.PageSize,
		Offset: cursor.Offset,
	}.UpdatedSince(cursor.Since)

	var genres []genre
	if err := s.client.Post(ctx, EndpointGenres, q, &genres); err != nil {
		return nil, fmt.Errorf("fetch genres at offset %d: %w", cursor.Offset, err)
	}

	records := make([]domain.SourceRecord, 0, len(genres))
	for _, g := range genres {
		records = append(records, g.toRecord())
	}
	return records, nil
}

func (g genre) toRecord() domain.SourceRecord {
	return domain.SourceRecord{
		ExternalID: g.ID,
		Name:       g.Name,
		Fields: map[string]any{
			"slug":       g.Slug,
			"url":        g.URL,
			"created_at": g.CreatedAt,
			"updated_at": g.UpdatedAt,
		},
	}
}
