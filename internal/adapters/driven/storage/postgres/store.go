// Package postgres provides a Postgres implementation of the entity ports
// using github.com/lib/pq. It mirrors the SQLite store: one EntityTable per
// reference table, each batch in its own transaction, one writer at a time.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/custodia-labs/refsync/internal/adapters/driven/storage/postgres/migrations"
	"github.com/custodia-labs/refsync/internal/core/domain"
	"github.com/custodia-labs/refsync/internal/core/ports/driven"
)

// Store is a Postgres-backed entity store.
type Store struct {
	db      *sql.DB
	writeMu sync.Mutex
}

// NewStore connects to Postgres at dsn and applies the schema.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", domain.ErrInvalidArgument)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to postgres: %v", domain.ErrPersistence, err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Genres returns the genre table as an entity sink and store.
func (s *Store) Genres() *EntityTable {
	return &EntityTable{store: s, table: "genres"}
}

// migrate executes every embedded schema file in name order.
// Files must be idempotent (CREATE ... IF NOT EXISTS).
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("listing schema files: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing %s: %w", name, err)
		}
	}
	return nil
}

// EntityTable implements driven.EntitySink and driven.EntityStore over one table.
type EntityTable struct {
	store *Store
	table string
}

var (
	_ driven.EntitySink  = (*EntityTable)(nil)
	_ driven.EntityStore = (*EntityTable)(nil)
)

// UpsertBatch inserts or updates entities in a single transaction and
// returns the number of rows inserted or changed.
func (t *EntityTable) UpsertBatch(ctx context.Context, entities []domain.Entity) (int, error) {
	if len(entities) == 0 {
		return 0, nil
	}

	t.store.writeMu.Lock()
	defer t.store.writeMu.Unlock()

	tx, err := t.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: beginning transaction: %v", domain.ErrPersistence, err)
	}
	defer tx.Rollback() //nolint:errcheck

	//nolint:gosec // table name is fixed by the store
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO `+t.table+` AS t (api_id, name, slug, url, source_updated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (api_id) DO UPDATE SET
			name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			url = EXCLUDED.url,
			source_updated_at = EXCLUDED.source_updated_at,
			updated_at = EXCLUDED.updated_at
		WHERE t.name IS DISTINCT FROM EXCLUDED.name
			OR t.slug IS DISTINCT FROM EXCLUDED.slug
			OR t.url IS DISTINCT FROM EXCLUDED.url
			OR t.source_updated_at IS DISTINCT FROM EXCLUDED.source_updated_at
	`)
	if err != nil {
		return 0, fmt.Errorf("%w: preparing statement: %v", domain.ErrPersistence, err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	written := 0
	for _, e := range entities {
		res, err := stmt.ExecContext(ctx, e.ExternalID, e.Name, e.Slug, e.URL, nullTime(e.SourceUpdatedAt), now)
		if err != nil {
			return 0, fmt.Errorf("%w: saving %s %d: %s", domain.ErrPersistence, t.table, e.ExternalID, describe(err))
		}
		if n, err := res.RowsAffected(); err == nil {
			written += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: committing transaction: %v", domain.ErrPersistence, err)
	}
	return written, nil
}

// List returns all entities ordered by api_id.
func (t *EntityTable) List(ctx context.Context) ([]domain.Entity, error) {
	//nolint:gosec // table name is fixed by the store
	rows, err := t.store.db.QueryContext(ctx,
		`SELECT api_id, name, slug, url, source_updated_at FROM `+t.table+` ORDER BY api_id`)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", t.table, err)
	}
	defer rows.Close()

	var entities []domain.Entity //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.Entity
		var updatedAt sql.NullTime
		if err := rows.Scan(&e.ExternalID, &e.Name, &e.Slug, &e.URL, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		if updatedAt.Valid {
			e.SourceUpdatedAt = updatedAt.Time.UTC()
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", t.table, err)
	}
	return entities, nil
}

// Get retrieves an entity by api_id.
func (t *EntityTable) Get(ctx context.Context, externalID int64) (*domain.Entity, error) {
	var e domain.Entity
	var updatedAt sql.NullTime
	//nolint:gosec // table name is fixed by the store
	err := t.store.db.QueryRowContext(ctx,
		`SELECT api_id, name, slug, url, source_updated_at FROM `+t.table+` WHERE api_id = $1`, externalID).
		Scan(&e.ExternalID, &e.Name, &e.Slug, &e.URL, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning entity: %w", err)
	}
	if updatedAt.Valid {
		e.SourceUpdatedAt = updatedAt.Time.UTC()
	}
	return &e, nil
}

// Count returns the number of rows in the table.
func (t *EntityTable) Count(ctx context.Context) (int, error) {
	var n int
	//nolint:gosec // table name is fixed by the store
	if err := t.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", t.table, err)
	}
	return n, nil
}

// describe adds the constraint name to Postgres errors.
func describe(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Constraint != "" {
		return fmt.Sprintf("%s (constraint %s)", pqErr.Message, pqErr.Constraint)
	}
	return err.Error()
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
