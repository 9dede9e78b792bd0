package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/refsync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/refsync/internal/core/domain"
	"github.com/custodia-labs/refsync/internal/core/ports/driven"
)

// DatabaseFile is the database file name inside the data directory.
const DatabaseFile = "refsync.db"

// Store is a unified SQLite-based storage that provides access to
// the entity tables through wrapper types.
type Store struct {
	db   *sql.DB
	path string

	// writeMu serialises upsert batches: one writer at a time.
	writeMu sync.Mutex
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.refsync/data/refsync.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".refsync", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Genres returns the genre table as an entity sink and store.
func (s *Store) Genres() *EntityTable {
	return &EntityTable{store: s, table: "genres"}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_genres.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Entity Table ====================

// EntityTable implements driven.EntitySink and driven.EntityStore over one
// table keyed by a unique api_id column.
type EntityTable struct {
	store *Store
	table string
}

var (
	_ driven.EntitySink  = (*EntityTable)(nil)
	_ driven.EntityStore = (*EntityTable)(nil)
)

// UpsertBatch inserts or updates entities in a single transaction and
// returns the number of rows inserted or changed. Rows whose values are
// unchanged are left untouched, so repeated batches leave identical state.
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

	//nolint:gosec // table name is fixed by the store, never user input
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO `+t.table+` (api_id, name, slug, url, source_updated_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(api_id) DO UPDATE SET
			name = excluded.name,
			slug = excluded.slug,
			url = excluded.url,
			source_updated_at = excluded.source_updated_at,
			updated_at = excluded.updated_at
		WHERE name IS NOT excluded.name
			OR slug IS NOT excluded.slug
			OR url IS NOT excluded.url
			OR source_updated_at IS NOT excluded.source_updated_at
	`)
	if err != nil {
		return 0, fmt.Errorf("%w: preparing statement: %v", domain.ErrPersistence, err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	written := 0
	for _, e := range entities {
		res, err := stmt.ExecContext(ctx, e.ExternalID, e.Name, e.Slug, e.URL,
			nullTime(e.SourceUpdatedAt), now, now)
		if err != nil {
			return 0, fmt.Errorf("%w: saving %s %d: %v", domain.ErrPersistence, t.table, e.ExternalID, err)
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
	rows, err := t.store.db.QueryContext(ctx, `
		SELECT api_id, name, slug, url, source_updated_at
		FROM `+t.table+` ORDER BY api_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", t.table, err)
	}
	defer rows.Close()

	var entities []domain.Entity //nolint:prealloc // size unknown from query
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", t.table, err)
	}
	return entities, nil
}

// Get retrieves an entity by api_id.
func (t *EntityTable) Get(ctx context.Context, externalID int64) (*domain.Entity, error) {
	//nolint:gosec // table name is fixed by the store
	row := t.store.db.QueryRowContext(ctx, `
		SELECT api_id, name, slug, url, source_updated_at
		FROM `+t.table+` WHERE api_id = ?
	`, externalID)

	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return e, err
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

// ==================== Helper Functions ====================

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(row scanner) (*domain.Entity, error) {
	var e domain.Entity
	var updatedAt sql.NullTime
	if err := row.Scan(&e.ExternalID, &e.Name, &e.Slug, &e.URL, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning entity: %w", err)
	}
	if updatedAt.Valid {
		e.SourceUpdatedAt = updatedAt.Time.UTC()
	}
	return &e, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
