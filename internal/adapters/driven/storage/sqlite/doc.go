// Package sqlite provides a SQLite-based implementation of the entity ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Each reference table is exposed as an
// EntityTable implementing both driven.EntitySink and driven.EntityStore.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.refsync/data/refsync.db
//
// # Thread Safety
//
// Upsert batches are serialised through a store-wide write lock and each batch
// runs in its own transaction.
package sqlite
