// Package domain defines the core business entities for refsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceRecord: A raw record fetched from an external catalogue
//   - Entity: The normalised, persisted form of a record
//   - SyncCursor: The position of a sync run within the source
//   - ProgressState: Cumulative progress of a sync run
//   - Principal: The identity behind the configured credentials
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
