// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for a sync run:
//
//   - RecordSource: Counts and pages through an external catalogue
//   - Transformer: Maps source records into persisted entities
//   - EntitySink: Idempotent, atomic batch upserts
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ProgressReporter: Observes batch completion. Nil disables reporting.
//   - EntityStore: Read access to synchronised entities.
//   - IdentityProvider: Resolves the principal behind the credentials.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
