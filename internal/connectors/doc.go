// Package connectors groups the RecordSource implementations for external
// catalogues and the decorators that make them safe to page through.
package connectors
