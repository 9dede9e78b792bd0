package domain

import "time"

// SourceRecord is a raw record fetched from an external catalogue.
// It is the source client's output before transformation and is never
// modified after it is fetched.
type SourceRecord struct {
	// ExternalID is the record's identifier in the source. Zero means missing.
	ExternalID int64

	// Name is the record's display label.
	Name string

	// Fields holds any additional fields the source returned.
	Fields map[string]any
}

// Entity is the persisted form of a SourceRecord, keyed by ExternalID.
type Entity struct {
	// ExternalID is the unique key used for upserts.
	ExternalID int64

	// Name is the mutable display name.
	Name string

	// Slug is the URL-safe name, when the source provides one.
	Slug string

	// URL links to the record on the source's website.
	URL string

	// SourceUpdatedAt is when the source last changed the record.
	SourceUpdatedAt time.Time
}
