// Package genre normalises IGDB genre records.
package genre

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/custodia-labs/refsync/internal/core/domain"
	"github.com/custodia-labs/refsync/internal/core/ports/driven"
)

// Field names read from SourceRecord.Fields.
const (
	FieldSlug      = "slug"
	FieldURL       = "url"
	FieldUpdatedAt = "updated_at"
)

// Ensure Normaliser implements the interface.
var _ driven.Transformer = (*Normaliser)(nil)

// Normaliser maps genre records into entities.
type Normaliser struct{}

// New creates a new genre normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Transform converts a genre record into an entity.
// Records without a positive identifier or a non-blank name are rejected
// with domain.ErrInvalidRecord.
func (n *Normaliser) Transform(record domain.SourceRecord) (domain.Entity, error) {
	if record.ExternalID <= 0 {
		return domain.Entity{}, fmt.Errorf("%w: missing identifier", domain.ErrInvalidRecord)
	}

	name := collapseSpaces(record.Name)
	if name == "" {
		return domain.Entity{}, fmt.Errorf("%w: genre %d has no name", domain.ErrInvalidRecord, record.ExternalID)
	}

	slug := strings.TrimSpace(stringField(record.Fields, FieldSlug))
	if slug == "" {
		slug = Slugify(name)
	}

	return domain.Entity{
		ExternalID:      record.ExternalID,
		Name:            name,
		Slug:            slug,
		URL:             strings.TrimSpace(stringField(record.Fields, FieldURL)),
		SourceUpdatedAt: timeField(record.Fields, FieldUpdatedAt),
	}, nil
}

// Slugify lowercases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	var sb strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return sb.String()
}

// collapseSpaces trims s and replaces inner whitespace runs with one space.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

// timeField accepts a time.Time or UNIX seconds as any numeric type.
func timeField(fields map[string]any, key string) time.Time {
	switch v := fields[key].(type) {
	case time.Time:
		return v.UTC()
	case int64:
		return unix(v)
	case int:
		return unix(int64(v))
	case float64:
		return unix(int64(v))
	default:
		return time.Time{}
	}
}

func unix(secs int64) time.Time {
	if secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}
