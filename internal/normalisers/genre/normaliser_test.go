package genre

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/refsync/internal/core/domain"
)

func TestNormaliser_Transform(t *testing.T) {
	n := New()

	entity, err := n.Transform(domain.SourceRecord{
		ExternalID: 12,
		Name:       "  Role-playing   (RPG) ",
		Fields: map[string]any{
			FieldSlug:      "role-playing-rpg",
			FieldURL:       "https://www.igdb.com/genres/role-playing-rpg",
			FieldUpdatedAt: int64(1323216000),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(12), entity.ExternalID)
	assert.Equal(t, "Role-playing (RPG)", entity.Name)
	assert.Equal(t, "role-playing-rpg", entity.Slug)
	assert.Equal(t, "https://www.igdb.com/genres/role-playing-rpg", entity.URL)
	assert.Equal(t, time.Unix(1323216000, 0).UTC(), entity.SourceUpdatedAt)
}

func TestNormaliser_DerivesSlugWhenMissing(t *testing.T) {
	entity, err := New().Transform(domain.SourceRecord{ExternalID: 9, Name: "Puzzle & Logic"})
	require.NoError(t, err)
	assert.Equal(t, "puzzle-logic", entity.Slug)
	assert.True(t, entity.SourceUpdatedAt.IsZero())
}

func TestNormaliser_RejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name   string
		record domain.SourceRecord
	}{
		{"missing id", domain.SourceRecord{Name: "Shooter"}},
		{"negative id", domain.SourceRecord{ExternalID: -1, Name: "Shooter"}},
		{"missing name", domain.SourceRecord{ExternalID: 5}},
		{"blank name", domain.SourceRecord{ExternalID: 5, Name: " \t "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Transform(tt.record)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidRecord))
		})
	}
}

func TestNormaliser_IsPure(t *testing.T) {
	record := domain.SourceRecord{ExternalID: 4, Name: "Fighting", Fields: map[string]any{FieldUpdatedAt: float64(1700000000)}}

	first, err := New().Transform(record)
	require.NoError(t, err)
	second, err := New().Transform(record)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTimeField(t *testing.T) {
	ts := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, ts, timeField(map[string]any{"t": ts}, "t"))
	assert.Equal(t, ts, timeField(map[string]any{"t": ts.Unix()}, "t"))
	assert.Equal(t, ts, timeField(map[string]any{"t": int(ts.Unix())}, "t"))
	assert.True(t, timeField(map[string]any{"t": "yesterday"}, "t").IsZero())
	assert.True(t, timeField(map[string]any{"t": int64(0)}, "t").IsZero())
	assert.True(t, timeField(nil, "t").IsZero())
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "real-time-strategy-rts", Slugify("Real Time Strategy (RTS)"))
	assert.Equal(t, "hack-and-slash-beat-em-up", Slugify("Hack and slash/Beat 'em up"))
	assert.Equal(t, "", Slugify("--"))
}
