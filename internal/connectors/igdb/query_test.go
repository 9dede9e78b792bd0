package igdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuery_String(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"empty", Query{}, ""},
		{
			"full page",
			Query{Fields: []string{"id", "name"}, Sort: "id asc", Limit: 500, Offset: 1000},
			"fields id,name; sort id asc; limit 500; offset 1000;",
		},
		{
			"first page omits offset",
			Query{Fields: []string{"id"}, Limit: 500},
			"fields id; limit 500;",
		},
		{
			"combined filters",
			Query{Where: []string{"id > 1", "slug != null"}},
			"where id > 1 & slug != null;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.String())
		})
	}
}

func TestQuery_UpdatedSince(t *testing.T) {
	since := time.Unix(1700000000, 0)

	q := Query{Limit: 10}.UpdatedSince(&since)
	assert.Equal(t, "where updated_at >= 1700000000; limit 10;", q.String())

	assert.Equal(t, "limit 10;", Query{Limit: 10}.UpdatedSince(nil).String())
}

func TestQuery_UpdatedSinceDoesNotAliasWhere(t *testing.T) {
	since := time.Unix(5, 0)
	base := Query{Where: make([]string, 1, 4)}
	base.Where[0] = "id > 0"

	a := base.UpdatedSince(&since)
	b := base.UpdatedSince(nil)

	assert.Len(t, a.Where, 2)
	assert.Len(t, b.Where, 1)
	assert.Len(t, base.Where, 1)
}
