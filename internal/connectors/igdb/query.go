package igdb

import (
	"fmt"
	"strings"
	"time"
)

// Query builds an Apicalypse request body.
type Query struct {
	Fields []string
	Where  []string
	Sort   string
	Limit  int
	Offset int
}

// UpdatedSince restricts the query to records created or updated at or
// after since. A nil since leaves the query unchanged.
func (q Query) UpdatedSince(since *time.Time) Query {
	if since == nil {
		return q
	}
	where := make([]string, 0, len(q.Where)+1)
	where = append(where, q.Where...)
	q.Where = append(where, fmt.Sprintf("updated_at >= %d", since.Unix()))
	return q
}

// String renders the query, for example
// "fields id,name; where updated_at >= 10; sort id asc; limit 500; offset 0;".
func (q Query) String() string {
	var sb strings.Builder
	if len(q.Fields) > 0 {
		fmt.Fprintf(&sb, "fields %s;", strings.Join(q.Fields, ","))
	}
	if len(q.Where) > 0 {
		writeSep(&sb)
		fmt.Fprintf(&sb, "where %s;", strings.Join(q.Where, " & "))
	}
	if q.Sort != "" {
		writeSep(&sb)
		fmt.Fprintf(&sb, "sort %s;", q.Sort)
	}
	if q.Limit > 0 {
		writeSep(&sb)
		fmt.Fprintf(&sb, "limit %d;", q.Limit)
	}
	if q.Offset > 0 {
		writeSep(&sb)
		fmt.Fprintf(&sb, "offset %d;", q.Offset)
	}
	return sb.String()
}

func writeSep(sb *strings.Builder) {
	if sb.Len() > 0 {
		sb.WriteByte(' ')
	}
}
