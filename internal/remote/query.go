package remote

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Query selects rows whose columns equal the given values. A column listing
// several values matches any of them.
type Query map[string][]string

// Reader reads rows from a collection.
type Reader interface {
	Select(ctx context.Context, collection string, q Query) ([]Record, error)
}

// Eq returns a single-column equality query.
func Eq(column, value string) Query {
	return Query{column: {value}}
}

// values renders q as PostgREST filter parameters.
func (q Query) values() url.Values {
	v := url.Values{"select": {"*"}}
	for col, vals := range q {
		switch len(vals) {
		case 0:
		case 1:
			v.Set(col, "eq."+vals[0])
		default:
			quoted := make([]string, len(vals))
			for i, s := range vals {
				quoted[i] = `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
			}
			v.Set(col, "in.("+strings.Join(quoted, ",")+")")
		}
	}
	return v
}

func (q Query) matches(rec Record) bool {
	for col, vals := range q {
		if len(vals) == 0 {
			continue
		}
		got, ok := rec[col]
		if !ok || got == nil || !slices.Contains(vals, fmt.Sprint(got)) {
			return false
		}
	}
	return true
}
