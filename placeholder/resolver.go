package placeholder

import (
	"fmt"
	"strings"

	"github.com/mcpp-dev/mcpp-core/datacache"
	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

// Resolver resolves placeholders against a Data Cache.
type Resolver struct {
	store datacache.Store
}

// NewResolver builds a Resolver backed by store.
func NewResolver(store datacache.Store) *Resolver {
	return &Resolver{store: store}
}

// ResolveWithTracking walks v (a JSON-shaped value: string, []any,
// map[string]any, or any other scalar) substituting placeholders, and
// returns the resolved value plus the aggregate Tracking for the whole
// walk.
func (r *Resolver) ResolveWithTracking(v any) (any, Tracking) {
	var tr Tracking
	resolved := r.walk(v, &tr)
	return resolved, tr
}

// Resolve is a convenience wrapper that discards the tracking record.
func (r *Resolver) Resolve(v any) any {
	resolved, _ := r.ResolveWithTracking(v)
	return resolved
}

func (r *Resolver) walk(v any, tr *Tracking) any {
	switch val := v.(type) {
	case string:
		return r.resolveString(val, tr)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = r.walk(elem, tr)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = r.walk(elem, tr)
		}
		return out
	default:
		return v
	}
}

// resolveString applies the sole-match and embedded-match substitution
// rules to a single string.
func (r *Resolver) resolveString(s string, tr *Tracking) any {
	if ph, ok := mcpptype.MatchSolePlaceholder(s); ok {
		value, ok := r.lookup(ph)
		if !ok {
			tr.recordFailed(s)
			return s
		}
		tr.recordResolved()
		return value
	}

	matches := mcpptype.FindEmbeddedPlaceholders(s)
	if len(matches) == 0 {
		return s
	}

	var b strings.Builder
	cursor := 0
	for _, m := range matches {
		b.WriteString(s[cursor:m.Start])
		value, ok := r.lookup(m.Placeholder)
		if !ok {
			tr.recordFailed(m.Full)
			b.WriteString(m.Full)
		} else {
			tr.recordResolved()
			b.WriteString(stringify(value))
		}
		cursor = m.End
	}
	b.WriteString(s[cursor:])
	return b.String()
}

// lookup resolves a single placeholder against the cache. Only table
// entries are resolvable: text/json entries fail every placeholder aimed
// at them.
func (r *Resolver) lookup(ph mcpptype.Placeholder) (any, bool) {
	entry, ok := r.store.Get(ph.CallID)
	if !ok || entry.Kind != mcpptype.KindTable || entry.Table == nil {
		return nil, false
	}
	col := entry.Table.ColumnIndex(ph.Column)
	if col < 0 {
		return nil, false
	}
	if ph.Row < 0 || ph.Row >= len(entry.Table.Rows) {
		return nil, false
	}
	row := entry.Table.Rows[ph.Row]
	if col >= len(row) {
		return nil, false
	}
	return row[col], true
}

// stringify renders a resolved cell value as text for embedded
// substitution, using each value's natural text rendering.
func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
