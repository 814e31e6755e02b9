package mcpptype

import "time"

// EntryKind is the closed set of cached payload shapes.
type EntryKind string

const (
	KindTable EntryKind = "table"
	KindText  EntryKind = "text"
	KindJSON  EntryKind = "json"
)

// Table is the payload of a table-kind cached entry. Headers are ordered
// and distinct; each row has exactly len(Headers) cells.
type Table struct {
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
}

// Clone returns a deep copy so callers holding a cached entry cannot
// mutate cache-owned state.
func (t Table) Clone() Table {
	headers := make([]string, len(t.Headers))
	copy(headers, t.Headers)
	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]any, len(row))
		copy(r, row)
		rows[i] = r
	}
	return Table{Headers: headers, Rows: rows}
}

// ColumnIndex returns the index of a header, or -1 if absent.
func (t Table) ColumnIndex(column string) int {
	for i, h := range t.Headers {
		if h == column {
			return i
		}
	}
	return -1
}

// CacheMetadata describes the provenance and lifecycle of a cached entry.
type CacheMetadata struct {
	ToolName    string     `json:"tool_name"`
	CreatedAt   time.Time  `json:"created_at"`
	IsSensitive bool       `json:"is_sensitive"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// CachedEntry is a single tool-call result held by the Data Cache.
type CachedEntry struct {
	Kind     EntryKind     `json:"type"`
	Table    *Table        `json:"-"`
	Text     string        `json:"-"`
	JSON     any           `json:"-"`
	Metadata CacheMetadata `json:"metadata"`
}

// Clone deep-copies a table payload. A JSON payload is shared with the
// original, not copied, and metadata is copied shallowly (ExpiresAt still
// points at the same time value).
func (e CachedEntry) Clone() CachedEntry {
	cp := e
	if e.Table != nil {
		t := e.Table.Clone()
		cp.Table = &t
	}
	return cp
}

// Payload returns the raw payload for wire marshaling, matching the
// `{type, payload, metadata}` response shape.
func (e CachedEntry) Payload() any {
	switch e.Kind {
	case KindTable:
		if e.Table == nil {
			return Table{}
		}
		return *e.Table
	case KindText:
		return e.Text
	case KindJSON:
		return e.JSON
	default:
		return nil
	}
}

// NewTableEntry builds a sensitive table-kind cached entry.
func NewTableEntry(toolName string, table Table, createdAt time.Time) CachedEntry {
	t := table.Clone()
	return CachedEntry{
		Kind:  KindTable,
		Table: &t,
		Metadata: CacheMetadata{
			ToolName:    toolName,
			CreatedAt:   createdAt,
			IsSensitive: true,
		},
	}
}
