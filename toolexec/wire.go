package toolexec

import (
	"encoding/json"

	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

// wireEntry is a full round-trippable encoding of mcpptype.CachedEntry,
// used only for the non-sensitive cache.Cache byte payload; CachedEntry
// itself intentionally hides Table/Text/JSON from its own json tags
// because wire responses use the narrower {type, payload, metadata}
// shape instead.
type wireEntry struct {
	Kind     mcpptype.EntryKind     `json:"kind"`
	Table    *mcpptype.Table        `json:"table,omitempty"`
	Text     string                 `json:"text,omitempty"`
	JSON     any                    `json:"json,omitempty"`
	Metadata mcpptype.CacheMetadata `json:"metadata"`
}

func marshalEntry(entry mcpptype.CachedEntry) ([]byte, error) {
	return json.Marshal(wireEntry{
		Kind:     entry.Kind,
		Table:    entry.Table,
		Text:     entry.Text,
		JSON:     entry.JSON,
		Metadata: entry.Metadata,
	})
}

func unmarshalEntry(data []byte) (mcpptype.CachedEntry, error) {
	var w wireEntry
	if err := json.Unmarshal(data, &w); err != nil {
		return mcpptype.CachedEntry{}, err
	}
	return mcpptype.CachedEntry{
		Kind:     w.Kind,
		Table:    w.Table,
		Text:     w.Text,
		JSON:     w.JSON,
		Metadata: w.Metadata,
	}, nil
}
