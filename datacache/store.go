package datacache

import (
	"time"

	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

// Store is the Data Cache contract: put/get/has/delete/keys/clear over
// call-ID-addressed entries. Missing keys are a normal return, never an
// error.
type Store interface {
	// Put unconditionally replaces the entry for call_id.
	Put(callID string, entry mcpptype.CachedEntry)

	// Get retrieves the entry for call_id. ok is false on miss or expiry.
	Get(callID string) (entry mcpptype.CachedEntry, ok bool)

	// Has reports whether call_id currently has a live entry.
	Has(callID string) bool

	// Delete removes the entry for call_id. Returns true if one existed.
	Delete(callID string) bool

	// Keys returns all stored call IDs, in no particular order, including
	// expired entries not yet lazily evicted.
	Keys() []string

	// Clear removes every entry.
	Clear()

	// Len reports the number of stored entries, including expired entries
	// not yet lazily evicted, for health reporting.
	Len() int
}

// NewMemoryStore constructs an empty, ready-to-use in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]mcpptype.CachedEntry)}
}

// now is overridable in tests; production code always uses time.Now.
var now = time.Now
