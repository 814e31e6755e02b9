package datacache

import (
	"sync"

	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

// MemoryStore is an in-memory Data Cache. It is safe for concurrent use;
// a Put(id) happens-before any subsequent Get(id) observed by the same
// caller. Entries are deep-copied on both Put and Get so callers mutating
// a returned entry can never corrupt cache-owned state.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]mcpptype.CachedEntry
}

// Put unconditionally replaces the entry for callID.
func (s *MemoryStore) Put(callID string, entry mcpptype.CachedEntry) {
	cp := entry.Clone()
	s.mu.Lock()
	s.entries[callID] = cp
	s.mu.Unlock()
}

// Get retrieves the entry for callID. A per-entry expiry, if set, is
// checked lazily here and the entry is evicted once past it.
func (s *MemoryStore) Get(callID string) (mcpptype.CachedEntry, bool) {
	s.mu.RLock()
	entry, ok := s.entries[callID]
	s.mu.RUnlock()

	if !ok {
		return mcpptype.CachedEntry{}, false
	}

	if entry.Metadata.ExpiresAt != nil && now().After(*entry.Metadata.ExpiresAt) {
		s.mu.Lock()
		delete(s.entries, callID)
		s.mu.Unlock()
		return mcpptype.CachedEntry{}, false
	}

	return entry.Clone(), true
}

// Has reports whether callID currently has a live entry.
func (s *MemoryStore) Has(callID string) bool {
	_, ok := s.Get(callID)
	return ok
}

// Delete removes the entry for callID. Returns true if one existed.
func (s *MemoryStore) Delete(callID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[callID]; !ok {
		return false
	}
	delete(s.entries, callID)
	return true
}

// Keys returns all stored call IDs, in no particular order. Expired entries
// are not filtered here (eviction is lazy, as documented on Get); Len
// counts them the same way.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

// Clear removes every entry.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]mcpptype.CachedEntry)
	s.mu.Unlock()
}

// Len reports the number of entries currently stored (including any not
// yet lazily evicted past expiry).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ Store = (*MemoryStore)(nil)
