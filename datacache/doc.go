// Package datacache implements the MCPP Data Cache: a typed, in-memory
// store of tool-call results keyed by call ID, holding sensitive payloads
// that the rest of the protocol references only through opaque
// placeholders.
//
// It is the security-sensitive sibling of the [cache] package used
// elsewhere in this module: where [cache.Cache] caches non-sensitive
// tool results for performance, datacache.Store holds exactly the
// entries the rest of the protocol must never expose verbatim without
// policy approval.
//
// # Concurrency
//
// Store implementations must support concurrent readers and writers with
// per-key linearizability; no cross-key atomicity is required.
// [MemoryStore] follows the same sync.RWMutex + map pattern as
// [github.com/mcpp-dev/mcpp-core/cache.MemoryCache].
package datacache
