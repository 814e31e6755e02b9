// Package toolexec executes tool calls on behalf of the dispatcher,
// standing in front of the actual upstream tool implementations (which
// are out of scope for this module).
//
// Non-sensitive results are cached with cache.CacheMiddleware for
// performance, exactly as the underlying cache package was built to do.
// Sensitive results are instead written to the Data Cache and returned
// to the caller only as a summary, never as the raw payload. Every call
// runs through a resilience.Executor for circuit breaking, retry, and
// timeout around the upstream round trip.
package toolexec
