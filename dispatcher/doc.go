// Package dispatcher owns the JSON-RPC 2.0 HTTP surface: tools/list,
// tools/call, mcpp/get_data, mcpp/find_reference,
// mcpp/resolve_placeholders, and mcpp/provide_consent.
//
// Handlers never block waiting for a consent decision: on prompt, a
// handler returns CONSENT_REQUIRED immediately with the consent request
// attached as the JSON-RPC error's data field, and the host is expected
// to call mcpp/provide_consent out of band and re-issue the original
// call. consent.Coordinator's Begin/await primitive still runs, in a
// detached goroutine started when the request is issued, purely to
// evict the pending entry once its deadline passes; nothing in this
// package waits on it synchronously.
package dispatcher
