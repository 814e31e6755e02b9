package consent

import (
	"context"
	"sync"
	"time"

	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

// now is overridable in tests; production code always uses time.Now.
var now = time.Now

// pendingRequest is a one-shot, single-producer/single-consumer
// awaitable: Resolve sends at most once on a capacity-1 channel, so it
// never blocks regardless of whether a waiter is parked yet.
type pendingRequest struct {
	result chan mcpptype.Decision
	keyCtx Key
}

// Coordinator owns the pending-request table and the remembered-decision
// cache. Both are guarded independently so neither ever holds a lock
// across an awaited consent decision.
type Coordinator struct {
	mu      sync.Mutex
	pending map[string]*pendingRequest

	cache *decisionCache
}

// NewCoordinator builds an empty Coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		pending: make(map[string]*pendingRequest),
		cache:   newDecisionCache(),
	}
}

// Begin registers a pending consent request under requestID and parks
// until Resolve is called, ctx is canceled, or timeout elapses. keyCtx is
// the (host_id, destination, data_usage, tool_name) the decision-cache
// key must be formed from if the eventual decision is remembered; the
// dispatcher supplies it because callers of provide_consent do not
// resupply that context.
func (c *Coordinator) Begin(ctx context.Context, requestID string, keyCtx Key, timeout time.Duration) (mcpptype.Decision, error) {
	req := &pendingRequest{result: make(chan mcpptype.Decision, 1), keyCtx: keyCtx}

	c.mu.Lock()
	c.pending[requestID] = req
	c.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case decision := <-req.result:
		return decision, nil
	case <-timer.C:
		c.drop(requestID)
		return "", mcpptype.NewRPCError(mcpptype.ErrConsentTimeout, "consent decision timed out")
	case <-ctx.Done():
		c.drop(requestID)
		return "", ctx.Err()
	}
}

// drop removes a pending request so a decision arriving after
// cancellation or timeout is silently discarded.
func (c *Coordinator) drop(requestID string) {
	c.mu.Lock()
	delete(c.pending, requestID)
	c.mu.Unlock()
}

// Resolve wakes the awaiter parked on requestID with decision. It returns
// the keyCtx supplied to Begin (so the caller can record a remembered
// decision) and true on success; it returns false if no pending request
// matches, because it was already resolved, dropped, or never existed. A
// request is resolved at most once: concurrent Resolve calls on the same
// id race on the map-deletion lock, and exactly one of them wins.
func (c *Coordinator) Resolve(requestID string, decision mcpptype.Decision) (Key, bool) {
	c.mu.Lock()
	req, ok := c.pending[requestID]
	if ok {
		delete(c.pending, requestID)
	}
	c.mu.Unlock()

	if !ok {
		return Key{}, false
	}

	req.result <- decision
	return req.keyCtx, true
}

// Remember records decision for key, valid for durationMinutes.
func (c *Coordinator) Remember(key Key, decision mcpptype.Decision, durationMinutes int) {
	c.cache.record(key.String(), decision, durationMinutes)
}

// LookupRemembered returns a previously remembered decision for key, if
// any and still fresh.
func (c *Coordinator) LookupRemembered(key Key) (mcpptype.Decision, bool) {
	return c.cache.lookup(key.String())
}
