package consent

import (
	"sync"
	"time"

	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

// decisionCache is the remembered-decision store, keyed by Key.String().
// It follows the same sync.RWMutex-guarded map and lazy-expiry shape used
// elsewhere in this module for in-memory stores.
type decisionCache struct {
	mu      sync.RWMutex
	entries map[string]mcpptype.ConsentDecisionRecord
}

func newDecisionCache() *decisionCache {
	return &decisionCache{entries: make(map[string]mcpptype.ConsentDecisionRecord)}
}

// record writes through a remembered decision for key, valid for
// durationMinutes from now.
func (c *decisionCache) record(key string, decision mcpptype.Decision, durationMinutes int) {
	c.mu.Lock()
	c.entries[key] = mcpptype.ConsentDecisionRecord{
		Decision:        decision,
		InsertedAt:      now().Unix(),
		DurationMinutes: durationMinutes,
	}
	c.mu.Unlock()
}

// lookup returns the remembered decision for key, purging it first if its
// duration has elapsed.
func (c *decisionCache) lookup(key string) (mcpptype.Decision, bool) {
	c.mu.RLock()
	rec, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}

	expiry := time.Unix(rec.InsertedAt, 0).Add(time.Duration(rec.DurationMinutes) * time.Minute)
	if now().After(expiry) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}

	return rec.Decision, true
}
