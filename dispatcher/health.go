package dispatcher

import (
	"context"
	"fmt"

	"github.com/mcpp-dev/mcpp-core/health"
)

// RegisterHealthChecks wires the Data Cache, the Consent Coordinator, and
// the loaded policy configuration into agg so /readyz and /health reflect
// the state of all three: the cache check reports its current entry
// count, the consent check confirms the coordinator is reachable (it only
// ever reports healthy, since an in-memory coordinator with no reachable
// dependency has no failure mode of its own beyond a process crash), and
// the policy check confirms a policy evaluator was actually loaded.
func (h *Handler) RegisterHealthChecks(agg *health.Aggregator) {
	agg.Register("data_cache", health.NewCheckerFunc("data_cache", func(ctx context.Context) health.Result {
		keys := h.DataCache.Keys()
		return health.Healthy(fmt.Sprintf("%d cached entries", len(keys)))
	}))

	agg.Register("consent_coordinator", health.NewCheckerFunc("consent_coordinator", func(ctx context.Context) health.Result {
		if h.Consent == nil {
			return health.Result{Status: health.StatusUnhealthy, Message: "coordinator not configured"}
		}
		return health.Healthy("coordinator reachable")
	}))

	agg.Register("policy", health.NewCheckerFunc("policy", func(ctx context.Context) health.Result {
		if h.Policy == nil {
			return health.Result{Status: health.StatusUnhealthy, Message: "no policy configuration loaded"}
		}
		return health.Healthy(fmt.Sprintf("%d tools configured", len(h.Tools)))
	}))
}
