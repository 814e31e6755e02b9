package dispatcher

import (
	"context"
	"net/http"

	"github.com/mcpp-dev/mcpp-core/auth"
	"github.com/mcpp-dev/mcpp-core/health"
)

// NewMux builds the HTTP surface: the JSON-RPC endpoint at /rpc and, when
// aggregator is non-nil, the health endpoints /healthz (liveness only),
// /readyz and /health (both backed by aggregator).
func NewMux(h *Handler, authenticator auth.Authenticator, aggregator *health.Aggregator) *http.ServeMux {
	mux := http.NewServeMux()

	var rpcHandler http.Handler = h
	if authenticator != nil {
		rpcHandler = withAuthentication(authenticator, rpcHandler)
	}
	mux.Handle("/rpc", auth.WithAuthHeaders(rpcHandler))

	if aggregator != nil {
		health.RegisterHandlers(mux, aggregator)
	}

	return mux
}

// withAuthentication authenticates the request and, on success, attaches
// the resulting identity to the request context so downstream handlers
// (mcpp/provide_consent in particular) can authorize against it. An
// authentication failure does not reject the request outright: requests
// that never touch provide_consent, or whose tools allow anonymous
// callers, still need to reach the dispatcher so its own policy and
// consent checks can run.
func withAuthentication(authenticator auth.Authenticator, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := &auth.AuthRequest{Headers: r.Header, Resource: r.URL.Path}
		ctx := r.Context()
		if authenticator.Supports(ctx, req) {
			result, err := authenticator.Authenticate(ctx, req)
			if err == nil && result != nil && result.Authenticated {
				ctx = auth.WithIdentity(ctx, result.Identity)
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
