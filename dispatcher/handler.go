package dispatcher

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcpp-dev/mcpp-core/auth"
	"github.com/mcpp-dev/mcpp-core/consent"
	"github.com/mcpp-dev/mcpp-core/datacache"
	"github.com/mcpp-dev/mcpp-core/mcpptype"
	"github.com/mcpp-dev/mcpp-core/observe"
	"github.com/mcpp-dev/mcpp-core/placeholder"
	"github.com/mcpp-dev/mcpp-core/policy"
	"github.com/mcpp-dev/mcpp-core/reference"
	"github.com/mcpp-dev/mcpp-core/toolexec"
)

// Handler is the JSON-RPC 2.0 HTTP entry point wiring every MCPP
// component together.
type Handler struct {
	Tools     map[string]*mcpptype.Tool
	DataCache datacache.Store
	Resolver  *placeholder.Resolver
	Finder    *reference.Finder
	Policy    *policy.Evaluator
	Consent   *consent.Coordinator
	ToolExec  *toolexec.Executor

	// Authorizer gates mcpp/provide_consent when non-nil: only a caller
	// whose authenticated identity is authorized for the "decide" action on
	// the "consent" resource may resolve a pending request.
	Authorizer auth.Authorizer

	// Observability, optional.
	Observe *observe.Middleware

	schemaCacheOnce sync.Once
	schemaCache     *schemaCache
}

var newCallID = func() string { return uuid.NewString() }

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, nil, mcpptype.NewRPCError(mcpptype.ErrInvalidParams, "malformed JSON-RPC request body"))
		return
	}

	ctx := r.Context()
	result, rerr := h.dispatch(ctx, req.Method, req.Params)
	if rerr != nil {
		writeError(w, req.ID, rerr)
		return
	}
	writeResult(w, req.ID, result)
}

func (h *Handler) dispatch(ctx context.Context, method string, params json.RawMessage) (any, *mcpptype.RPCError) {
	call := func(ctx context.Context) (any, *mcpptype.RPCError) {
		switch method {
		case "tools/list":
			return h.handleToolsList()
		case "tools/call":
			return h.handleToolsCall(ctx, params)
		case "mcpp/get_data":
			return h.handleGetData(ctx, params)
		case "mcpp/find_reference":
			return h.handleFindReference(params)
		case "mcpp/resolve_placeholders":
			return h.handleResolvePlaceholders(ctx, params)
		case "mcpp/provide_consent":
			return h.handleProvideConsent(ctx, params)
		default:
			return nil, mcpptype.NewRPCError(mcpptype.ErrMethodNotFound, "unknown method: "+method)
		}
	}

	if h.Observe == nil {
		return call(ctx)
	}

	var result any
	var rerr *mcpptype.RPCError
	meta := observe.ToolMeta{Name: method}
	_, _ = h.Observe.Wrap(func(ctx context.Context, _ observe.ToolMeta, _ any) (any, error) {
		result, rerr = call(ctx)
		if rerr != nil {
			return nil, rerr
		}
		return result, nil
	})(ctx, meta, params)
	return result, rerr
}

// decisionForUsage consults the remembered-decision cache before falling
// back to a fresh policy evaluation, per the Consent Coordinator's
// "consult the decision cache before issuing a new consent request"
// contract.
func (h *Handler) decisionForUsage(tool *mcpptype.Tool, toolName string, uc mcpptype.UsageContext) (policy.Result, consent.Key) {
	key := consent.Key{
		HostID:      uc.Requester.HostID,
		Destination: uc.Target.Destination,
		DataUsage:   uc.DataUsage,
		ToolName:    toolName,
	}

	if remembered, ok := h.Consent.LookupRemembered(key); ok {
		if remembered == mcpptype.DecisionAllow {
			return policy.Result{Allowed: true}, key
		}
		code := mcpptype.ErrConsentDenied
		return policy.Result{ErrorCode: &code, ErrorMessage: "remembered decision: deny"}, key
	}

	result := h.Policy.Evaluate(tool, uc)
	if result.ConsentRequest != nil {
		deadline := time.Until(result.ConsentRequest.Deadline)
		go h.Consent.Begin(context.Background(), result.ConsentRequest.RequestID, key, deadline)
	}
	return result, key
}
