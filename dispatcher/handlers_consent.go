package dispatcher

import (
	"context"
	"encoding/json"

	"github.com/mcpp-dev/mcpp-core/auth"
	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

type provideConsentParams struct {
	RequestID   string `json:"request_id"`
	Decision    string `json:"decision"`
	RememberFor int    `json:"remember_for_minutes,omitempty"`
}

type provideConsentResult struct {
	Acknowledged bool `json:"acknowledged"`
}

func (h *Handler) handleProvideConsent(ctx context.Context, raw json.RawMessage) (any, *mcpptype.RPCError) {
	var params provideConsentParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, mcpptype.NewRPCError(mcpptype.ErrInvalidParams, "malformed mcpp/provide_consent params")
	}

	if rerr := h.authorizeProvideConsent(ctx); rerr != nil {
		return nil, rerr
	}

	decision := mcpptype.Decision(params.Decision)
	if decision != mcpptype.DecisionAllow && decision != mcpptype.DecisionDeny {
		return nil, mcpptype.NewRPCError(mcpptype.ErrInvalidParams, "decision must be \"allow\" or \"deny\"")
	}

	key, ok := h.Consent.Resolve(params.RequestID, decision)
	if !ok {
		return nil, mcpptype.NewRPCError(mcpptype.ErrInvalidParams, "no pending consent request with that request_id")
	}

	if params.RememberFor > 0 {
		h.Consent.Remember(key, decision, params.RememberFor)
	}

	return provideConsentResult{Acknowledged: true}, nil
}

// authorizeProvideConsent gates the resolution of a pending consent
// request behind h.Authorizer, when one is configured. The identity is
// expected to have been attached to the context by the host's
// authentication middleware.
func (h *Handler) authorizeProvideConsent(ctx context.Context) *mcpptype.RPCError {
	if h.Authorizer == nil {
		return nil
	}
	identity := auth.IdentityFromContext(ctx)
	err := h.Authorizer.Authorize(ctx, &auth.AuthzRequest{
		Subject:      identity,
		Resource:     "consent",
		Action:       "decide",
		ResourceType: "consent",
	})
	if err != nil {
		return mcpptype.NewRPCError(mcpptype.ErrInsufficientPerms, "not authorized to provide consent: "+err.Error())
	}
	return nil
}
