package dispatcher

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mcpp-dev/mcpp-core/mcpptype"
	"github.com/mcpp-dev/mcpp-core/reference"
)

type getDataParams struct {
	CallID string            `json:"tool_call_id"`
	Usage  *usageContextWire `json:"usage_context,omitempty"`
}

func (h *Handler) handleGetData(ctx context.Context, raw json.RawMessage) (any, *mcpptype.RPCError) {
	var params getDataParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, mcpptype.NewRPCError(mcpptype.ErrInvalidParams, "malformed mcpp/get_data params")
	}

	entry, ok := h.DataCache.Get(params.CallID)
	if !ok {
		return nil, mcpptype.NewRPCError(mcpptype.ErrCacheMiss, "no cached entry for call_id: "+params.CallID)
	}

	if params.Usage != nil {
		uc, rerr := params.Usage.toDomain(ctx)
		if rerr != nil {
			return nil, rerr
		}

		var tool *mcpptype.Tool
		if entry.Metadata.ToolName != "" {
			tool = h.Tools[entry.Metadata.ToolName]
		}

		decision, _ := h.decisionForUsage(tool, entry.Metadata.ToolName, uc)
		if !decision.Allowed {
			if decision.ConsentRequest != nil {
				return nil, mcpptype.NewRPCError(mcpptype.ErrConsentRequired, "consent required to access this data").
					WithData(toConsentRequestWire(decision.ConsentRequest))
			}
			code := mcpptype.ErrInsufficientPerms
			if decision.ErrorCode != nil {
				code = *decision.ErrorCode
			}
			return nil, mcpptype.NewRPCError(code, decision.ErrorMessage).WithData(decision.ValidationDetails)
		}
	}

	return toEntryWire(entry), nil
}

type findReferenceParams struct {
	CallID  string  `json:"tool_call_id"`
	Keyword string  `json:"keyword"`
	Column  *string `json:"column_name,omitempty"`
}

type findReferenceResult struct {
	Placeholder    string  `json:"placeholder,omitempty"`
	Similarity     float64 `json:"similarity,omitempty"`
	CellsScanned   int     `json:"cells_scanned,omitempty"`
	BestSimilarity float64 `json:"best_similarity,omitempty"`
}

func (h *Handler) handleFindReference(raw json.RawMessage) (any, *mcpptype.RPCError) {
	var params findReferenceParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, mcpptype.NewRPCError(mcpptype.ErrInvalidParams, "malformed mcpp/find_reference params")
	}

	result, err := h.Finder.Find(params.CallID, params.Keyword, params.Column)
	if err != nil {
		var notFound *reference.NotFoundError
		switch {
		case errors.As(err, &notFound):
			return nil, mcpptype.NewRPCError(mcpptype.ErrReferenceNotFound, "no cell matched above the similarity threshold").
				WithData(findReferenceResult{BestSimilarity: notFound.BestSimilarity})
		case errors.Is(err, reference.ErrNoCacheEntry):
			return nil, mcpptype.NewRPCError(mcpptype.ErrCacheMiss, "no cached entry for call_id: "+params.CallID)
		case errors.Is(err, reference.ErrNotTable):
			return nil, mcpptype.NewRPCError(mcpptype.ErrInvalidParams, "cached entry is not a table")
		case errors.Is(err, reference.ErrUnknownColumn):
			return nil, mcpptype.NewRPCError(mcpptype.ErrInvalidParams, "unknown column")
		default:
			return nil, mcpptype.NewRPCError(mcpptype.ErrInternal, err.Error())
		}
	}

	return findReferenceResult{
		Placeholder:  result.Placeholder.String(),
		Similarity:   result.Similarity,
		CellsScanned: result.CellsScanned,
	}, nil
}

type resolvePlaceholdersParams struct {
	Value    json.RawMessage   `json:"data"`
	Usage    *usageContextWire `json:"usage_context,omitempty"`
	ToolName string            `json:"tool_name,omitempty"`
}

type resolvePlaceholdersResult struct {
	Value         any      `json:"value"`
	TotalFound    int      `json:"total_found"`
	TotalResolved int      `json:"total_resolved"`
	TotalFailed   int      `json:"total_failed"`
	Unresolved    []string `json:"unresolved,omitempty"`
}

func (h *Handler) handleResolvePlaceholders(ctx context.Context, raw json.RawMessage) (any, *mcpptype.RPCError) {
	var params resolvePlaceholdersParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, mcpptype.NewRPCError(mcpptype.ErrInvalidParams, "malformed mcpp/resolve_placeholders params")
	}

	var value any
	if err := json.Unmarshal(params.Value, &value); err != nil {
		return nil, mcpptype.NewRPCError(mcpptype.ErrInvalidParams, "value is not valid JSON")
	}

	if params.Usage != nil {
		uc, rerr := params.Usage.toDomain(ctx)
		if rerr != nil {
			return nil, rerr
		}

		var tool *mcpptype.Tool
		if params.ToolName != "" {
			tool = h.Tools[params.ToolName]
		}

		decision, _ := h.decisionForUsage(tool, params.ToolName, uc)
		if !decision.Allowed {
			if decision.ConsentRequest != nil {
				return nil, mcpptype.NewRPCError(mcpptype.ErrConsentRequired, "consent required to resolve this data").
					WithData(toConsentRequestWire(decision.ConsentRequest))
			}
			code := mcpptype.ErrInsufficientPerms
			if decision.ErrorCode != nil {
				code = *decision.ErrorCode
			}
			return nil, mcpptype.NewRPCError(code, decision.ErrorMessage).WithData(decision.ValidationDetails)
		}
	}

	resolved, tracking := h.Resolver.ResolveWithTracking(value)
	if tracking.Failed > 0 {
		return nil, mcpptype.NewRPCError(mcpptype.ErrResolutionFailed, "one or more placeholders failed to resolve").
			WithData(resolvePlaceholdersResult{
				Value:         resolved,
				TotalFound:    tracking.Total,
				TotalResolved: tracking.Resolved,
				TotalFailed:   tracking.Failed,
				Unresolved:    tracking.Unresolved,
			})
	}

	return resolvePlaceholdersResult{
		Value:         resolved,
		TotalFound:    tracking.Total,
		TotalResolved: tracking.Resolved,
		TotalFailed:   tracking.Failed,
	}, nil
}
