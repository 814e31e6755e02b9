package dispatcher

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

type toolSummaryWire struct {
	Name        string `json:"name"`
	IsSensitive bool   `json:"is_sensitive"`
}

func (h *Handler) handleToolsList() (any, *mcpptype.RPCError) {
	names := make([]string, 0, len(h.Tools))
	for name := range h.Tools {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]toolSummaryWire, 0, len(names))
	for _, name := range names {
		t := h.Tools[name]
		out = append(out, toolSummaryWire{Name: t.Name, IsSensitive: t.IsSensitive})
	}
	return struct {
		Tools []toolSummaryWire `json:"tools"`
	}{Tools: out}, nil
}

type toolsCallParams struct {
	Name       string         `json:"name"`
	Arguments  map[string]any `json:"arguments"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type toolsCallResult struct {
	Message     string                 `json:"message,omitempty"`
	RowCount    int                    `json:"row_count,omitempty"`
	ColumnNames []string               `json:"column_names,omitempty"`
	DataRefID   string                 `json:"data_ref_id,omitempty"`
	Entry       *entryWire             `json:"entry,omitempty"`
	Metadata    mcpptype.CacheMetadata `json:"-"`
}

// handleToolsCall runs a tool and populates the Data Cache. Unlike
// mcpp/get_data and mcpp/resolve_placeholders it is not gated by a usage
// context: the policy engine evaluates data usage when the caller later
// asks for the result, not at call time.
func (h *Handler) handleToolsCall(ctx context.Context, raw json.RawMessage) (any, *mcpptype.RPCError) {
	var params toolsCallParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, mcpptype.NewRPCError(mcpptype.ErrInvalidParams, "malformed tools/call params")
	}

	tool, ok := h.Tools[params.Name]
	if !ok {
		return nil, mcpptype.NewRPCError(mcpptype.ErrInvalidParams, "unknown tool: "+params.Name)
	}

	if rerr := h.validateArgs(tool, params.Arguments); rerr != nil {
		return nil, rerr
	}

	callID := params.ToolCallID
	if callID == "" {
		callID = newCallID()
	}
	resolvedArgs, _ := h.Resolver.ResolveWithTracking(params.Arguments)
	argsMap, _ := resolvedArgs.(map[string]any)

	result, err := h.ToolExec.Execute(ctx, tool, callID, argsMap)
	if err != nil {
		return nil, mcpptype.NewRPCError(mcpptype.ErrInternal, "tool execution failed: "+err.Error())
	}

	out := toolsCallResult{}
	if result.Summary != nil {
		out.Message = result.Summary.Message
		out.RowCount = result.Summary.RowCount
		out.ColumnNames = result.Summary.ColumnNames
		out.DataRefID = result.Summary.DataRefID
	}
	if result.Entry != nil {
		w := toEntryWire(*result.Entry)
		out.Entry = &w
	}
	return out, nil
}
