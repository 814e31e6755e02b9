package dispatcher

import (
	"context"

	"github.com/mcpp-dev/mcpp-core/auth"
	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

type targetWire struct {
	Type        string         `json:"type"`
	Destination string         `json:"destination"`
	Purpose     string         `json:"purpose,omitempty"`
	LLMMetadata map[string]any `json:"llm_metadata,omitempty"`
}

func (t targetWire) toDomain() mcpptype.Target {
	return mcpptype.Target{
		Type:        mcpptype.TargetType(t.Type),
		Destination: t.Destination,
		Purpose:     t.Purpose,
		LLMMetadata: t.LLMMetadata,
	}
}

type requesterWire struct {
	HostID    string `json:"host_id"`
	SessionID string `json:"session_id,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

func (r requesterWire) toDomain() mcpptype.Requester {
	return mcpptype.Requester{HostID: r.HostID, SessionID: r.SessionID, Timestamp: r.Timestamp}
}

type usageContextWire struct {
	DataUsage string        `json:"data_usage"`
	Target    targetWire    `json:"target"`
	Requester requesterWire `json:"requester"`
}

// toDomain resolves the wire usage context, overriding the requester's
// host_id with the authenticated identity's principal when ctx carries
// one: the caller-supplied host_id in the request body is advisory, the
// identity auth derived from the transport is authoritative.
func (u *usageContextWire) toDomain(ctx context.Context) (mcpptype.UsageContext, *mcpptype.RPCError) {
	level, ok := mcpptype.ParseUsageLevel(u.DataUsage)
	if !ok {
		return mcpptype.UsageContext{}, mcpptype.NewRPCError(mcpptype.ErrInvalidDataUsage, "unrecognized data_usage: "+u.DataUsage)
	}
	uc := mcpptype.UsageContext{
		DataUsage: level,
		Target:    u.Target.toDomain(),
		Requester: u.Requester.toDomain(),
	}
	if principal := auth.PrincipalFromContext(ctx); principal != "" {
		uc.Requester.HostID = principal
	}
	return uc, nil
}

type entryWire struct {
	Type     string                 `json:"type"`
	Payload  any                    `json:"payload"`
	Metadata mcpptype.CacheMetadata `json:"metadata"`
}

func toEntryWire(entry mcpptype.CachedEntry) entryWire {
	return entryWire{Type: string(entry.Kind), Payload: entry.Payload(), Metadata: entry.Metadata}
}

type consentRequestWire struct {
	RequestID string     `json:"request_id"`
	ToolName  string     `json:"tool_name,omitempty"`
	Reasons   []string   `json:"reasons"`
	Message   string     `json:"message,omitempty"`
	Target    targetWire `json:"target"`
	DataUsage string     `json:"data_usage"`
	Deadline  string     `json:"deadline"`
}

func toConsentRequestWire(req *mcpptype.ConsentRequest) *consentRequestWire {
	if req == nil {
		return nil
	}
	return &consentRequestWire{
		RequestID: req.RequestID,
		ToolName:  req.ToolName,
		Reasons:   req.Reasons,
		Message:   req.Message,
		Target: targetWire{
			Type:        string(req.Target.Type),
			Destination: req.Target.Destination,
			Purpose:     req.Target.Purpose,
			LLMMetadata: req.Target.LLMMetadata,
		},
		DataUsage: req.DataUsageWire,
		Deadline:  req.Deadline.Format(rfc3339),
	}
}

const rfc3339 = "2006-01-02T15:04:05Z07:00"
