package toolexec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mcpp-dev/mcpp-core/mcpptype"
	"github.com/mcpp-dev/mcpp-core/secret"
)

// HTTPUpstream calls an upstream tool-calling server over HTTP: one POST
// per tool call, to baseURL+"/"+toolName, with the call arguments as the
// JSON body. The response is expected to carry {"kind": "table"|"text"|
// "json", "payload": ...}.
type HTTPUpstream struct {
	baseURL    string
	client     *http.Client
	authHeader string
}

// NewHTTPUpstream builds an HTTPUpstream. A nil client defaults to
// http.DefaultClient.
func NewHTTPUpstream(baseURL string, client *http.Client) *HTTPUpstream {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPUpstream{baseURL: baseURL, client: client}
}

// WithAuthHeader resolves authHeaderRef through resolver (expanding
// "${VAR}" references and "secretref:provider:ref" values) and attaches
// the result as the upstream's Authorization header on every call. A
// blank authHeaderRef is a no-op.
func (u *HTTPUpstream) WithAuthHeader(ctx context.Context, resolver *secret.Resolver, authHeaderRef string) (*HTTPUpstream, error) {
	if authHeaderRef == "" {
		return u, nil
	}
	resolved, err := resolver.ResolveValue(ctx, authHeaderRef)
	if err != nil {
		return nil, fmt.Errorf("toolexec: resolving upstream auth header: %w", err)
	}
	u.authHeader = resolved
	return u, nil
}

type upstreamResponse struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Call implements Upstream.
func (u *HTTPUpstream) Call(ctx context.Context, toolName string, args map[string]any) (mcpptype.CachedEntry, error) {
	body, err := json.Marshal(args)
	if err != nil {
		return mcpptype.CachedEntry{}, fmt.Errorf("toolexec: marshaling arguments for %s: %w", toolName, err)
	}

	url := u.baseURL + "/" + toolName
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return mcpptype.CachedEntry{}, fmt.Errorf("toolexec: building request for %s: %w", toolName, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if u.authHeader != "" {
		req.Header.Set("Authorization", u.authHeader)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return mcpptype.CachedEntry{}, fmt.Errorf("toolexec: calling upstream tool %s: %w", toolName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return mcpptype.CachedEntry{}, fmt.Errorf("toolexec: upstream tool %s returned status %d", toolName, resp.StatusCode)
	}

	var out upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return mcpptype.CachedEntry{}, fmt.Errorf("toolexec: decoding upstream response for %s: %w", toolName, err)
	}

	return decodeUpstreamEntry(out)
}

func decodeUpstreamEntry(out upstreamResponse) (mcpptype.CachedEntry, error) {
	switch mcpptype.EntryKind(out.Kind) {
	case mcpptype.KindTable:
		var table mcpptype.Table
		if err := json.Unmarshal(out.Payload, &table); err != nil {
			return mcpptype.CachedEntry{}, fmt.Errorf("toolexec: decoding table payload: %w", err)
		}
		return mcpptype.CachedEntry{Kind: mcpptype.KindTable, Table: &table}, nil
	case mcpptype.KindText:
		var text string
		if err := json.Unmarshal(out.Payload, &text); err != nil {
			return mcpptype.CachedEntry{}, fmt.Errorf("toolexec: decoding text payload: %w", err)
		}
		return mcpptype.CachedEntry{Kind: mcpptype.KindText, Text: text}, nil
	case mcpptype.KindJSON:
		var v any
		if err := json.Unmarshal(out.Payload, &v); err != nil {
			return mcpptype.CachedEntry{}, fmt.Errorf("toolexec: decoding json payload: %w", err)
		}
		return mcpptype.CachedEntry{Kind: mcpptype.KindJSON, JSON: v}, nil
	default:
		return mcpptype.CachedEntry{}, fmt.Errorf("toolexec: unrecognized upstream response kind %q", out.Kind)
	}
}
