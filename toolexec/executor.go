package toolexec

import (
	"context"
	"fmt"
	"time"

	"github.com/mcpp-dev/mcpp-core/cache"
	"github.com/mcpp-dev/mcpp-core/datacache"
	"github.com/mcpp-dev/mcpp-core/mcpptype"
	"github.com/mcpp-dev/mcpp-core/resilience"
)

// now is overridable in tests; production code always uses time.Now.
var now = time.Now

// Upstream calls the actual tool implementation. Implementations are out
// of scope for this module; Executor only orchestrates caching and
// resilience around whatever Upstream is wired in.
type Upstream interface {
	Call(ctx context.Context, toolName string, args map[string]any) (mcpptype.CachedEntry, error)
}

// UpstreamFunc adapts an ordinary function to Upstream.
type UpstreamFunc func(ctx context.Context, toolName string, args map[string]any) (mcpptype.CachedEntry, error)

// Call invokes the function.
func (f UpstreamFunc) Call(ctx context.Context, toolName string, args map[string]any) (mcpptype.CachedEntry, error) {
	return f(ctx, toolName, args)
}

// Summary is the tools/call response shape for sensitive tools: the raw
// payload never leaves the core, only this description plus a reference
// the caller can later pass to mcpp/get_data.
type Summary struct {
	Message     string
	RowCount    int
	ColumnNames []string
	DataRefID   string
}

// Result is what Execute returns: exactly one of Summary (sensitive
// tools) or Entry (non-sensitive tools) is populated.
type Result struct {
	Summary *Summary
	Entry   *mcpptype.CachedEntry
}

// Executor runs a tool call through resilience and caching, populating
// the Data Cache for sensitive results.
type Executor struct {
	upstream   Upstream
	dataCache  datacache.Store
	cacheMW    *cache.CacheMiddleware
	resilience *resilience.Executor
}

// NewExecutor builds an Executor. cacheMW may be nil, in which case
// non-sensitive calls run uncached; resilience may be nil, in which case
// calls run with no circuit breaking, retry, or timeout.
func NewExecutor(upstream Upstream, dataCache datacache.Store, cacheMW *cache.CacheMiddleware, res *resilience.Executor) *Executor {
	return &Executor{upstream: upstream, dataCache: dataCache, cacheMW: cacheMW, resilience: res}
}

// Execute runs tool with args. callID identifies the call for Data Cache
// storage and is required when tool is sensitive; it is ignored
// otherwise.
func (e *Executor) Execute(ctx context.Context, tool *mcpptype.Tool, callID string, args map[string]any) (Result, error) {
	if tool != nil && tool.IsSensitive {
		return e.executeSensitive(ctx, tool, callID, args)
	}
	return e.executeNonSensitive(ctx, tool, args)
}

func (e *Executor) executeSensitive(ctx context.Context, tool *mcpptype.Tool, callID string, args map[string]any) (Result, error) {
	var entry mcpptype.CachedEntry
	err := e.runResilient(ctx, func(ctx context.Context) error {
		var callErr error
		entry, callErr = e.upstream.Call(ctx, tool.Name, args)
		return callErr
	})
	if err != nil {
		return Result{}, err
	}

	entry.Metadata.ToolName = tool.Name
	entry.Metadata.CreatedAt = now()
	entry.Metadata.IsSensitive = true
	e.dataCache.Put(callID, entry)

	return Result{Summary: summarize(entry, callID)}, nil
}

func (e *Executor) executeNonSensitive(ctx context.Context, tool *mcpptype.Tool, args map[string]any) (Result, error) {
	toolName := ""
	if tool != nil {
		toolName = tool.Name
	}

	call := func(ctx context.Context, id string, input any) ([]byte, error) {
		var entry mcpptype.CachedEntry
		err := e.runResilient(ctx, func(ctx context.Context) error {
			var callErr error
			entry, callErr = e.upstream.Call(ctx, id, args)
			return callErr
		})
		if err != nil {
			return nil, err
		}
		entry.Metadata.ToolName = toolName
		entry.Metadata.CreatedAt = now()
		return marshalEntry(entry)
	}

	var raw []byte
	var err error
	if e.cacheMW != nil {
		raw, err = e.cacheMW.Execute(ctx, toolName, args, nil, call)
	} else {
		raw, err = call(ctx, toolName, args)
	}
	if err != nil {
		return Result{}, err
	}

	entry, err := unmarshalEntry(raw)
	if err != nil {
		return Result{}, err
	}
	return Result{Entry: &entry}, nil
}

func (e *Executor) runResilient(ctx context.Context, op func(context.Context) error) error {
	if e.resilience == nil {
		return op(ctx)
	}
	return e.resilience.Execute(ctx, op)
}

func summarize(entry mcpptype.CachedEntry, callID string) *Summary {
	switch entry.Kind {
	case mcpptype.KindTable:
		var headers []string
		rows := 0
		if entry.Table != nil {
			headers = entry.Table.Headers
			rows = len(entry.Table.Rows)
		}
		return &Summary{
			Message:     fmt.Sprintf("%d row(s) cached", rows),
			RowCount:    rows,
			ColumnNames: headers,
			DataRefID:   callID,
		}
	case mcpptype.KindText:
		return &Summary{Message: "text result cached", DataRefID: callID}
	default:
		return &Summary{Message: "result cached", DataRefID: callID}
	}
}
