package toolexec

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mcpp-dev/mcpp-core/cache"
	"github.com/mcpp-dev/mcpp-core/datacache"
	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

func tableUpstream(calls *int) Upstream {
	return UpstreamFunc(func(ctx context.Context, toolName string, args map[string]any) (mcpptype.CachedEntry, error) {
		*calls++
		return mcpptype.CachedEntry{
			Kind: mcpptype.KindTable,
			Table: &mcpptype.Table{
				Headers: []string{"ID", "Name"},
				Rows:    [][]any{{"1", "Ana"}},
			},
		}, nil
	})
}

func TestExecutor_SensitiveToolReturnsSummaryAndPopulatesDataCache(t *testing.T) {
	calls := 0
	store := datacache.NewMemoryStore()
	exec := NewExecutor(tableUpstream(&calls), store, nil, nil)

	tool := &mcpptype.Tool{Name: "lookup_customer", IsSensitive: true}
	result, err := exec.Execute(context.Background(), tool, "call-1", map[string]any{"id": "1"})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result.Summary == nil {
		t.Fatal("Summary = nil, want populated")
	}
	if result.Summary.RowCount != 1 || len(result.Summary.ColumnNames) != 2 {
		t.Errorf("summary = %+v", result.Summary)
	}
	if result.Summary.DataRefID != "call-1" {
		t.Errorf("DataRefID = %q, want call-1", result.Summary.DataRefID)
	}
	if result.Entry != nil {
		t.Error("Entry should be nil for a sensitive tool result")
	}

	entry, ok := store.Get("call-1")
	if !ok {
		t.Fatal("datacache has no entry for call-1")
	}
	if !entry.Metadata.IsSensitive || entry.Metadata.ToolName != "lookup_customer" {
		t.Errorf("stored metadata = %+v", entry.Metadata)
	}
}

func TestExecutor_NonSensitiveToolReturnsFullEntry(t *testing.T) {
	calls := 0
	store := datacache.NewMemoryStore()
	exec := NewExecutor(tableUpstream(&calls), store, nil, nil)

	tool := &mcpptype.Tool{Name: "list_public_docs"}
	result, err := exec.Execute(context.Background(), tool, "", nil)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result.Entry == nil {
		t.Fatal("Entry = nil, want populated")
	}
	if result.Summary != nil {
		t.Error("Summary should be nil for a non-sensitive tool result")
	}
	if store.Len() != 0 {
		t.Errorf("datacache should stay empty for non-sensitive tools, len = %d", store.Len())
	}
}

func TestExecutor_NonSensitiveToolUsesCacheMiddleware(t *testing.T) {
	calls := 0
	store := datacache.NewMemoryStore()
	memCache := cache.NewMemoryCache(cache.DefaultPolicy())
	mw := cache.NewCacheMiddleware(memCache, cache.NewDefaultKeyer(), cache.DefaultPolicy(), nil)
	exec := NewExecutor(tableUpstream(&calls), store, mw, nil)

	tool := &mcpptype.Tool{Name: "list_public_docs"}
	args := map[string]any{"q": "x"}

	if _, err := exec.Execute(context.Background(), tool, "", args); err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if _, err := exec.Execute(context.Background(), tool, "", args); err != nil {
		t.Fatalf("second Execute: %v", err)
	}

	if calls != 1 {
		t.Errorf("upstream calls = %d, want 1 (second call should hit cache)", calls)
	}
}

func TestExecutor_PropagatesUpstreamError(t *testing.T) {
	failing := UpstreamFunc(func(ctx context.Context, toolName string, args map[string]any) (mcpptype.CachedEntry, error) {
		return mcpptype.CachedEntry{}, errors.New("upstream exploded")
	})
	store := datacache.NewMemoryStore()
	exec := NewExecutor(failing, store, nil, nil)

	tool := &mcpptype.Tool{Name: "broken", IsSensitive: true}
	_, err := exec.Execute(context.Background(), tool, "call-x", nil)
	if err == nil {
		t.Fatal("Execute returned nil error, want propagated upstream failure")
	}
	if store.Has("call-x") {
		t.Error("datacache should not be populated on upstream failure")
	}
}

func TestExecutor_SummarizeUsesFixedClock(t *testing.T) {
	fixed := time.Unix(1_700_000_000, 0)
	oldNow := now
	now = func() time.Time { return fixed }
	defer func() { now = oldNow }()

	calls := 0
	store := datacache.NewMemoryStore()
	exec := NewExecutor(tableUpstream(&calls), store, nil, nil)
	tool := &mcpptype.Tool{Name: "lookup_customer", IsSensitive: true}

	if _, err := exec.Execute(context.Background(), tool, "call-2", nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	entry, _ := store.Get("call-2")
	if !entry.Metadata.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", entry.Metadata.CreatedAt, fixed)
	}
}
