package placeholder

import (
	"reflect"
	"testing"
	"time"

	"github.com/mcpp-dev/mcpp-core/datacache"
	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

func newStoreWithAges(t *testing.T) datacache.Store {
	t.Helper()
	store := datacache.NewMemoryStore()
	store.Put("t1", mcpptype.NewTableEntry("lookup_customer", mcpptype.Table{
		Headers: []string{"ID", "Age"},
		Rows:    [][]any{{"1", 42}},
	}, time.Unix(0, 0)))
	return store
}

func TestResolver_SolePlaceholderPreservesType(t *testing.T) {
	store := newStoreWithAges(t)
	r := NewResolver(store)

	resolved, tr := r.ResolveWithTracking("{t1.0.Age}")
	if resolved != 42 {
		t.Fatalf("resolved = %#v (%T), want int 42", resolved, resolved)
	}
	if !reflect.DeepEqual(tr, Tracking{Total: 1, Resolved: 1}) {
		t.Errorf("tracking = %+v", tr)
	}
}

func TestResolver_EmbeddedPlaceholdersStringify(t *testing.T) {
	store := newStoreWithAges(t)
	r := NewResolver(store)

	resolved, tr := r.ResolveWithTracking("User {t1.0.ID}/{t1.0.Age}")
	if resolved != "User 1/42" {
		t.Fatalf("resolved = %#v, want %q", resolved, "User 1/42")
	}
	if tr.Total != 2 || tr.Resolved != 2 || tr.Failed != 0 {
		t.Errorf("tracking = %+v", tr)
	}
}

func TestResolver_RoundTripEveryCell(t *testing.T) {
	store := datacache.NewMemoryStore()
	store.Put("t1", mcpptype.NewTableEntry("search", mcpptype.Table{
		Headers: []string{"ID", "Name"},
		Rows: [][]any{
			{"1", "Ana"},
			{"2", "Bo"},
		},
	}, time.Unix(0, 0)))
	r := NewResolver(store)

	entry, _ := store.Get("t1")
	for rowIdx, row := range entry.Table.Rows {
		for colIdx, header := range entry.Table.Headers {
			ph := mcpptype.Placeholder{CallID: "t1", Row: rowIdx, Column: header}
			resolved := r.Resolve(ph.String())
			if !reflect.DeepEqual(resolved, row[colIdx]) {
				t.Errorf("resolve(%s) = %#v, want %#v", ph.String(), resolved, row[colIdx])
			}
		}
	}
}

func TestResolver_NonExistentColumnLeavesPlaceholder(t *testing.T) {
	store := newStoreWithAges(t)
	r := NewResolver(store)

	resolved, tr := r.ResolveWithTracking("{t1.0.Nonexistent}")
	if resolved != "{t1.0.Nonexistent}" {
		t.Fatalf("resolved = %#v, want placeholder left in place", resolved)
	}
	if tr.Failed != 1 || tr.Resolved != 0 {
		t.Errorf("tracking = %+v", tr)
	}
	if len(tr.Unresolved) != 1 || tr.Unresolved[0] != "{t1.0.Nonexistent}" {
		t.Errorf("unresolved = %v", tr.Unresolved)
	}
}

func TestResolver_UnknownCallIDFails(t *testing.T) {
	store := datacache.NewMemoryStore()
	r := NewResolver(store)

	resolved, tr := r.ResolveWithTracking("{missing.0.Col}")
	if resolved != "{missing.0.Col}" {
		t.Fatalf("resolved = %#v", resolved)
	}
	if tr.Failed != 1 {
		t.Errorf("tracking = %+v", tr)
	}
}

func TestResolver_NonTableEntryFails(t *testing.T) {
	store := datacache.NewMemoryStore()
	store.Put("t1", mcpptype.CachedEntry{Kind: mcpptype.KindText, Text: "hello"})
	r := NewResolver(store)

	resolved, tr := r.ResolveWithTracking("{t1.0.Col}")
	if resolved != "{t1.0.Col}" {
		t.Fatalf("resolved = %#v", resolved)
	}
	if tr.Resolved != 0 || tr.Failed != 1 {
		t.Errorf("tracking = %+v", tr)
	}
}

func TestResolver_StructureWalk(t *testing.T) {
	store := newStoreWithAges(t)
	r := NewResolver(store)

	input := map[string]any{
		"age":   "{t1.0.Age}",
		"items": []any{"{t1.0.Age}", "literal", 7},
		"keep":  "{t1.0.Age}",
	}
	resolved, tr := r.ResolveWithTracking(input)
	out := resolved.(map[string]any)

	if out["age"] != 42 {
		t.Errorf("age = %#v", out["age"])
	}
	items := out["items"].([]any)
	if items[0] != 42 || items[1] != "literal" || items[2] != 7 {
		t.Errorf("items = %#v", items)
	}
	if tr.Total != 3 || tr.Resolved != 3 {
		t.Errorf("tracking = %+v", tr)
	}
}

func TestResolver_IdempotentOnFullSuccess(t *testing.T) {
	store := newStoreWithAges(t)
	r := NewResolver(store)

	first, _ := r.ResolveWithTracking("{t1.0.Age}")
	second, tr2 := r.ResolveWithTracking(first)

	if second != first {
		t.Fatalf("second pass changed value: %#v vs %#v", second, first)
	}
	if !reflect.DeepEqual(tr2, Tracking{}) {
		t.Errorf("second pass tracking = %+v, want zero value", tr2)
	}
}

func TestResolver_IdempotentOnPartialFailure(t *testing.T) {
	store := newStoreWithAges(t)
	r := NewResolver(store)

	first, tr1 := r.ResolveWithTracking("{t1.0.Missing}")
	second, tr2 := r.ResolveWithTracking(first)

	if second != first {
		t.Fatalf("second pass should not change an unresolved placeholder: %#v vs %#v", second, first)
	}
	if !reflect.DeepEqual(tr1, tr2) {
		t.Errorf("repeated resolution of a still-failing placeholder should report the same counts: %+v vs %+v", tr1, tr2)
	}
}
