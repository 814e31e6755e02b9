package reference

import (
	"errors"
	"testing"
	"time"

	"github.com/mcpp-dev/mcpp-core/datacache"
	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

func contactsStore(t *testing.T) datacache.Store {
	t.Helper()
	store := datacache.NewMemoryStore()
	store.Put("t1", mcpptype.NewTableEntry("list_contacts", mcpptype.Table{
		Headers: []string{"Name", "Email"},
		Rows: [][]any{
			{"Ana Silva", "a@x.com"},
			{"Bo Park", "b@y.com"},
		},
	}, time.Unix(0, 0)))
	return store
}

func TestFinder_FuzzyMatchAboveThreshold(t *testing.T) {
	f := NewFinder(contactsStore(t))

	result, err := f.Find("t1", "ana silvaa", nil)
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	want := mcpptype.Placeholder{CallID: "t1", Row: 0, Column: "Name"}
	if result.Placeholder != want {
		t.Errorf("placeholder = %+v, want %+v", result.Placeholder, want)
	}
	if result.Similarity <= Threshold {
		t.Errorf("similarity = %v, want > %v", result.Similarity, Threshold)
	}
}

func TestFinder_NoMatchBelowThreshold(t *testing.T) {
	f := NewFinder(contactsStore(t))

	_, err := f.Find("t1", "zzzz", nil)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want *NotFoundError", err)
	}
	if nf.BestSimilarity > Threshold {
		t.Errorf("BestSimilarity = %v, expected <= %v for a non-match", nf.BestSimilarity, Threshold)
	}
}

func TestFinder_EmptyTableIsNotFound(t *testing.T) {
	store := datacache.NewMemoryStore()
	store.Put("t1", mcpptype.NewTableEntry("list_contacts", mcpptype.Table{
		Headers: []string{"Name", "Email"},
		Rows:    [][]any{},
	}, time.Unix(0, 0)))
	f := NewFinder(store)

	_, err := f.Find("t1", "anything", nil)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want *NotFoundError", err)
	}
}

func TestFinder_ColumnRestrictedSearch(t *testing.T) {
	f := NewFinder(contactsStore(t))

	column := "Email"
	result, err := f.Find("t1", "a@x.com", &column)
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if result.Placeholder.Column != "Email" {
		t.Errorf("column = %q, want Email", result.Placeholder.Column)
	}
	if result.CellsScanned != 2 {
		t.Errorf("cellsScanned = %d, want 2 (one per row, Name column skipped)", result.CellsScanned)
	}
}

func TestFinder_UnknownColumnErrors(t *testing.T) {
	f := NewFinder(contactsStore(t))

	column := "Phone"
	_, err := f.Find("t1", "ana", &column)
	if !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("err = %v, want ErrUnknownColumn", err)
	}
}

func TestFinder_NonTableEntryErrors(t *testing.T) {
	store := datacache.NewMemoryStore()
	store.Put("t1", mcpptype.CachedEntry{Kind: mcpptype.KindText, Text: "hello"})
	f := NewFinder(store)

	_, err := f.Find("t1", "hello", nil)
	if !errors.Is(err, ErrNotTable) {
		t.Fatalf("err = %v, want ErrNotTable", err)
	}
}

func TestFinder_MissingCacheEntryErrors(t *testing.T) {
	f := NewFinder(datacache.NewMemoryStore())

	_, err := f.Find("missing", "anything", nil)
	if !errors.Is(err, ErrNoCacheEntry) {
		t.Fatalf("err = %v, want ErrNoCacheEntry", err)
	}
}

func TestFinder_TiesBreakByScanOrder(t *testing.T) {
	store := datacache.NewMemoryStore()
	store.Put("t1", mcpptype.NewTableEntry("dupes", mcpptype.Table{
		Headers: []string{"Name"},
		Rows: [][]any{
			{"Ana Silva"},
			{"Ana Silva"},
		},
	}, time.Unix(0, 0)))
	f := NewFinder(store)

	result, err := f.Find("t1", "Ana Silva", nil)
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if result.Placeholder.Row != 0 {
		t.Errorf("row = %d, want 0 (first occurrence wins ties)", result.Placeholder.Row)
	}
}

func TestFinder_NonStringCellsAreStringified(t *testing.T) {
	store := datacache.NewMemoryStore()
	store.Put("t1", mcpptype.NewTableEntry("ids", mcpptype.Table{
		Headers: []string{"ID"},
		Rows:    [][]any{{12345}},
	}, time.Unix(0, 0)))
	f := NewFinder(store)

	result, err := f.Find("t1", "12345", nil)
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if result.Similarity != 1.0 {
		t.Errorf("similarity = %v, want 1.0 for exact stringified match", result.Similarity)
	}
}
