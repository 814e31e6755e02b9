package reference

import (
	"fmt"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/mcpp-dev/mcpp-core/datacache"
	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

// Threshold is the minimum similarity (exclusive) a cell must exceed to be
// returned as a match.
const Threshold = 0.7

// jaroWinklerBoostThreshold and prefixSize are the parameters smetrics
// expects; 0.7/4 reproduce the standard Winkler-boosted Jaro similarity.
const (
	jaroWinklerBoostThreshold = 0.7
	jaroWinklerPrefixSize     = 4
)

// Result is the outcome of a successful Find.
type Result struct {
	Placeholder  mcpptype.Placeholder
	Similarity   float64
	CellsScanned int
}

// ErrNoCacheEntry, ErrNotTable, and ErrUnknownColumn are the invalid-input
// failure modes; NotFoundError is the no-match-above-threshold outcome and
// carries the best similarity observed.
var (
	ErrNoCacheEntry  = fmt.Errorf("reference: no cache entry for call id")
	ErrNotTable      = fmt.Errorf("reference: cache entry is not a table")
	ErrUnknownColumn = fmt.Errorf("reference: unknown column")
)

// NotFoundError reports that no cell exceeded Threshold, carrying the best
// observed similarity for diagnostics.
type NotFoundError struct {
	BestSimilarity float64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("reference: no match above threshold (best=%.4f)", e.BestSimilarity)
}

// Finder fuzzy-searches cached tables to mint placeholders.
type Finder struct {
	store datacache.Store
}

// NewFinder builds a Finder backed by store.
func NewFinder(store datacache.Store) *Finder {
	return &Finder{store: store}
}

// Find scans the cells of the table cached under callID (optionally
// restricted to a single column) and returns the best Jaro-Winkler match
// for keyword strictly above Threshold. Ties are broken by scan order:
// row-major, then header order.
func (f *Finder) Find(callID, keyword string, column *string) (Result, error) {
	entry, ok := f.store.Get(callID)
	if !ok {
		return Result{}, ErrNoCacheEntry
	}
	if entry.Kind != mcpptype.KindTable || entry.Table == nil || len(entry.Table.Headers) == 0 {
		return Result{}, ErrNotTable
	}

	colIdx := -1
	if column != nil {
		colIdx = entry.Table.ColumnIndex(*column)
		if colIdx < 0 {
			return Result{}, ErrUnknownColumn
		}
	}

	needle := strings.ToLower(keyword)

	var (
		best      float64
		bestRow   int
		bestCol   int
		cellsSeen int
		seenAny   bool
	)

	// Strict ">" keeps the first cell encountered in scan order as the
	// winner among ties.
	for rowIdx, row := range entry.Table.Rows {
		for ci, cell := range row {
			if colIdx >= 0 && ci != colIdx {
				continue
			}
			cellsSeen++
			hay := strings.ToLower(stringifyCell(cell))
			sim := smetrics.JaroWinkler(needle, hay, jaroWinklerBoostThreshold, jaroWinklerPrefixSize)
			if !seenAny || sim > best {
				best = sim
				bestRow = rowIdx
				bestCol = ci
				seenAny = true
			}
		}
	}

	if best <= Threshold {
		return Result{}, &NotFoundError{BestSimilarity: best}
	}

	return Result{
		Placeholder: mcpptype.Placeholder{
			CallID: callID,
			Row:    bestRow,
			Column: entry.Table.Headers[bestCol],
		},
		Similarity:   best,
		CellsScanned: cellsSeen,
	}, nil
}

func stringifyCell(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
