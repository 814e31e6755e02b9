package mcpptype

import (
	"fmt"
	"regexp"
	"strconv"
)

// solePattern matches a string whose *entire* content is a single
// placeholder. Capture group 1 is the inner "call_id.row.column" text.
var solePattern = regexp.MustCompile(`^\{([A-Za-z0-9_-]+\.\d+\.[A-Za-z0-9_-]+)\}$`)

// embeddedPattern matches every placeholder occurrence inside a longer
// string. Kept distinct from solePattern: conflating the two would lose
// the "sole match preserves type" rule.
var embeddedPattern = regexp.MustCompile(`\{([A-Za-z0-9_-]+\.\d+\.[A-Za-z0-9_-]+)\}`)

// innerPattern splits the "call_id.row.column" capture into its three
// parts once a sole or embedded match has been found.
var innerPattern = regexp.MustCompile(`^([A-Za-z0-9_-]+)\.(\d+)\.([A-Za-z0-9_-]+)$`)

// Placeholder is a parsed reference to one cell of a cached table.
type Placeholder struct {
	CallID string
	Row    int
	Column string
}

// String renders the canonical "{call_id.row.column}" wire form.
func (p Placeholder) String() string {
	return fmt.Sprintf("{%s.%d.%s}", p.CallID, p.Row, p.Column)
}

// ParsePlaceholder parses a string that is known to be a sole-match or
// embedded-match inner capture (without the surrounding braces).
func ParsePlaceholder(inner string) (Placeholder, bool) {
	m := innerPattern.FindStringSubmatch(inner)
	if m == nil {
		return Placeholder{}, false
	}
	row, err := strconv.Atoi(m[2])
	if err != nil {
		return Placeholder{}, false
	}
	return Placeholder{CallID: m[1], Row: row, Column: m[3]}, true
}

// MatchSolePlaceholder reports whether s is, in its entirety, a single
// placeholder, returning the parsed value when it is.
func MatchSolePlaceholder(s string) (Placeholder, bool) {
	m := solePattern.FindStringSubmatch(s)
	if m == nil {
		return Placeholder{}, false
	}
	return ParsePlaceholder(m[1])
}

// FindEmbeddedPlaceholders returns every non-overlapping placeholder match
// in s, in left-to-right order, alongside the matched substring (including
// braces) so callers can do a targeted string replacement.
func FindEmbeddedPlaceholders(s string) []EmbeddedMatch {
	matches := embeddedPattern.FindAllStringSubmatchIndex(s, -1)
	out := make([]EmbeddedMatch, 0, len(matches))
	for _, m := range matches {
		full := s[m[0]:m[1]]
		inner := s[m[2]:m[3]]
		ph, ok := ParsePlaceholder(inner)
		if !ok {
			continue
		}
		out = append(out, EmbeddedMatch{Full: full, Placeholder: ph, Start: m[0], End: m[1]})
	}
	return out
}

// EmbeddedMatch is one occurrence of a placeholder found inside a longer
// string, with its byte offsets in the original string.
type EmbeddedMatch struct {
	Full        string
	Placeholder Placeholder
	Start, End  int
}
