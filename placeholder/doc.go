// Package placeholder implements the MCPP Placeholder Engine: it finds
// placeholders of the form {call_id.row.column} inside arbitrary
// argument/result trees, resolves them against a [datacache.Store], and
// tracks how many occurrences resolved versus failed.
//
// A sole-content match ("the whole string is one placeholder") replaces
// the string with the raw cell value, preserving its type. An embedded
// match replaces just that substring with the cell's text rendering.
// Resolution is idempotent: a fully resolved tree contains no more
// placeholder-shaped strings for a second pass to touch.
package placeholder
