// Package reference implements the MCPP Reference Finder: it mints a
// placeholder from a free-text keyword by fuzzy-matching it against the
// cells of a cached table using Jaro-Winkler similarity.
package reference
