// Package mcpptype defines the closed set of types shared by every MCPP
// core component: usage levels, target kinds, policy decisions, error
// codes, cached entries, placeholders, tools, targets, and usage contexts.
//
// Nothing in this package talks to the network, the cache, or a clock; it
// is pure data plus the small helper methods (String, Parse, Covers) that
// make those data types convenient to use from policy, cache, and
// dispatcher code.
package mcpptype
