// Package policy implements the MCPP Policy Evaluator: for a (tool,
// usage context) pair it decides allow, deny with reason, or prompt (a
// consent request must be issued).
//
// Evaluation runs as an ordered chain of checks over a single mutable
// evalState, each check able to short-circuit the rest with a denial.
// This mirrors the "chain of checks, first failure wins" shape used
// elsewhere in this module for request authorization, adapted from a
// wrapping composition to a linear one because evaluation order here is
// fixed rather than caller-configurable.
package policy
