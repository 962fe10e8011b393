// Package effect models the data-defined rules that drive a stage: what an
// effect is, how it is parsed from its compact text form, and the registry
// that stores installed effects and answers phase lookups.
//
// # Text form
//
// A sequence is a list of ";"-separated clauses. Each clause is a list of
// ","-separated key:value segments; commas inside parentheses do not split.
//
//	at:endOfTurn,if:goodImpressionTurns>=1,do:score+=goodImpressionTurns,order:100
//
// Keys are at (phase), if (condition, repeatable), do (action, repeatable),
// order, limit and ttl.
//
// # Gates
//
// A clause without actions that is followed by another clause is a gate:
// when its conditions hold it installs the next clause instead of running
// anything itself. Compile makes that pairing explicit.
//
// # Ordering
//
// ForPhase returns records by ascending order key. Records with equal keys
// keep installation order.
package effect
