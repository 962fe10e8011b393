// Package expr evaluates the condition and right-hand-side expressions
// embedded in effect definitions.
//
// # Grammar
//
// From loosest to tightest binding:
//
//	comparison     := additive [ ("==" | "!=" | "<" | "<=" | ">" | ">=" | "&") additive ]
//	additive       := multiplicative { ("+" | "-") multiplicative }
//	multiplicative := atom { ("*" | "/" | "%") atom }
//	atom           := number | identifier
//
// Numbers are decimal literals with an optional sign. Identifiers are
// resolved through an Env, which is how the engine exposes its state.
//
// # Membership
//
// a&b is true when the collection named a contains the literal b. The left
// side must name a collection; the right side is never resolved, so
// "handCardIds&12" asks whether card 12 is in hand.
//
// # Errors
//
// Unrecognized operators, malformed token streams and unknown identifiers
// are data errors: they are reported with the offending expression and are
// never coerced into a default value.
package expr
