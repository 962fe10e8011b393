// Package engine runs a stage: it executes effect actions against a State
// and drives the turn cycle from stage start to completion.
//
// # Determinism
//
// Every random choice (turn order, deck shuffles, random cards) is drawn
// from the *rand.Rand passed in Config. The same seed, catalog and loadout
// always produce the same run.
//
// # Strict mode
//
// With Config.Strict set, lifecycle violations such as playing a card that
// is not in hand return an error. Without it the engine trusts its caller to
// respect IsCardUsable and the turn order.
//
// # Ownership
//
// An Engine and the State it mutates belong to one run. Use Fork and
// State.Clone to evaluate moves without touching the live run.
package engine
