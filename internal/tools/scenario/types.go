package scenario

import (
	"fmt"
	"log"
)

// Step kinds recorded by the Lua DSL.
const (
	StepStage      = "stage"
	StepSeed       = "seed"
	StepLoadout    = "loadout"
	StepStart      = "start"
	StepPlay       = "play"
	StepEndTurn    = "end_turn"
	StepAuto       = "auto"
	StepEffect     = "effect"
	StepSet        = "set"
	StepExpect     = "expect"
	StepExpectExpr = "expect_expr"
	StepExpectHand = "expect_hand"
)

// AssertionMode selects how failed expectations are reported.
type AssertionMode int

const (
	// AssertionStrict fails the scenario on the first unmet expectation.
	AssertionStrict AssertionMode = iota
	// AssertionLogOnly logs unmet expectations and keeps going.
	AssertionLogOnly
)

// Assertions reports unmet expectations according to Mode.
type Assertions struct {
	Mode   AssertionMode
	Logger *log.Logger
	failed int
}

// Failf reports an unmet expectation. In strict mode it returns an error.
func (a *Assertions) Failf(format string, args ...any) error {
	message := fmt.Sprintf(format, args...)
	if a.Mode == AssertionStrict {
		return fmt.Errorf("%s", message)
	}
	a.failed++
	if a.Logger != nil {
		a.Logger.Printf("expectation failed: %s", message)
	}
	return nil
}

// Failures returns how many expectations were logged as failed.
func (a *Assertions) Failures() int {
	return a.failed
}
