package engine

import (
	"fmt"

	"github.com/looplab/fsm"

	apperrors "github.com/louisbranch/stagesim/internal/platform/errors"
)

// Stage lifecycle states.
const (
	StageNotStarted = "not_started"
	StageActive     = "active"
	StageComplete   = "complete"
)

const (
	eventStart   = "start"
	eventPlay    = "play"
	eventEndTurn = "end_turn"
	eventFinish  = "finish"
)

var lifecycleEvents = fsm.Events{
	{Name: eventStart, Src: []string{StageNotStarted}, Dst: StageActive},
	{Name: eventPlay, Src: []string{StageActive}, Dst: StageActive},
	{Name: eventEndTurn, Src: []string{StageActive}, Dst: StageActive},
	{Name: eventFinish, Src: []string{StageActive}, Dst: StageComplete},
}

// LifecycleState derives the lifecycle state of s.
func LifecycleState(s *State) string {
	switch {
	case !s.Started:
		return StageNotStarted
	case s.TurnsRemaining <= 0:
		return StageComplete
	default:
		return StageActive
	}
}

// Complete reports whether the stage has no turns left.
func Complete(s *State) bool {
	return LifecycleState(s) == StageComplete
}

// guard checks that event is allowed from the current lifecycle state. It
// is a no-op outside strict mode.
func (e *Engine) guard(s *State, event string) error {
	if !e.strict {
		return nil
	}
	current := LifecycleState(s)
	machine := fsm.NewFSM(current, lifecycleEvents, fsm.Callbacks{})
	if machine.Can(event) {
		return nil
	}
	switch current {
	case StageNotStarted:
		return apperrors.New(apperrors.CodeStageNotStarted, fmt.Sprintf("%s: stage not started", event))
	case StageComplete:
		return apperrors.New(apperrors.CodeNoTurnsRemaining, fmt.Sprintf("%s: no turns remaining", event))
	default:
		return apperrors.New(apperrors.CodeStageAlreadyStarted, fmt.Sprintf("%s: stage already started", event))
	}
}
