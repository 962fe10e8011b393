package engine

import (
	"fmt"

	"github.com/louisbranch/stagesim/internal/core/effect"
	"github.com/louisbranch/stagesim/internal/telemetry"
)

// TriggerPhase fires every active effect registered for phase, in order.
// Limits of the effects that fired are spent once the whole phase has run.
func (e *Engine) TriggerPhase(s *State, phase string) error {
	parent := s.Phase
	s.Phase = phase

	records := s.Effects.ForPhase(phase)
	if len(records) > 0 {
		e.logger.Debugf("%s: %d effect(s)", phase, len(records))
	}

	var fired []effect.Handle
	for _, rec := range records {
		ok, err := e.fire(s, rec.Effect, rec.Source, true)
		if err != nil {
			s.Phase = parent
			return fmt.Errorf("phase %s: %w", phase, err)
		}
		if ok {
			fired = append(fired, rec.Handle)
		}
	}

	s.Phase = parent
	s.Effects.DecrementLimits(fired)
	return nil
}

// fire runs a single effect whose conditions hold and reports whether it
// fired. Registered effects are the ones triggered by a phase: their source
// brackets the log entries, and a gate among them sets its sub-effect
// without executing it, even when the sub-effect has no phase.
func (e *Engine) fire(s *State, eff effect.Effect, source effect.Source, registered bool) (bool, error) {
	ok, err := evalConditions(s, eff.Conditions)
	if err != nil || !ok {
		return false, err
	}

	announce := registered && !source.IsZero()
	if announce {
		e.logger.Log(telemetry.EntryEntityStart, entity(source))
	}

	switch eff.Kind {
	case effect.KindGate:
		if inner, ok := eff.Installs(); ok {
			if registered {
				e.logger.Log(telemetry.EntrySetEffect, nil)
				s.Effects.Install(source, []effect.Effect{inner})
			} else if err := e.applyNow(s, inner, source); err != nil {
				return false, err
			}
		}
	default:
		if len(eff.Actions) > 0 {
			e.logger.Debugf("executing %v", eff.Actions)
			if err := e.ExecuteActions(s, eff.Actions); err != nil {
				return false, err
			}
			s.ConcentrationMultiplier = 1
			s.MotivationMultiplier = 1
		}
		if len(eff.Effects) > 0 {
			e.logger.Log(telemetry.EntrySetEffect, nil)
			s.Effects.Install(source, eff.Effects)
		}
	}

	if announce {
		e.logger.Log(telemetry.EntryEntityEnd, entity(source))
	}
	return true, nil
}

// applyNow installs eff when it waits for a phase and runs it otherwise.
func (e *Engine) applyNow(s *State, eff effect.Effect, source effect.Source) error {
	if eff.Phase != "" {
		e.logger.Log(telemetry.EntrySetEffect, nil)
		s.Effects.Install(source, []effect.Effect{eff})
		return nil
	}
	_, err := e.fire(s, eff, source, false)
	return err
}

func entity(source effect.Source) telemetry.Entity {
	return telemetry.Entity{Type: source.Type, ID: source.ID}
}
