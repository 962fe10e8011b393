package engine

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/louisbranch/stagesim/internal/catalog"
	"github.com/louisbranch/stagesim/internal/core/expr"
	apperrors "github.com/louisbranch/stagesim/internal/platform/errors"
	"github.com/louisbranch/stagesim/internal/telemetry"
)

// Action verbs.
const (
	VerbDrawCard                    = "drawCard"
	VerbUpgradeHand                 = "upgradeHand"
	VerbExchangeHand                = "exchangeHand"
	VerbAddRandomUpgradedCardToHand = "addRandomUpgradedCardToHand"
	VerbSetScoreBuff                = "setScoreBuff"
)

// ExecuteActions runs an action batch, then floors stamina, logs the fields
// that changed, protects fresh buffs and fires the derived
// {field}Increased and {field}Decreased phases.
func (e *Engine) ExecuteActions(s *State, actions []string) error {
	prev := s.Fields(diffFields)

	for _, action := range actions {
		if err := e.executeAction(s, action); err != nil {
			return err
		}
		if s.Stamina < 0 {
			s.Stamina = 0
		}
	}

	for _, field := range LoggedFields {
		now, _ := s.Field(field)
		if now != prev[field] {
			e.logger.Log(telemetry.EntryDiff, telemetry.Diff{
				Field: field,
				Prev:  round2(prev[field]),
				Next:  round2(now),
			})
		}
	}

	if s.Phase != PhaseStartOfStage && s.Phase != PhaseStartOfTurn {
		for _, field := range EndOfTurnDecrementFields {
			now, _ := s.Field(field)
			if now > 0 && prev[field] == 0 {
				s.FreshBuffs[field] = true
			}
		}
	}

	for _, field := range IncreaseTriggerFields {
		phase := field + increasedSuffix
		if s.Phase == phase {
			continue
		}
		if now, _ := s.Field(field); now > prev[field] {
			if err := e.TriggerPhase(s, phase); err != nil {
				return err
			}
		}
	}

	// The comparison below mirrors the increase branch, so decreases are
	// never detected and the {field}Decreased phases do not fire.
	for _, field := range DecreaseTriggerFields {
		phase := field + decreasedSuffix
		if s.Phase == phase {
			continue
		}
		if now, _ := s.Field(field); now > prev[field] {
			if err := e.TriggerPhase(s, phase); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) executeAction(s *State, action string) error {
	action = strings.TrimSpace(action)
	switch action {
	case VerbDrawCard:
		return e.drawCard(s)
	case VerbUpgradeHand:
		return e.upgradeHand(s)
	case VerbExchangeHand:
		return e.exchangeHand(s)
	case VerbAddRandomUpgradedCardToHand:
		return e.addRandomUpgradedCardToHand(s)
	}
	if strings.HasPrefix(action, VerbSetScoreBuff+"(") {
		return e.setScoreBuff(s, action)
	}
	return e.assign(s, action)
}

func (e *Engine) assign(s *State, action string) error {
	target, op, rhs, ok := expr.SplitAssignment(action)
	if !ok {
		return unknownAction(action, "not a verb or assignment")
	}
	if _, known := fieldRefs[target]; !known {
		return unknownAction(action, fmt.Sprintf("unknown field %q", target))
	}

	if slices.Contains(DebuffFields, target) && s.NullifyDebuff > 0 {
		s.NullifyDebuff--
		return nil
	}

	value, err := expr.EvalNumber(rhs, stateEnv{s: s})
	if err != nil {
		return fmt.Errorf("action %q: %w", action, err)
	}

	if staged, ok := stagedFields[target]; ok && (op == "+=" || op == "-=") {
		target = staged
	}

	ref := fieldRefs[target](s)
	switch op {
	case "=":
		*ref = value
	case "+=":
		*ref += value
	case "-=":
		*ref -= value
	case "*=":
		*ref *= value
	case "/=":
		*ref /= value
	case "%=":
		*ref = math.Mod(*ref, value)
	default:
		return unknownAction(action, fmt.Sprintf("unknown operator %q", op))
	}

	switch target {
	case FieldCost:
		e.finalizeCost(s)
	case FieldIntermediateStamina:
		e.finalizeStamina(s)
	case FieldIntermediateScore:
		e.finalizeScore(s)
	case FieldIntermediateGenki:
		e.finalizeGenki(s)
	case FieldFixedGenki:
		s.Genki += s.FixedGenki
		s.FixedGenki = 0
	case FieldFixedStamina:
		s.Stamina += s.FixedStamina
		s.FixedStamina = 0
	}

	for _, field := range WholeFields {
		ref := fieldRefs[field](s)
		*ref = math.Ceil(*ref)
	}
	return nil
}

// scaleCost applies the half and double cost modifiers and rounds up.
func scaleCost(s *State, v float64) float64 {
	if s.HalfCostTurns > 0 {
		v *= 0.5
	}
	if s.DoubleCostTurns > 0 {
		v *= 2
	}
	return math.Ceil(v)
}

// adjustCost applies cost reduction and increase. The result is never a gain.
func adjustCost(s *State, v float64) float64 {
	return math.Min(v+s.CostReduction-s.CostIncrease, 0)
}

// finalizeCost spends genki first and takes any overflow from stamina.
func (e *Engine) finalizeCost(s *State) {
	c := adjustCost(s, scaleCost(s, s.Cost))
	s.Genki += c
	if s.Genki < 0 {
		s.Stamina += s.Genki
		s.Genki = 0
	}
	s.Cost = 0
}

func (e *Engine) finalizeStamina(s *State) {
	v := scaleCost(s, s.IntermediateStamina)
	if v <= 0 {
		v = adjustCost(s, v)
	}
	s.Stamina += v
	s.IntermediateStamina = 0
}

// finalizeScore applies concentration, good and perfect condition, score
// buffs and the turn multiplier to positive gains.
func (e *Engine) finalizeScore(s *State) {
	v := s.IntermediateScore
	if v > 0 {
		v += s.Concentration * s.ConcentrationMultiplier
		if s.GoodConditionTurns > 0 {
			if s.PerfectConditionTurns > 0 {
				v *= 1.5 + 0.1*s.GoodConditionTurns
			} else {
				v *= 1.5
			}
		}
		v *= 1 + s.ScoreBuffTotal()
		v = math.Ceil(v)
		v *= e.TypeMultiplier(s.TurnType)
		v = math.Ceil(v)
	}
	s.Score += v
	s.IntermediateScore = 0
}

func (e *Engine) finalizeGenki(s *State) {
	v := s.IntermediateGenki + s.Motivation*s.MotivationMultiplier
	if s.NullifyGenkiTurns > 0 {
		v = 0
	}
	s.Genki += v
	s.IntermediateGenki = 0
}

// upgradeHand replaces every upgradable card in hand with its upgraded id.
func (e *Engine) upgradeHand(s *State) error {
	for i, id := range s.HandCardIDs {
		card, err := e.catalog.Card(id)
		if err != nil {
			return err
		}
		if card.Upgraded || card.Type == catalog.CardTypeTrouble {
			continue
		}
		if _, err := e.catalog.Card(card.UpgradedID()); err != nil {
			return fmt.Errorf("upgrade card %d: %w", id, err)
		}
		s.HandCardIDs[i] = card.UpgradedID()
	}
	e.logger.Log(telemetry.EntryUpgradeHand, nil)
	return nil
}

// exchangeHand discards the hand and draws as many cards as were discarded.
func (e *Engine) exchangeHand(s *State) error {
	n := len(s.HandCardIDs)
	s.DiscardedCardIDs = append(s.DiscardedCardIDs, s.HandCardIDs...)
	s.HandCardIDs = nil
	e.logger.Log(telemetry.EntryExchangeHand, nil)
	for range n {
		if err := e.drawCard(s); err != nil {
			return err
		}
	}
	return nil
}

// RandomUpgradedCandidates lists the cards addRandomUpgradedCardToHand picks
// from, sorted by id.
func (e *Engine) RandomUpgradedCandidates() []catalog.Card {
	var out []catalog.Card
	for _, c := range e.catalog.Cards() {
		if !c.Upgraded || c.Type == catalog.CardTypeTrouble || c.SourceType == catalog.SourceTypePIdol {
			continue
		}
		if c.Plan != e.loadout.Plan && c.Plan != catalog.PlanFree {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (e *Engine) addRandomUpgradedCardToHand(s *State) error {
	candidates := e.RandomUpgradedCandidates()
	if len(candidates) == 0 {
		return nil
	}
	card := candidates[int(e.rng.Float64()*float64(len(candidates)))]
	if len(s.HandCardIDs) >= MaxHandSize {
		s.DiscardedCardIDs = append(s.DiscardedCardIDs, card.ID)
	} else {
		s.HandCardIDs = append(s.HandCardIDs, card.ID)
	}
	e.logger.Log(telemetry.EntryAddRandomUpgradedCardToHand, telemetry.Entity{Type: "skillCard", ID: strconv.Itoa(card.ID)})
	return nil
}

// setScoreBuff parses setScoreBuff(amount[,turns]). Buffs set outside the
// start of stage or turn skip this turn's decrement.
func (e *Engine) setScoreBuff(s *State, action string) error {
	inner, ok := strings.CutPrefix(action, VerbSetScoreBuff+"(")
	if !ok || !strings.HasSuffix(inner, ")") {
		return unknownAction(action, "malformed setScoreBuff")
	}
	args := strings.Split(strings.TrimSuffix(inner, ")"), ",")
	if len(args) < 1 || len(args) > 2 {
		return unknownAction(action, "setScoreBuff takes 1 or 2 arguments")
	}
	env := stateEnv{s: s}
	amount, err := expr.EvalNumber(args[0], env)
	if err != nil {
		return fmt.Errorf("action %q: %w", action, err)
	}
	turns := UnlimitedTurns
	if len(args) == 2 {
		n, err := expr.EvalNumber(args[1], env)
		if err != nil {
			return fmt.Errorf("action %q: %w", action, err)
		}
		turns = int(n)
	}
	fresh := s.Phase != PhaseStartOfStage && s.Phase != PhaseStartOfTurn
	s.ScoreBuffs = append(s.ScoreBuffs, ScoreBuff{Amount: amount, Turns: turns, Fresh: fresh})
	e.logger.Log(telemetry.EntrySetScoreBuff, telemetry.ScoreBuff{Amount: amount, Turns: turns})
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func unknownAction(action, reason string) error {
	return apperrors.WithMetadata(
		apperrors.CodeUnknownAction,
		fmt.Sprintf("action %q: %s", action, reason),
		map[string]string{"Action": action},
	)
}
