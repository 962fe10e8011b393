package engine

import (
	"strconv"

	"github.com/louisbranch/stagesim/internal/catalog"
	"github.com/louisbranch/stagesim/internal/core/expr"
)

// stateEnv is the read-only view of a State that expressions evaluate
// against.
type stateEnv struct {
	s *State
}

var _ expr.Env = stateEnv{}

func (e stateEnv) Lookup(name string) (expr.Value, bool) {
	if v, ok := e.s.Field(name); ok {
		return expr.Number(v), true
	}
	switch name {
	case "isVocalTurn":
		return expr.Bool(e.s.TurnType == catalog.TurnVocal), true
	case "isDanceTurn":
		return expr.Bool(e.s.TurnType == catalog.TurnDance), true
	case "isVisualTurn":
		return expr.Bool(e.s.TurnType == catalog.TurnVisual), true
	case "started":
		return expr.Bool(e.s.Started), true
	}
	return expr.Value{}, false
}

func (e stateEnv) Collection(name string) ([]string, bool) {
	switch name {
	case "handCardIds":
		return itoaAll(e.s.HandCardIDs), true
	case "deckCardIds":
		return itoaAll(e.s.DeckCardIDs), true
	case "discardedCardIds":
		return itoaAll(e.s.DiscardedCardIDs), true
	case "removedCardIds":
		return itoaAll(e.s.RemovedCardIDs), true
	case "turnUsedCardIds":
		return itoaAll(e.s.TurnUsedCardIDs), true
	case "cardEffects":
		return e.s.CardEffects, true
	}
	return nil, false
}

// Eval evaluates an expression against s.
func Eval(s *State, src string) (expr.Value, error) {
	return expr.Eval(src, stateEnv{s: s})
}

func itoaAll(ids []int) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.Itoa(id)
	}
	return out
}

func evalConditions(s *State, conditions []string) (bool, error) {
	env := stateEnv{s: s}
	for _, c := range conditions {
		ok, err := expr.EvalBool(c, env)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
