// Package strategy decides which card to play next. A strategy only reads
// the turn it is given: look-ahead happens on cloned states run through a
// forked engine, so evaluation never changes the live run.
package strategy

import (
	"context"
	"sort"
	"strings"

	"github.com/louisbranch/stagesim/internal/engine"
	apperrors "github.com/louisbranch/stagesim/internal/platform/errors"
)

// Strategy names accepted by New.
const (
	NameGreedy = "greedy"
	NameRandom = "random"
	NameFirst  = "first"
)

// Turn is the decision point handed to a strategy.
type Turn struct {
	Engine *engine.Engine
	State  *engine.State
}

// Decision is a strategy's answer. CardID 0 ends the turn.
type Decision struct {
	Scores map[int]float64 `json:"scores"`
	CardID int             `json:"selectedCardId"`
}

// Strategy picks a card to play.
type Strategy interface {
	Evaluate(ctx context.Context, turn Turn) (Decision, error)
}

// LegalCards lists the distinct playable card ids in hand order.
func LegalCards(eng *engine.Engine, s *engine.State) ([]int, error) {
	ids, err := eng.LegalCards(s)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

// Names lists the strategies New understands.
func Names() []string {
	names := []string{NameGreedy, NameRandom, NameFirst}
	sort.Strings(names)
	return names
}

// New builds a strategy by name. Random strategies draw from seed.
func New(name string, seed int64) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameGreedy, "":
		return NewGreedy(seed), nil
	case NameRandom:
		return NewRandom(seed), nil
	case NameFirst:
		return First{}, nil
	default:
		return nil, apperrors.WithMetadata(apperrors.CodeNotFound, "unknown strategy: "+name, map[string]string{
			"Kind": "strategy",
			"ID":   name,
		})
	}
}
