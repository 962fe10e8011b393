package engine

import (
	"maps"
	"slices"

	"github.com/louisbranch/stagesim/internal/catalog"
	"github.com/louisbranch/stagesim/internal/core/effect"
)

// UnlimitedTurns marks a score buff that never expires.
const UnlimitedTurns = -1

// ScoreBuff multiplies score gains by 1 + Amount while it lasts.
type ScoreBuff struct {
	Amount float64 `json:"amount"`
	Turns  int     `json:"turns"`
	Fresh  bool    `json:"fresh,omitempty"`
}

// State is the whole of a simulation in progress. The engine mutates it in
// place; use Clone to look ahead without touching a live run.
type State struct {
	Started           bool               `json:"started"`
	TurnTypes         []catalog.TurnType `json:"turnTypes"`
	TurnType          catalog.TurnType   `json:"turnType,omitempty"`
	Phase             string             `json:"phase,omitempty"`
	TurnsElapsed      float64            `json:"turnsElapsed"`
	TurnsRemaining    float64            `json:"turnsRemaining"`
	CardUsesRemaining float64            `json:"cardUsesRemaining"`

	MaxStamina          float64 `json:"maxStamina"`
	Stamina             float64 `json:"stamina"`
	FixedStamina        float64 `json:"fixedStamina"`
	IntermediateStamina float64 `json:"intermediateStamina"`
	Genki               float64 `json:"genki"`
	FixedGenki          float64 `json:"fixedGenki"`
	IntermediateGenki   float64 `json:"intermediateGenki"`
	Cost                float64 `json:"cost"`
	Score               float64 `json:"score"`
	IntermediateScore   float64 `json:"intermediateScore"`

	// DeckCardIDs is a stack: the next card drawn is the last element.
	DeckCardIDs      []int   `json:"deckCardIds"`
	HandCardIDs      []int   `json:"handCardIds"`
	DiscardedCardIDs []int   `json:"discardedCardIds"`
	RemovedCardIDs   []int   `json:"removedCardIds"`
	CardsUsed        float64 `json:"cardsUsed"`
	TurnCardsUsed    float64 `json:"turnCardsUsed"`
	TurnUsedCardIDs  []int   `json:"turnUsedCardIds"`

	GoodConditionTurns    float64 `json:"goodConditionTurns"`
	PerfectConditionTurns float64 `json:"perfectConditionTurns"`
	Concentration         float64 `json:"concentration"`
	GoodImpressionTurns   float64 `json:"goodImpressionTurns"`
	Motivation            float64 `json:"motivation"`
	HalfCostTurns         float64 `json:"halfCostTurns"`
	DoubleCostTurns       float64 `json:"doubleCostTurns"`
	CostReduction         float64 `json:"costReduction"`
	CostIncrease          float64 `json:"costIncrease"`
	DoubleCardEffectCards float64 `json:"doubleCardEffectCards"`
	NullifyGenkiTurns     float64 `json:"nullifyGenkiTurns"`
	NullifyDebuff         float64 `json:"nullifyDebuff"`

	ConcentrationMultiplier float64 `json:"concentrationMultiplier"`
	MotivationMultiplier    float64 `json:"motivationMultiplier"`

	ScoreBuffs  []ScoreBuff      `json:"scoreBuffs"`
	Effects     *effect.Registry `json:"effects"`
	FreshBuffs  map[string]bool  `json:"freshBuffs"`
	UsedCardID  int              `json:"usedCardId,omitempty"`
	CardEffects []string         `json:"cardEffects,omitempty"`
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	c := *s
	c.TurnTypes = slices.Clone(s.TurnTypes)
	c.DeckCardIDs = slices.Clone(s.DeckCardIDs)
	c.HandCardIDs = slices.Clone(s.HandCardIDs)
	c.DiscardedCardIDs = slices.Clone(s.DiscardedCardIDs)
	c.RemovedCardIDs = slices.Clone(s.RemovedCardIDs)
	c.TurnUsedCardIDs = slices.Clone(s.TurnUsedCardIDs)
	c.ScoreBuffs = slices.Clone(s.ScoreBuffs)
	c.CardEffects = slices.Clone(s.CardEffects)
	c.FreshBuffs = maps.Clone(s.FreshBuffs)
	if c.FreshBuffs == nil {
		c.FreshBuffs = make(map[string]bool)
	}
	c.Effects = s.Effects.Clone()
	return &c
}

// Field returns the value of a numeric field by its DSL name.
func (s *State) Field(name string) (float64, bool) {
	ref, ok := fieldRefs[name]
	if !ok {
		return 0, false
	}
	return *ref(s), true
}

// SetField assigns a numeric field by its DSL name.
func (s *State) SetField(name string, v float64) bool {
	ref, ok := fieldRefs[name]
	if !ok {
		return false
	}
	*ref(s) = v
	return true
}

// Fields returns the values of names, skipping unknown ones.
func (s *State) Fields(names []string) map[string]float64 {
	out := make(map[string]float64, len(names))
	for _, name := range names {
		if v, ok := s.Field(name); ok {
			out[name] = v
		}
	}
	return out
}

// ScoreBuffTotal sums the amounts of every active score buff.
func (s *State) ScoreBuffTotal() float64 {
	total := 0.0
	for _, b := range s.ScoreBuffs {
		total += b.Amount
	}
	return total
}
