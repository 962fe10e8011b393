package engine

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sort"
	"strconv"

	"github.com/louisbranch/stagesim/internal/catalog"
	"github.com/louisbranch/stagesim/internal/core/effect"
	"github.com/louisbranch/stagesim/internal/core/expr"
	apperrors "github.com/louisbranch/stagesim/internal/platform/errors"
	"github.com/louisbranch/stagesim/internal/telemetry"
)

const (
	// MaxHandSize caps the hand; draws into a full hand do nothing.
	MaxHandSize = 5
	// TurnDraws is the number of cards drawn at the start of every turn.
	TurnDraws = 3
	// OpeningHandExtraDraws is how many forced opening cards may be drawn on
	// top of the first turn's regular draws.
	OpeningHandExtraDraws = 2
	// RestStamina is restored when a turn ends with a card use left.
	RestStamina = 2
)

// defaultEffect converts good impression into score at every end of turn.
var defaultEffect = effect.Effect{
	Phase:      PhaseEndOfTurn,
	Conditions: []string{"goodImpressionTurns>=1"},
	Actions:    []string{"score+=goodImpressionTurns"},
	Order:      100,
}

// defaultSource identifies the built-in good impression rule.
var defaultSource = effect.Source{Type: effect.SourceDefault, ID: "好印象"}

// InitialState builds the state of a stage that has not started: shuffled
// deck with forced opening cards on top, turn order drawn, full stamina.
func (e *Engine) InitialState() (*State, error) {
	deck := slices.Clone(e.loadout.SkillCardIDs)
	e.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	forced := make(map[int]bool, len(deck))
	for _, id := range deck {
		card, err := e.catalog.Card(id)
		if err != nil {
			return nil, fmt.Errorf("initial deck: %w", err)
		}
		forced[id] = card.ForceInitialHand
	}
	sort.SliceStable(deck, func(i, j int) bool {
		return !forced[deck[i]] && forced[deck[j]]
	})

	return &State{
		TurnTypes:               e.GenerateTurnTypes(),
		TurnsRemaining:          float64(e.stage.TurnCount()),
		MaxStamina:              e.loadout.Params.Stamina,
		Stamina:                 e.loadout.Params.Stamina,
		DeckCardIDs:             deck,
		Effects:                 effect.NewRegistry(),
		FreshBuffs:              make(map[string]bool),
		ConcentrationMultiplier: 1,
		MotivationMultiplier:    1,
	}, nil
}

// GenerateTurnTypes draws the turn order. The first turn follows the
// stage's first-turn probabilities, the last three turns are every type in
// descending criteria order and the turns between are shuffled uniformly
// from the remaining counts.
func (e *Engine) GenerateTurnTypes() []catalog.TurnType {
	return generateTurnTypes(e.stage, e.rng)
}

func generateTurnTypes(stage catalog.Stage, rng *rand.Rand) []catalog.TurnType {
	remaining := stage.TurnCounts
	first := stage.FirstTurns

	r := rng.Float64()
	firstTurn := catalog.TurnVocal
	if r > first.Vocal {
		firstTurn = catalog.TurnDance
	}
	if r > first.Vocal+first.Dance {
		firstTurn = catalog.TurnVisual
	}
	remaining.Set(firstTurn, remaining.Get(firstTurn)-1)

	sorted := slices.Clone(catalog.TurnTypes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return stage.Criteria.Get(sorted[i]) < stage.Criteria.Get(sorted[j])
	})
	slices.Reverse(sorted)
	lastThree := sorted
	for _, t := range lastThree {
		remaining.Set(t, remaining.Get(t)-1)
	}

	var pool []catalog.TurnType
	for _, t := range catalog.TurnTypes {
		for range int(math.Max(remaining.Get(t), 0)) {
			pool = append(pool, t)
		}
	}

	turns := []catalog.TurnType{firstTurn}
	for len(pool) > 0 {
		i := int(math.Floor(rng.Float64() * float64(len(pool))))
		turns = append(turns, pool[i])
		pool = slices.Delete(pool, i, i+1)
	}
	return append(turns, lastThree...)
}

// StartStage installs the default, stage and p-item effects, fires
// startOfStage and starts the first turn.
func (e *Engine) StartStage(s *State) error {
	if e.strict && s.Started {
		return apperrors.New(apperrors.CodeStageAlreadyStarted, "stage already started")
	}
	if err := e.guard(s, eventStart); err != nil {
		return err
	}

	e.logger.Clear()
	s.Started = true

	s.Effects.Install(defaultSource, []effect.Effect{defaultEffect})

	e.logger.Debugf("setting stage effects %v", e.stage.Effects)
	s.Effects.Install(effect.Source{Type: effect.SourceStage}, e.stage.Effects)

	for _, id := range e.loadout.PItemIDs {
		item, err := e.catalog.Item(id)
		if err != nil {
			return fmt.Errorf("start stage: %w", err)
		}
		e.logger.Debugf("setting p-item effects %s %v", item.Name, item.Effects)
		s.Effects.Install(effect.Source{Type: effect.SourcePItem, ID: strconv.Itoa(id)}, item.Effects)
	}

	if err := e.TriggerPhase(s, PhaseStartOfStage); err != nil {
		return err
	}
	e.pushGraph(s)
	return e.startTurn(s)
}

func (e *Engine) startTurn(s *State) error {
	e.logger.Debugf("starting turn %d", int(s.TurnsElapsed)+1)

	idx := min(int(s.TurnsElapsed), len(s.TurnTypes)-1)
	s.TurnType = s.TurnTypes[idx]
	e.logger.Log(telemetry.EntryStartTurn, telemetry.StartTurn{
		Num:        int(s.TurnsElapsed) + 1,
		Type:       string(s.TurnType),
		Multiplier: e.TypeMultiplier(s.TurnType),
	})

	for range TurnDraws {
		if err := e.drawCard(s); err != nil {
			return err
		}
	}

	if s.TurnsElapsed == 0 {
		for range OpeningHandExtraDraws {
			if len(s.DeckCardIDs) == 0 {
				break
			}
			top, err := e.catalog.Card(s.DeckCardIDs[len(s.DeckCardIDs)-1])
			if err != nil {
				return err
			}
			if !top.ForceInitialHand {
				break
			}
			if err := e.drawCard(s); err != nil {
				return err
			}
		}
	}

	s.CardUsesRemaining = 1
	return e.TriggerPhase(s, PhaseStartOfTurn)
}

// drawCard moves the top of the deck into the hand, reshuffling the discard
// pile into an empty deck first. It does nothing when the hand is full or
// both piles are empty.
func (e *Engine) drawCard(s *State) error {
	if len(s.HandCardIDs) >= MaxHandSize {
		return nil
	}
	if len(s.DeckCardIDs) == 0 {
		if len(s.DiscardedCardIDs) == 0 {
			return nil
		}
		e.recycleDiscards(s)
	}
	id := s.DeckCardIDs[len(s.DeckCardIDs)-1]
	s.DeckCardIDs = s.DeckCardIDs[:len(s.DeckCardIDs)-1]
	s.HandCardIDs = append(s.HandCardIDs, id)
	e.logger.Log(telemetry.EntryDrawCard, telemetry.Entity{Type: "skillCard", ID: strconv.Itoa(id)})
	return nil
}

func (e *Engine) recycleDiscards(s *State) {
	deck := append(s.DeckCardIDs, s.DiscardedCardIDs...)
	e.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	s.DeckCardIDs = deck
	s.DiscardedCardIDs = nil
}

// IsCardUsable reports whether every condition of the card holds and paying
// its cost would leave every cost field non-negative.
func (e *Engine) IsCardUsable(s *State, cardID int) (bool, error) {
	card, err := e.catalog.Card(cardID)
	if err != nil {
		return false, err
	}
	ok, err := evalConditions(s, card.Conditions)
	if err != nil || !ok {
		return false, err
	}

	preview := s.Clone()
	silent := e.Fork(rand.New(rand.NewSource(0)))
	for _, action := range card.Cost {
		if err := silent.executeAction(preview, action); err != nil {
			return false, err
		}
	}
	for _, field := range CostFields {
		if v, _ := preview.Field(field); v < 0 {
			return false, nil
		}
	}
	return true, nil
}

// LegalCards lists the cards in hand that can be played right now.
func (e *Engine) LegalCards(s *State) ([]int, error) {
	var legal []int
	for _, id := range s.HandCardIDs {
		ok, err := e.IsCardUsable(s, id)
		if err != nil {
			return nil, err
		}
		if ok {
			legal = append(legal, id)
		}
	}
	return legal, nil
}

// UseCard plays a card from hand. When it was the turn's last card use the
// turn ends as well.
func (e *Engine) UseCard(s *State, cardID int) error {
	if err := e.guard(s, eventPlay); err != nil {
		return err
	}
	card, err := e.catalog.Card(cardID)
	if err != nil {
		return err
	}
	if e.strict {
		if err := e.checkPlayable(s, card); err != nil {
			return err
		}
	}

	source := effect.Source{Type: effect.SourceSkillCardEffect, ID: strconv.Itoa(card.ID)}
	s.UsedCardID = card.ID
	s.CardEffects = cardEffectFields(card)
	e.logger.Log(telemetry.EntryEntityStart, telemetry.Entity{Type: "skillCard", ID: source.ID})

	if err := e.ExecuteActions(s, card.Cost); err != nil {
		return fmt.Errorf("card %d cost: %w", card.ID, err)
	}

	if i := slices.Index(s.HandCardIDs, card.ID); i >= 0 {
		s.HandCardIDs = slices.Delete(s.HandCardIDs, i, i+1)
	}
	s.CardUsesRemaining--

	if err := e.TriggerPhase(s, PhaseCardUsed); err != nil {
		return err
	}
	if phase := typedPhase(card.Type, PhaseActiveCardUsed, PhaseMentalCardUsed); phase != "" {
		if err := e.TriggerPhase(s, phase); err != nil {
			return err
		}
	}

	if s.DoubleCardEffectCards > 0 {
		s.DoubleCardEffectCards--
		if err := e.applyCardEffects(s, card, source); err != nil {
			return err
		}
	}
	if err := e.applyCardEffects(s, card, source); err != nil {
		return err
	}

	s.CardsUsed++
	s.TurnCardsUsed++
	s.TurnUsedCardIDs = append(s.TurnUsedCardIDs, card.ID)

	if err := e.TriggerPhase(s, PhaseAfterCardUsed); err != nil {
		return err
	}
	if phase := typedPhase(card.Type, PhaseAfterActiveCardUsed, PhaseAfterMentalCardUsed); phase != "" {
		if err := e.TriggerPhase(s, phase); err != nil {
			return err
		}
	}

	s.UsedCardID = 0
	s.CardEffects = nil
	e.logger.Log(telemetry.EntryEntityEnd, telemetry.Entity{Type: "skillCard", ID: source.ID})

	if card.HasUsageLimit() {
		s.RemovedCardIDs = append(s.RemovedCardIDs, card.ID)
	} else {
		s.DiscardedCardIDs = append(s.DiscardedCardIDs, card.ID)
	}

	if s.CardUsesRemaining < 1 {
		return e.EndTurn(s)
	}
	return nil
}

func (e *Engine) checkPlayable(s *State, card catalog.Card) error {
	if !s.Started {
		return apperrors.New(apperrors.CodeStageNotStarted, "stage not started")
	}
	if s.CardUsesRemaining < 1 {
		return apperrors.New(apperrors.CodeNoCardUsesRemaining, "no card uses remaining")
	}
	if s.TurnsRemaining < 1 {
		return apperrors.New(apperrors.CodeNoTurnsRemaining, "no turns remaining")
	}
	id := strconv.Itoa(card.ID)
	if !slices.Contains(s.HandCardIDs, card.ID) {
		return apperrors.WithMetadata(apperrors.CodeCardNotInHand, fmt.Sprintf("card %s not in hand", id), map[string]string{"CardID": id})
	}
	ok, err := e.IsCardUsable(s, card.ID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.WithMetadata(apperrors.CodeCardNotUsable, fmt.Sprintf("card %s not usable", id), map[string]string{"CardID": id})
	}
	return nil
}

// applyCardEffects installs the card's phase effects and runs the rest now.
func (e *Engine) applyCardEffects(s *State, card catalog.Card, source effect.Source) error {
	for _, eff := range effect.Compile(card.Effects) {
		if err := e.applyNow(s, eff, source); err != nil {
			return fmt.Errorf("card %d effects: %w", card.ID, err)
		}
	}
	return nil
}

// EndTurn ends the current turn and starts the next one, if any.
func (e *Engine) EndTurn(s *State) error {
	if err := e.guard(s, eventEndTurn); err != nil {
		return err
	}

	if s.CardUsesRemaining > 0 {
		s.Stamina = math.Min(s.Stamina+RestStamina, s.MaxStamina)
	}

	if err := e.TriggerPhase(s, PhaseEndOfTurn); err != nil {
		return err
	}

	for _, field := range EndOfTurnDecrementFields {
		if s.FreshBuffs[field] {
			delete(s.FreshBuffs, field)
			continue
		}
		ref := fieldRefs[field](s)
		*ref = math.Max(*ref-1, 0)
	}

	buffs := s.ScoreBuffs[:0]
	for _, b := range s.ScoreBuffs {
		switch {
		case b.Fresh:
			b.Fresh = false
		case b.Turns > 0:
			b.Turns--
		}
		if b.Turns != 0 {
			buffs = append(buffs, b)
		}
	}
	s.ScoreBuffs = buffs

	s.TurnCardsUsed = 0
	s.TurnUsedCardIDs = nil
	s.Effects.TickTTL()

	s.DiscardedCardIDs = append(s.DiscardedCardIDs, s.HandCardIDs...)
	s.HandCardIDs = nil

	s.TurnsElapsed++
	s.TurnsRemaining--
	e.pushGraph(s)

	if s.TurnsRemaining > 0 {
		return e.startTurn(s)
	}
	return nil
}

func typedPhase(cardType, active, mental string) string {
	switch cardType {
	case catalog.CardTypeActive:
		return active
	case catalog.CardTypeMental:
		return mental
	default:
		return ""
	}
}

// cardEffectFields lists the fields the card's effects assign to.
func cardEffectFields(card catalog.Card) []string {
	var fields []string
	var walk func([]effect.Effect)
	walk = func(effects []effect.Effect) {
		for _, eff := range effects {
			for _, action := range eff.Actions {
				if target, _, _, ok := expr.SplitAssignment(action); ok && !slices.Contains(fields, target) {
					fields = append(fields, target)
				}
			}
			walk(eff.Effects)
		}
	}
	walk(card.Effects)
	return fields
}
