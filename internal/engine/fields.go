package engine

// Field names as they appear in effect text.
const (
	FieldTurnsElapsed          = "turnsElapsed"
	FieldTurnsRemaining        = "turnsRemaining"
	FieldCardUsesRemaining     = "cardUsesRemaining"
	FieldMaxStamina            = "maxStamina"
	FieldStamina               = "stamina"
	FieldFixedStamina          = "fixedStamina"
	FieldIntermediateStamina   = "intermediateStamina"
	FieldGenki                 = "genki"
	FieldFixedGenki            = "fixedGenki"
	FieldIntermediateGenki     = "intermediateGenki"
	FieldCost                  = "cost"
	FieldScore                 = "score"
	FieldIntermediateScore     = "intermediateScore"
	FieldCardsUsed             = "cardsUsed"
	FieldTurnCardsUsed         = "turnCardsUsed"
	FieldGoodConditionTurns    = "goodConditionTurns"
	FieldPerfectConditionTurns = "perfectConditionTurns"
	FieldConcentration         = "concentration"
	FieldGoodImpressionTurns   = "goodImpressionTurns"
	FieldMotivation            = "motivation"
	FieldHalfCostTurns         = "halfCostTurns"
	FieldDoubleCostTurns       = "doubleCostTurns"
	FieldCostReduction         = "costReduction"
	FieldCostIncrease          = "costIncrease"
	FieldDoubleCardEffectCards = "doubleCardEffectCards"
	FieldNullifyGenkiTurns     = "nullifyGenkiTurns"
	FieldNullifyDebuff         = "nullifyDebuff"
	FieldConcentrationMult     = "concentrationMultiplier"
	FieldMotivationMult        = "motivationMultiplier"
)

var fieldRefs = map[string]func(*State) *float64{
	FieldTurnsElapsed:          func(s *State) *float64 { return &s.TurnsElapsed },
	FieldTurnsRemaining:        func(s *State) *float64 { return &s.TurnsRemaining },
	FieldCardUsesRemaining:     func(s *State) *float64 { return &s.CardUsesRemaining },
	FieldMaxStamina:            func(s *State) *float64 { return &s.MaxStamina },
	FieldStamina:               func(s *State) *float64 { return &s.Stamina },
	FieldFixedStamina:          func(s *State) *float64 { return &s.FixedStamina },
	FieldIntermediateStamina:   func(s *State) *float64 { return &s.IntermediateStamina },
	FieldGenki:                 func(s *State) *float64 { return &s.Genki },
	FieldFixedGenki:            func(s *State) *float64 { return &s.FixedGenki },
	FieldIntermediateGenki:     func(s *State) *float64 { return &s.IntermediateGenki },
	FieldCost:                  func(s *State) *float64 { return &s.Cost },
	FieldScore:                 func(s *State) *float64 { return &s.Score },
	FieldIntermediateScore:     func(s *State) *float64 { return &s.IntermediateScore },
	FieldCardsUsed:             func(s *State) *float64 { return &s.CardsUsed },
	FieldTurnCardsUsed:         func(s *State) *float64 { return &s.TurnCardsUsed },
	FieldGoodConditionTurns:    func(s *State) *float64 { return &s.GoodConditionTurns },
	FieldPerfectConditionTurns: func(s *State) *float64 { return &s.PerfectConditionTurns },
	FieldConcentration:         func(s *State) *float64 { return &s.Concentration },
	FieldGoodImpressionTurns:   func(s *State) *float64 { return &s.GoodImpressionTurns },
	FieldMotivation:            func(s *State) *float64 { return &s.Motivation },
	FieldHalfCostTurns:         func(s *State) *float64 { return &s.HalfCostTurns },
	FieldDoubleCostTurns:       func(s *State) *float64 { return &s.DoubleCostTurns },
	FieldCostReduction:         func(s *State) *float64 { return &s.CostReduction },
	FieldCostIncrease:          func(s *State) *float64 { return &s.CostIncrease },
	FieldDoubleCardEffectCards: func(s *State) *float64 { return &s.DoubleCardEffectCards },
	FieldNullifyGenkiTurns:     func(s *State) *float64 { return &s.NullifyGenkiTurns },
	FieldNullifyDebuff:         func(s *State) *float64 { return &s.NullifyDebuff },
	FieldConcentrationMult:     func(s *State) *float64 { return &s.ConcentrationMultiplier },
	FieldMotivationMult:        func(s *State) *float64 { return &s.MotivationMultiplier },
}

// DebuffFields are voided while nullifyDebuff is positive.
var DebuffFields = []string{
	FieldDoubleCostTurns,
	FieldCostIncrease,
	FieldNullifyGenkiTurns,
}

// CostFields must stay non-negative for a card to be usable.
var CostFields = []string{
	FieldStamina,
	FieldGoodConditionTurns,
	FieldConcentration,
	FieldGoodImpressionTurns,
	FieldMotivation,
}

// EndOfTurnDecrementFields lose one at every end of turn.
var EndOfTurnDecrementFields = []string{
	FieldGoodConditionTurns,
	FieldPerfectConditionTurns,
	FieldGoodImpressionTurns,
	FieldHalfCostTurns,
	FieldDoubleCostTurns,
	FieldNullifyGenkiTurns,
}

// IncreaseTriggerFields fire {field}Increased when an action batch raises them.
var IncreaseTriggerFields = []string{
	FieldGoodImpressionTurns,
	FieldMotivation,
	FieldGoodConditionTurns,
	FieldConcentration,
}

// DecreaseTriggerFields fire {field}Decreased.
var DecreaseTriggerFields = []string{FieldStamina}

// LoggedFields produce diff entries when an action batch changes them.
var LoggedFields = []string{
	FieldTurnsRemaining,
	FieldCardUsesRemaining,
	FieldStamina,
	FieldGenki,
	FieldScore,
	FieldGoodConditionTurns,
	FieldPerfectConditionTurns,
	FieldConcentration,
	FieldGoodImpressionTurns,
	FieldMotivation,
	FieldHalfCostTurns,
	FieldDoubleCostTurns,
	FieldCostReduction,
	FieldCostIncrease,
	FieldDoubleCardEffectCards,
	FieldNullifyGenkiTurns,
}

// WholeFields are rounded up after every assignment.
var WholeFields = []string{
	FieldStamina,
	FieldGenki,
	FieldGoodConditionTurns,
	FieldPerfectConditionTurns,
	FieldConcentration,
	FieldGoodImpressionTurns,
	FieldMotivation,
}

// GraphedFields are sampled at stage start and after every turn.
var GraphedFields = []string{
	FieldStamina,
	FieldGenki,
	FieldScore,
	FieldGoodConditionTurns,
	FieldConcentration,
	FieldGoodImpressionTurns,
	FieldMotivation,
}

// stagedFields maps the public field of a += or -= write to the field that
// buffers it.
var stagedFields = map[string]string{
	FieldScore:   FieldIntermediateScore,
	FieldGenki:   FieldIntermediateGenki,
	FieldStamina: FieldIntermediateStamina,
}

// diffFields is every field compared before and after an action batch.
var diffFields = func() []string {
	seen := make(map[string]bool)
	var out []string
	for _, set := range [][]string{LoggedFields, IncreaseTriggerFields, DecreaseTriggerFields, EndOfTurnDecrementFields} {
		for _, f := range set {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}()

// Phases fired by the engine itself.
const (
	PhaseStartOfStage        = "startOfStage"
	PhaseStartOfTurn         = "startOfTurn"
	PhaseCardUsed            = "cardUsed"
	PhaseActiveCardUsed      = "activeCardUsed"
	PhaseMentalCardUsed      = "mentalCardUsed"
	PhaseAfterCardUsed       = "afterCardUsed"
	PhaseAfterActiveCardUsed = "afterActiveCardUsed"
	PhaseAfterMentalCardUsed = "afterMentalCardUsed"
	PhaseEndOfTurn           = "endOfTurn"
	increasedSuffix          = "Increased"
	decreasedSuffix          = "Decreased"
)
