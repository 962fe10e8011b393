package catalog

import (
	"fmt"

	"github.com/louisbranch/stagesim/internal/core/effect"
)

// CardRecord is the stored form of a Card: effect text is kept verbatim.
type CardRecord struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Rarity           string `json:"rarity"`
	Type             string `json:"type"`
	Plan             string `json:"plan"`
	SourceType       string `json:"sourceType"`
	PIdolID          int    `json:"pIdolId,omitempty"`
	UnlockPlv        int    `json:"unlockPlv"`
	Upgraded         bool   `json:"upgraded"`
	Unique           bool   `json:"unique"`
	ForceInitialHand bool   `json:"forceInitialHand"`
	Limit            int    `json:"limit,omitempty"`
	Conditions       string `json:"conditions"`
	Cost             string `json:"cost"`
	Effects          string `json:"effects"`
}

// StageRecord is the stored form of a Stage.
type StageRecord struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Plan       string `json:"plan"`
	Criteria   string `json:"criteria"`
	TurnCounts string `json:"turnCounts"`
	FirstTurns string `json:"firstTurns"`
	Effects    string `json:"effects"`
}

// PItemRecord is the stored form of a PItem.
type PItemRecord struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Rarity     string `json:"rarity"`
	Plan       string `json:"plan"`
	SourceType string `json:"sourceType"`
	PIdolID    int    `json:"pIdolId,omitempty"`
	UnlockPlv  int    `json:"unlockPlv"`
	Effects    string `json:"effects"`
}

// PIdolRecord is the stored form of a PIdol.
type PIdolRecord = PIdol

// Records is a full catalog in stored form.
type Records struct {
	Cards  []CardRecord  `json:"cards"`
	Stages []StageRecord `json:"stages"`
	PItems []PItemRecord `json:"pItems"`
	PIdols []PIdolRecord `json:"pIdols"`
}

// Card parses the record's effect text.
func (r CardRecord) Card() (Card, error) {
	conditions, err := effect.Deserialize(r.Conditions)
	if err != nil {
		return Card{}, fmt.Errorf("card %d conditions: %w", r.ID, err)
	}
	cost, err := effect.Deserialize(r.Cost)
	if err != nil {
		return Card{}, fmt.Errorf("card %d cost: %w", r.ID, err)
	}
	effects, err := effect.DeserializeSequence(r.Effects)
	if err != nil {
		return Card{}, fmt.Errorf("card %d effects: %w", r.ID, err)
	}
	return Card{
		ID:               r.ID,
		Name:             r.Name,
		Rarity:           r.Rarity,
		Type:             r.Type,
		Plan:             r.Plan,
		SourceType:       r.SourceType,
		PIdolID:          r.PIdolID,
		UnlockPlv:        r.UnlockPlv,
		Upgraded:         r.Upgraded,
		Unique:           r.Unique,
		ForceInitialHand: r.ForceInitialHand,
		UsageLimit:       r.Limit,
		Conditions:       conditions.Conditions,
		Cost:             cost.Actions,
		Effects:          effects,
	}, nil
}

// Stage parses the record's weights and effect text.
func (r StageRecord) Stage() (Stage, error) {
	criteria, err := ParseTypeWeights(r.Criteria)
	if err != nil {
		return Stage{}, fmt.Errorf("stage %d criteria: %w", r.ID, err)
	}
	turnCounts, err := ParseTypeWeights(r.TurnCounts)
	if err != nil {
		return Stage{}, fmt.Errorf("stage %d turnCounts: %w", r.ID, err)
	}
	firstTurns, err := ParseTypeWeights(r.FirstTurns)
	if err != nil {
		return Stage{}, fmt.Errorf("stage %d firstTurns: %w", r.ID, err)
	}
	effects, err := effect.DeserializeSequence(r.Effects)
	if err != nil {
		return Stage{}, fmt.Errorf("stage %d effects: %w", r.ID, err)
	}
	return Stage{
		ID:         r.ID,
		Name:       r.Name,
		Type:       r.Type,
		Plan:       r.Plan,
		Criteria:   criteria,
		TurnCounts: turnCounts,
		FirstTurns: firstTurns,
		Effects:    effects,
	}, nil
}

// PItem parses the record's effect text.
func (r PItemRecord) PItem() (PItem, error) {
	effects, err := effect.DeserializeSequence(r.Effects)
	if err != nil {
		return PItem{}, fmt.Errorf("p-item %d effects: %w", r.ID, err)
	}
	return PItem{
		ID:         r.ID,
		Name:       r.Name,
		Rarity:     r.Rarity,
		Plan:       r.Plan,
		SourceType: r.SourceType,
		PIdolID:    r.PIdolID,
		UnlockPlv:  r.UnlockPlv,
		Effects:    effects,
	}, nil
}
