package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/louisbranch/stagesim/internal/core/effect"
)

// TurnType is the judged parameter of a turn.
type TurnType string

const (
	TurnVocal  TurnType = "vocal"
	TurnDance  TurnType = "dance"
	TurnVisual TurnType = "visual"
)

// TurnTypes lists the turn types in their canonical order.
var TurnTypes = []TurnType{TurnVocal, TurnDance, TurnVisual}

// TypeWeights holds one number per turn type.
type TypeWeights struct {
	Vocal  float64 `json:"vocal" yaml:"vocal"`
	Dance  float64 `json:"dance" yaml:"dance"`
	Visual float64 `json:"visual" yaml:"visual"`
}

// Get returns the weight for t.
func (w TypeWeights) Get(t TurnType) float64 {
	switch t {
	case TurnVocal:
		return w.Vocal
	case TurnDance:
		return w.Dance
	case TurnVisual:
		return w.Visual
	default:
		return 0
	}
}

// Set updates the weight for t.
func (w *TypeWeights) Set(t TurnType, v float64) {
	switch t {
	case TurnVocal:
		w.Vocal = v
	case TurnDance:
		w.Dance = v
	case TurnVisual:
		w.Visual = v
	}
}

// Sum adds the three weights.
func (w TypeWeights) Sum() float64 {
	return w.Vocal + w.Dance + w.Visual
}

// String renders the weights as "vocal,dance,visual".
func (w TypeWeights) String() string {
	parts := make([]string, 0, len(TurnTypes))
	for _, t := range TurnTypes {
		parts = append(parts, strconv.FormatFloat(w.Get(t), 'f', -1, 64))
	}
	return strings.Join(parts, ",")
}

// ParseTypeWeights parses a "vocal,dance,visual" triple.
func ParseTypeWeights(s string) (TypeWeights, error) {
	parts := strings.Split(s, ",")
	if len(parts) != len(TurnTypes) {
		return TypeWeights{}, fmt.Errorf("want 3 comma-separated values, got %q", s)
	}
	var w TypeWeights
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return TypeWeights{}, fmt.Errorf("parse %q: %w", part, err)
		}
		w.Set(TurnTypes[i], v)
	}
	return w, nil
}

// Card types.
const (
	CardTypeActive  = "active"
	CardTypeMental  = "mental"
	CardTypeTrouble = "trouble"
)

// Plans.
const (
	PlanSense = "sense"
	PlanLogic = "logic"
	PlanFree  = "free"
)

// SourceTypePIdol marks signature cards and items of a p-idol.
const SourceTypePIdol = "pIdol"

// Card is a skill card with its effect text already parsed.
type Card struct {
	ID               int             `json:"id"`
	Name             string          `json:"name"`
	Rarity           string          `json:"rarity"`
	Type             string          `json:"type"`
	Plan             string          `json:"plan"`
	SourceType       string          `json:"sourceType"`
	PIdolID          int             `json:"pIdolId,omitempty"`
	UnlockPlv        int             `json:"unlockPlv"`
	Upgraded         bool            `json:"upgraded"`
	Unique           bool            `json:"unique"`
	ForceInitialHand bool            `json:"forceInitialHand"`
	UsageLimit       int             `json:"limit,omitempty"`
	Conditions       []string        `json:"conditions,omitempty"`
	Cost             []string        `json:"cost,omitempty"`
	Effects          []effect.Effect `json:"effects,omitempty"`
}

// HasUsageLimit reports whether the card leaves the run after use.
func (c Card) HasUsageLimit() bool {
	return c.UsageLimit > 0
}

// BaseID returns the id of the non-upgraded version of the card.
// Upgraded cards follow their base card: base id + 1.
func (c Card) BaseID() int {
	if c.Upgraded {
		return c.ID - 1
	}
	return c.ID
}

// UpgradedID returns the id of the upgraded version of the card.
func (c Card) UpgradedID() int {
	return c.BaseID() + 1
}

// Stage is a scripted contest.
type Stage struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Plan       string          `json:"plan"`
	Criteria   TypeWeights     `json:"criteria"`
	TurnCounts TypeWeights     `json:"turnCounts"`
	FirstTurns TypeWeights     `json:"firstTurns"`
	Effects    []effect.Effect `json:"effects,omitempty"`
}

// TurnCount is the total number of turns in the stage.
func (s Stage) TurnCount() int {
	return int(s.TurnCounts.Sum())
}

// PItem is an equippable item whose effects are installed at stage start.
type PItem struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	Rarity     string          `json:"rarity"`
	Plan       string          `json:"plan"`
	SourceType string          `json:"sourceType"`
	PIdolID    int             `json:"pIdolId,omitempty"`
	UnlockPlv  int             `json:"unlockPlv"`
	Effects    []effect.Effect `json:"effects,omitempty"`
}

// PIdol is a playable idol variant.
type PIdol struct {
	ID                int    `json:"id"`
	IdolID            int    `json:"idolId"`
	Title             string `json:"title"`
	Rarity            string `json:"rarity"`
	Plan              string `json:"plan"`
	RecommendedEffect string `json:"recommendedEffect"`
}
