// Package loadout resolves a player's equipped idol, items and skill cards
// against a stage into the values the engine runs with.
package loadout

import (
	"fmt"
	"math"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/stagesim/internal/catalog"
	apperrors "github.com/louisbranch/stagesim/internal/platform/errors"
)

// Params are the idol's base parameters.
type Params struct {
	Vocal   float64 `json:"vocal" yaml:"vocal"`
	Dance   float64 `json:"dance" yaml:"dance"`
	Visual  float64 `json:"visual" yaml:"visual"`
	Stamina float64 `json:"stamina" yaml:"stamina"`
}

// Get returns the parameter judged on turns of type t.
func (p Params) Get(t catalog.TurnType) float64 {
	switch t {
	case catalog.TurnVocal:
		return p.Vocal
	case catalog.TurnDance:
		return p.Dance
	case catalog.TurnVisual:
		return p.Visual
	default:
		return 0
	}
}

// Config is what a player chooses before a stage.
type Config struct {
	StageID        int     `json:"stageId" yaml:"stage"`
	Params         Params  `json:"params" yaml:"params"`
	SupportBonus   float64 `json:"supportBonus" yaml:"supportBonus"`
	PItemIDs       []int   `json:"pItemIds" yaml:"pItems"`
	SkillCardIDs   [][]int `json:"skillCardIds" yaml:"skillCards"`
	FallbackPlan   string  `json:"fallbackPlan" yaml:"fallbackPlan"`
	FallbackIdolID int     `json:"fallbackIdolId" yaml:"fallbackIdolId"`
}

// Loadout is a resolved Config.
type Loadout struct {
	PIdolID           int                 `json:"pIdolId,omitempty"`
	IdolID            int                 `json:"idolId,omitempty"`
	Plan              string              `json:"plan"`
	RecommendedEffect string              `json:"recommendedEffect,omitempty"`
	Params            Params              `json:"params"`
	SupportBonus      float64             `json:"supportBonus"`
	TypeMultipliers   catalog.TypeWeights `json:"typeMultipliers"`
	PItemIDs          []int               `json:"pItemIds"`
	SkillCardIDs      []int               `json:"skillCardIds"`
}

// DefaultCardsByPlan are appended to every deck of the matching plan.
var DefaultCardsByPlan = map[string][]int{
	catalog.PlanSense: {5, 7, 1, 1, 15, 15, 17, 17},
	catalog.PlanLogic: {9, 11, 19, 19, 21, 21, 13, 13},
}

// Resolver resolves configs against a catalog.
type Resolver struct {
	Catalog      catalog.Provider
	DefaultCards map[string][]int
}

// NewResolver returns a resolver using DefaultCardsByPlan.
func NewResolver(p catalog.Provider) *Resolver {
	return &Resolver{Catalog: p, DefaultCards: DefaultCardsByPlan}
}

// Resolve turns cfg into a loadout for stage.
func (r *Resolver) Resolve(cfg Config, stage catalog.Stage) (Loadout, error) {
	var skillCardIDs []int
	for _, group := range cfg.SkillCardIDs {
		skillCardIDs = append(skillCardIDs, group...)
	}

	pIdolID, err := r.inferPIdolID(cfg.PItemIDs, skillCardIDs)
	if err != nil {
		return Loadout{}, err
	}

	l := Loadout{
		PIdolID:      pIdolID,
		IdolID:       cfg.FallbackIdolID,
		Params:       cfg.Params,
		SupportBonus: cfg.SupportBonus,
		PItemIDs:     uniqueIDs(cfg.PItemIDs),
	}

	switch {
	case pIdolID != 0:
		idol, err := r.Catalog.Idol(pIdolID)
		if err != nil {
			return Loadout{}, invalidLoadout(fmt.Sprintf("p-idol %d", pIdolID), err)
		}
		l.IdolID = idol.IdolID
		l.Plan = idol.Plan
		l.RecommendedEffect = idol.RecommendedEffect
	case stage.Plan != "" && stage.Plan != catalog.PlanFree:
		l.Plan = stage.Plan
	default:
		l.Plan = cfg.FallbackPlan
	}
	if l.Plan == "" {
		return Loadout{}, invalidLoadout("plan could not be inferred and no fallback plan is set", nil)
	}
	if l.Params.Stamina <= 0 {
		return Loadout{}, invalidLoadout("stamina must be positive", nil)
	}

	l.TypeMultipliers = TypeMultipliers(cfg.Params, cfg.SupportBonus, stage.Criteria)

	deck := append(skillCardIDs, r.DefaultCards[l.Plan]...)
	l.SkillCardIDs, err = r.dedupe(deck)
	if err != nil {
		return Loadout{}, err
	}
	return l, nil
}

// inferPIdolID looks for a signature p-item first, then a signature card.
func (r *Resolver) inferPIdolID(pItemIDs, skillCardIDs []int) (int, error) {
	for _, id := range pItemIDs {
		if id == 0 {
			continue
		}
		item, err := r.Catalog.Item(id)
		if err != nil {
			return 0, invalidLoadout(fmt.Sprintf("p-item %d", id), err)
		}
		if item.SourceType == catalog.SourceTypePIdol {
			return item.PIdolID, nil
		}
	}
	for _, id := range skillCardIDs {
		if id == 0 {
			continue
		}
		card, err := r.Catalog.Card(id)
		if err != nil {
			return 0, invalidLoadout(fmt.Sprintf("skill card %d", id), err)
		}
		if card.SourceType == catalog.SourceTypePIdol {
			return card.PIdolID, nil
		}
	}
	return 0, nil
}

// dedupe keeps only the most upgraded copy of each unique card. Upgraded
// copies are ordered first so they win over their base card.
func (r *Resolver) dedupe(ids []int) ([]int, error) {
	cards := make([]catalog.Card, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		card, err := r.Catalog.Card(id)
		if err != nil {
			return nil, invalidLoadout(fmt.Sprintf("skill card %d", id), err)
		}
		cards = append(cards, card)
	}
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Upgraded && !cards[j].Upgraded
	})

	deduped := make([]int, 0, len(cards))
	for _, card := range cards {
		if card.Unique {
			base := card.BaseID()
			if slices.Contains(deduped, base) || slices.Contains(deduped, base+1) {
				continue
			}
		}
		deduped = append(deduped, card.ID)
	}
	return deduped, nil
}

// TypeMultipliers computes the score multiplier of each turn type from the
// idol's parameters and the stage's judging criteria.
func TypeMultipliers(params Params, supportBonus float64, criteria catalog.TypeWeights) catalog.TypeWeights {
	var out catalog.TypeWeights
	for _, t := range catalog.TurnTypes {
		param := math.Min(params.Get(t), 1800)
		m := param
		for i := 0; i < 5; i++ {
			step := float64(300 * i)
			if param > step {
				m += step
			} else {
				m += param
			}
		}
		m = m*criteria.Get(t) + 100
		m = math.Ceil(m) * (1 + supportBonus)
		m = math.Ceil(math.Floor(m*10) / 10)
		out.Set(t, m/100)
	}
	return out
}

// LoadFile reads a YAML loadout config.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, invalidLoadout(fmt.Sprintf("decode %s", path), err)
	}
	return cfg, nil
}

func uniqueIDs(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id == 0 || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func invalidLoadout(reason string, cause error) error {
	if cause == nil {
		return apperrors.WithMetadata(apperrors.CodeInvalidLoadout, "invalid loadout: "+reason, map[string]string{"Reason": reason})
	}
	return apperrors.WrapWithMetadata(apperrors.CodeInvalidLoadout, "invalid loadout: "+reason, map[string]string{"Reason": reason + ": " + cause.Error()}, cause)
}
