package catalog

import "slices"

// CardFilter selects cards. Empty fields match everything.
type CardFilter struct {
	Rarities    []string
	Types       []string
	Plans       []string
	UnlockPlvs  []int
	SourceTypes []string
	PIdolIDs    []int
}

// Matches reports whether c passes the filter.
func (f CardFilter) Matches(c Card) bool {
	return matchAny(f.Rarities, c.Rarity) &&
		matchAny(f.Types, c.Type) &&
		matchAny(f.Plans, c.Plan) &&
		matchAny(f.UnlockPlvs, c.UnlockPlv) &&
		matchAny(f.SourceTypes, c.SourceType) &&
		matchAny(f.PIdolIDs, c.PIdolID)
}

// ItemFilter selects p-items. Empty fields match everything.
type ItemFilter struct {
	Rarities    []string
	Plans       []string
	UnlockPlvs  []int
	SourceTypes []string
	PIdolIDs    []int
}

// Matches reports whether item passes the filter.
func (f ItemFilter) Matches(item PItem) bool {
	return matchAny(f.Rarities, item.Rarity) &&
		matchAny(f.Plans, item.Plan) &&
		matchAny(f.UnlockPlvs, item.UnlockPlv) &&
		matchAny(f.SourceTypes, item.SourceType) &&
		matchAny(f.PIdolIDs, item.PIdolID)
}

// IdolFilter selects p-idols. Empty fields match everything.
type IdolFilter struct {
	IdolIDs            []int
	Rarities           []string
	Plans              []string
	RecommendedEffects []string
}

// Matches reports whether idol passes the filter.
func (f IdolFilter) Matches(idol PIdol) bool {
	return matchAny(f.IdolIDs, idol.IdolID) &&
		matchAny(f.Rarities, idol.Rarity) &&
		matchAny(f.Plans, idol.Plan) &&
		matchAny(f.RecommendedEffects, idol.RecommendedEffect)
}

// FilterCards returns the cards matching f, in input order.
func FilterCards(cards []Card, f CardFilter) []Card {
	var out []Card
	for _, c := range cards {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}

// FilterItems returns the items matching f, in input order.
func FilterItems(items []PItem, f ItemFilter) []PItem {
	var out []PItem
	for _, item := range items {
		if f.Matches(item) {
			out = append(out, item)
		}
	}
	return out
}

// FilterIdols returns the p-idols matching f, in input order.
func FilterIdols(idols []PIdol, f IdolFilter) []PIdol {
	var out []PIdol
	for _, idol := range idols {
		if f.Matches(idol) {
			out = append(out, idol)
		}
	}
	return out
}

func matchAny[T comparable](allowed []T, v T) bool {
	return len(allowed) == 0 || slices.Contains(allowed, v)
}
