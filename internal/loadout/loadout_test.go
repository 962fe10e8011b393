package loadout

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/louisbranch/stagesim/internal/catalog"
	apperrors "github.com/louisbranch/stagesim/internal/platform/errors"
)

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	c, err := catalog.New(catalog.Records{
		Cards: []catalog.CardRecord{
			{ID: 1, Name: "basic", Type: catalog.CardTypeActive, Plan: catalog.PlanFree},
			{ID: 2, Name: "basic+", Type: catalog.CardTypeActive, Plan: catalog.PlanFree, Upgraded: true},
			{ID: 30, Name: "solo", Type: catalog.CardTypeMental, Plan: catalog.PlanLogic, Unique: true},
			{ID: 31, Name: "solo+", Type: catalog.CardTypeMental, Plan: catalog.PlanLogic, Unique: true, Upgraded: true},
			{ID: 40, Name: "signature", Type: catalog.CardTypeActive, Plan: catalog.PlanSense, SourceType: catalog.SourceTypePIdol, PIdolID: 4, Unique: true},
		},
		PItems: []catalog.PItemRecord{
			{ID: 7, Name: "charm", SourceType: catalog.SourceTypePIdol, PIdolID: 3},
			{ID: 8, Name: "ribbon", SourceType: "produce"},
		},
		PIdols: []catalog.PIdolRecord{
			{ID: 3, IdolID: 300, Plan: catalog.PlanLogic, RecommendedEffect: "goodImpression"},
			{ID: 4, IdolID: 400, Plan: catalog.PlanSense, RecommendedEffect: "goodCondition"},
		},
	})
	if err != nil {
		t.Fatalf("catalog.New error = %v", err)
	}
	return &Resolver{Catalog: c, DefaultCards: map[string][]int{catalog.PlanSense: {1, 1}}}
}

func TestResolveInfersIdolFromItem(t *testing.T) {
	r := testResolver(t)
	cfg := Config{
		Params:       Params{Stamina: 30},
		PItemIDs:     []int{8, 7, 8, 0},
		SkillCardIDs: [][]int{{30, 31}, {1}},
		FallbackPlan: catalog.PlanSense,
	}
	l, err := r.Resolve(cfg, catalog.Stage{Plan: catalog.PlanFree})
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if l.PIdolID != 3 || l.IdolID != 300 {
		t.Fatalf("p-idol/idol = %d/%d, want 3/300", l.PIdolID, l.IdolID)
	}
	if l.Plan != catalog.PlanLogic {
		t.Fatalf("plan = %q, want %q", l.Plan, catalog.PlanLogic)
	}
	if l.RecommendedEffect != "goodImpression" {
		t.Fatalf("recommended effect = %q, want goodImpression", l.RecommendedEffect)
	}
	if want := []int{8, 7}; !reflect.DeepEqual(l.PItemIDs, want) {
		t.Fatalf("p-items = %v, want %v", l.PItemIDs, want)
	}
	if want := []int{31, 1}; !reflect.DeepEqual(l.SkillCardIDs, want) {
		t.Fatalf("skill cards = %v, want %v", l.SkillCardIDs, want)
	}
}

func TestResolveInfersIdolFromCard(t *testing.T) {
	r := testResolver(t)
	cfg := Config{
		Params:       Params{Stamina: 30},
		SkillCardIDs: [][]int{{40, 40}},
	}
	l, err := r.Resolve(cfg, catalog.Stage{Plan: catalog.PlanLogic})
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if l.PIdolID != 4 || l.Plan != catalog.PlanSense {
		t.Fatalf("p-idol/plan = %d/%s, want 4/sense", l.PIdolID, l.Plan)
	}
	if want := []int{40, 1, 1}; !reflect.DeepEqual(l.SkillCardIDs, want) {
		t.Fatalf("skill cards = %v, want %v", l.SkillCardIDs, want)
	}
}

func TestResolvePlanFallbacks(t *testing.T) {
	tests := []struct {
		name      string
		stagePlan string
		fallback  string
		want      string
	}{
		{name: "stage plan", stagePlan: catalog.PlanSense, fallback: catalog.PlanLogic, want: catalog.PlanSense},
		{name: "free stage uses fallback", stagePlan: catalog.PlanFree, fallback: catalog.PlanLogic, want: catalog.PlanLogic},
		{name: "missing stage plan uses fallback", fallback: catalog.PlanSense, want: catalog.PlanSense},
	}
	r := testResolver(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Params: Params{Stamina: 20}, FallbackPlan: tt.fallback}
			l, err := r.Resolve(cfg, catalog.Stage{Plan: tt.stagePlan})
			if err != nil {
				t.Fatalf("Resolve error = %v", err)
			}
			if l.Plan != tt.want {
				t.Fatalf("plan = %q, want %q", l.Plan, tt.want)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "no plan", cfg: Config{Params: Params{Stamina: 20}}},
		{name: "no stamina", cfg: Config{FallbackPlan: catalog.PlanSense}},
		{name: "unknown card", cfg: Config{Params: Params{Stamina: 20}, FallbackPlan: catalog.PlanSense, SkillCardIDs: [][]int{{99}}}},
		{name: "unknown item", cfg: Config{Params: Params{Stamina: 20}, FallbackPlan: catalog.PlanSense, PItemIDs: []int{99}}},
	}
	r := testResolver(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.cfg, catalog.Stage{Plan: catalog.PlanFree})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperrors.CodeOf(err); got != apperrors.CodeInvalidLoadout {
				t.Fatalf("code = %s, want %s", got, apperrors.CodeInvalidLoadout)
			}
		})
	}
}

func TestTypeMultipliers(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		bonus  float64
		want   catalog.TypeWeights
	}{
		{
			name: "zero params",
			want: catalog.TypeWeights{Vocal: 1, Dance: 1, Visual: 1},
		},
		{
			name:   "low params",
			params: Params{Vocal: 100},
			want:   catalog.TypeWeights{Vocal: 3.5, Dance: 1, Visual: 1},
		},
		{
			name:   "support bonus",
			params: Params{Vocal: 100},
			bonus:  0.05,
			want:   catalog.TypeWeights{Vocal: 3.68, Dance: 1.05, Visual: 1.05},
		},
		{
			name:   "high params",
			params: Params{Dance: 1000},
			want:   catalog.TypeWeights{Vocal: 1, Dance: 8.6, Visual: 1},
		},
		{
			name:   "capped params",
			params: Params{Visual: 5000},
			want:   catalog.TypeWeights{Vocal: 1, Dance: 1, Visual: 15.4},
		},
	}
	criteria := catalog.TypeWeights{Vocal: 0.5, Dance: 0.2, Visual: 0.3}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TypeMultipliers(tt.params, tt.bonus, criteria)
			if got != tt.want {
				t.Fatalf("TypeMultipliers = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loadout.yaml")
	data := `stage: 10
params:
  vocal: 1200
  dance: 900
  visual: 600
  stamina: 32
supportBonus: 0.04
pItems: [7]
skillCards:
  - [1, 2]
  - [40]
fallbackPlan: sense
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error = %v", err)
	}
	if cfg.StageID != 10 || cfg.Params.Stamina != 32 || cfg.FallbackPlan != catalog.PlanSense {
		t.Fatalf("cfg = %+v", cfg)
	}
	if want := [][]int{{1, 2}, {40}}; !reflect.DeepEqual(cfg.SkillCardIDs, want) {
		t.Fatalf("skill cards = %v, want %v", cfg.SkillCardIDs, want)
	}

	if err := os.WriteFile(path, []byte("stage: [oops"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); apperrors.CodeOf(err) != apperrors.CodeInvalidLoadout {
		t.Fatalf("LoadFile(bad yaml) = %v, want %s", err, apperrors.CodeInvalidLoadout)
	}
}

func TestSampleLoadoutsResolve(t *testing.T) {
	data := filepath.Join("..", "..", "data")
	c, err := catalog.LoadDir(filepath.Join(data, "catalog"))
	if err != nil {
		t.Fatalf("LoadDir error = %v", err)
	}
	tests := []struct {
		file    string
		plan    string
		pIdolID int
		has     int
		hasNot  int
	}{
		{file: "sense.yaml", plan: catalog.PlanSense, pIdolID: 1, has: 101, hasNot: 9},
		{file: "logic.yaml", plan: catalog.PlanLogic, pIdolID: 2, has: 38, hasNot: 37},
	}
	for _, tc := range tests {
		t.Run(tc.file, func(t *testing.T) {
			cfg, err := LoadFile(filepath.Join(data, "loadouts", tc.file))
			if err != nil {
				t.Fatalf("LoadFile error = %v", err)
			}
			stage, err := c.Stage(cfg.StageID)
			if err != nil {
				t.Fatalf("Stage error = %v", err)
			}
			l, err := NewResolver(c).Resolve(cfg, stage)
			if err != nil {
				t.Fatalf("Resolve error = %v", err)
			}
			if l.Plan != tc.plan || l.PIdolID != tc.pIdolID {
				t.Fatalf("plan/p-idol = %s/%d, want %s/%d", l.Plan, l.PIdolID, tc.plan, tc.pIdolID)
			}
			if !containsID(l.SkillCardIDs, tc.has) || containsID(l.SkillCardIDs, tc.hasNot) {
				t.Fatalf("skill cards = %v, want %d and not %d", l.SkillCardIDs, tc.has, tc.hasNot)
			}
		})
	}
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// A unique card and its upgrade in one deck resolve to the upgraded copy,
// whichever order they are listed in. Non-unique duplicates all stay.
func TestDedupeKeepsMostUpgradedUniqueCopy(t *testing.T) {
	r := testResolver(t)
	tests := []struct {
		name string
		ids  []int
		want []int
	}{
		{name: "base first", ids: []int{30, 31}, want: []int{31}},
		{name: "upgrade first", ids: []int{31, 30}, want: []int{31}},
		{name: "base only", ids: []int{30, 30}, want: []int{30}},
		{name: "non-unique duplicates", ids: []int{1, 2, 1}, want: []int{2, 1, 1}},
		{name: "empty slots", ids: []int{0, 30, 0}, want: []int{30}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.dedupe(tc.ids)
			if err != nil {
				t.Fatalf("dedupe error = %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("dedupe(%v) = %v, want %v", tc.ids, got, tc.want)
			}
		})
	}
}
