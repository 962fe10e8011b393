package engine

import (
	"math/rand"
	"testing"

	"github.com/louisbranch/stagesim/internal/catalog"
	"github.com/louisbranch/stagesim/internal/core/effect"
	"github.com/louisbranch/stagesim/internal/loadout"
	"github.com/louisbranch/stagesim/internal/telemetry"
)

func card(id int, cost, effects string) catalog.CardRecord {
	return catalog.CardRecord{
		ID:         id,
		Name:       "card",
		Type:       catalog.CardTypeActive,
		Plan:       catalog.PlanFree,
		SourceType: "produce",
		Cost:       cost,
		Effects:    effects,
	}
}

func testCatalog(t *testing.T, records catalog.Records) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(records)
	if err != nil {
		t.Fatalf("catalog.New error = %v", err)
	}
	return c
}

func testStage(t *testing.T, counts, firstTurns string) catalog.Stage {
	t.Helper()
	stage, err := catalog.StageRecord{
		ID:         1,
		Criteria:   "0.5,0.2,0.3",
		TurnCounts: counts,
		FirstTurns: firstTurns,
	}.Stage()
	if err != nil {
		t.Fatalf("Stage error = %v", err)
	}
	return stage
}

type fixture struct {
	records    catalog.Records
	stage      catalog.Stage
	loadout    loadout.Loadout
	seed       int64
	strict     bool
	withLogger bool
}

func newFixture(t *testing.T) fixture {
	return fixture{
		records: catalog.Records{Cards: []catalog.CardRecord{
			card(1, "", "do:score+=10"),
			card(3, "", "do:score+=10"),
			card(5, "", "do:score+=10"),
			card(7, "", "do:score+=10"),
		}},
		stage: testStage(t, "2,1,1", "1,0,0"),
		loadout: loadout.Loadout{
			Plan:            catalog.PlanSense,
			Params:          loadout.Params{Stamina: 30},
			TypeMultipliers: catalog.TypeWeights{Vocal: 1, Dance: 1, Visual: 1},
			SkillCardIDs:    []int{1, 3, 5, 7},
		},
		seed:       1,
		strict:     true,
		withLogger: true,
	}
}

func (f fixture) build(t *testing.T) (*Engine, *State) {
	t.Helper()
	var logger *telemetry.Logger
	if f.withLogger {
		logger = telemetry.NewLogger(nil)
	}
	e, err := New(Config{
		Stage:   f.stage,
		Loadout: f.loadout,
		Catalog: testCatalog(t, f.records),
		Rand:    rand.New(rand.NewSource(f.seed)),
		Logger:  logger,
		Strict:  f.strict,
	})
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	s, err := e.InitialState()
	if err != nil {
		t.Fatalf("InitialState error = %v", err)
	}
	return e, s
}

func install(s *State, text string) []effect.Handle {
	effects, err := effect.DeserializeSequence(text)
	if err != nil {
		panic(err)
	}
	return s.Effects.Install(effect.Source{Type: effect.SourceStage}, effects)
}
