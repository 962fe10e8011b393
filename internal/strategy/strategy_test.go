package strategy

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"slices"
	"testing"

	"github.com/louisbranch/stagesim/internal/catalog"
	"github.com/louisbranch/stagesim/internal/engine"
	"github.com/louisbranch/stagesim/internal/loadout"
	apperrors "github.com/louisbranch/stagesim/internal/platform/errors"
)

func startedTurn(t *testing.T, deck []int) Turn {
	t.Helper()
	c, err := catalog.New(catalog.Records{
		Cards: []catalog.CardRecord{
			{ID: 1, Name: "small", Type: catalog.CardTypeActive, Effects: "do:score+=10"},
			{ID: 2, Name: "big", Type: catalog.CardTypeActive, Cost: "do:stamina-=5", Effects: "do:score+=30"},
			{ID: 3, Name: "heavy", Type: catalog.CardTypeActive, Cost: "do:stamina-=99", Effects: "do:score+=99"},
		},
		Stages: []catalog.StageRecord{
			{ID: 1, Criteria: "0.5,0.2,0.3", TurnCounts: "1,1,1", FirstTurns: "1,0,0"},
		},
	})
	if err != nil {
		t.Fatalf("catalog.New error = %v", err)
	}
	stage, err := c.Stage(1)
	if err != nil {
		t.Fatalf("Stage error = %v", err)
	}
	eng, err := engine.New(engine.Config{
		Stage:   stage,
		Catalog: c,
		Loadout: loadout.Loadout{
			Plan:            catalog.PlanSense,
			Params:          loadout.Params{Stamina: 20},
			TypeMultipliers: catalog.TypeWeights{Vocal: 1, Dance: 1, Visual: 1},
			SkillCardIDs:    deck,
		},
		Rand:   rand.New(rand.NewSource(3)),
		Strict: true,
	})
	if err != nil {
		t.Fatalf("engine.New error = %v", err)
	}
	s, err := eng.InitialState()
	if err != nil {
		t.Fatalf("InitialState error = %v", err)
	}
	if err := eng.StartStage(s); err != nil {
		t.Fatalf("StartStage error = %v", err)
	}
	return Turn{Engine: eng, State: s}
}

func TestLegalCardsDeduplicates(t *testing.T) {
	turn := startedTurn(t, []int{1, 1, 3})
	legal, err := LegalCards(turn.Engine, turn.State)
	if err != nil {
		t.Fatalf("LegalCards error = %v", err)
	}
	if want := []int{1}; !reflect.DeepEqual(legal, want) {
		t.Fatalf("legal = %v, want %v", legal, want)
	}
}

func TestGreedyPicksBestGain(t *testing.T) {
	turn := startedTurn(t, []int{1, 2, 3})
	before := turn.State.Clone()

	d, err := NewGreedy(1).Evaluate(context.Background(), turn)
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}
	if d.CardID != 2 {
		t.Fatalf("card = %d, want 2 (scores %v)", d.CardID, d.Scores)
	}
	if len(d.Scores) != 2 {
		t.Fatalf("scores = %v, want the two legal cards", d.Scores)
	}
	if _, ok := d.Scores[3]; ok {
		t.Fatal("unplayable card was scored")
	}
	if d.Scores[2] <= d.Scores[1] {
		t.Fatalf("score(2) = %v, want more than score(1) = %v", d.Scores[2], d.Scores[1])
	}
	if !reflect.DeepEqual(before, turn.State) {
		t.Fatal("Evaluate mutated the live state")
	}
}

func TestGreedyCanceled(t *testing.T) {
	turn := startedTurn(t, []int{1, 2})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewGreedy(1).Evaluate(ctx, turn); !errors.Is(err, context.Canceled) {
		t.Fatalf("Evaluate error = %v, want context.Canceled", err)
	}
}

func TestEndsTurnWithoutLegalCards(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			turn := startedTurn(t, []int{3})
			s, err := New(name, 1)
			if err != nil {
				t.Fatalf("New error = %v", err)
			}
			d, err := s.Evaluate(context.Background(), turn)
			if err != nil {
				t.Fatalf("Evaluate error = %v", err)
			}
			if d.CardID != 0 {
				t.Fatalf("card = %d, want 0", d.CardID)
			}
		})
	}
}

func TestFirst(t *testing.T) {
	turn := startedTurn(t, []int{1, 2, 3})
	legal, err := LegalCards(turn.Engine, turn.State)
	if err != nil {
		t.Fatalf("LegalCards error = %v", err)
	}
	d, err := First{}.Evaluate(context.Background(), turn)
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}
	if d.CardID != legal[0] {
		t.Fatalf("card = %d, want %d", d.CardID, legal[0])
	}
}

func TestRandomIsSeeded(t *testing.T) {
	turn := startedTurn(t, []int{1, 2, 3})
	legal, err := LegalCards(turn.Engine, turn.State)
	if err != nil {
		t.Fatalf("LegalCards error = %v", err)
	}
	var picks [2][]int
	for i := range picks {
		r := NewRandom(7)
		for range 10 {
			d, err := r.Evaluate(context.Background(), turn)
			if err != nil {
				t.Fatalf("Evaluate error = %v", err)
			}
			if !slices.Contains(legal, d.CardID) {
				t.Fatalf("card = %d, not in legal %v", d.CardID, legal)
			}
			picks[i] = append(picks[i], d.CardID)
		}
	}
	if !reflect.DeepEqual(picks[0], picks[1]) {
		t.Fatalf("picks differ for one seed: %v vs %v", picks[0], picks[1])
	}
}

func TestNewUnknownStrategy(t *testing.T) {
	_, err := New("psychic", 1)
	if got := apperrors.CodeOf(err); got != apperrors.CodeNotFound {
		t.Fatalf("code = %s, want %s", got, apperrors.CodeNotFound)
	}
}
