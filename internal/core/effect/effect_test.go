package effect

import (
	"testing"

	apperrors "github.com/louisbranch/stagesim/internal/platform/errors"
)

func TestDeserialize(t *testing.T) {
	e, err := Deserialize("at:endOfTurn,if:goodImpressionTurns>=1,if:stamina>0,do:score+=goodImpressionTurns,order:100,limit:2,ttl:0")
	if err != nil {
		t.Fatalf("Deserialize error = %v", err)
	}
	if e.Phase != "endOfTurn" {
		t.Fatalf("Phase = %q, want %q", e.Phase, "endOfTurn")
	}
	if len(e.Conditions) != 2 || e.Conditions[1] != "stamina>0" {
		t.Fatalf("Conditions = %v, want 2 conditions", e.Conditions)
	}
	if len(e.Actions) != 1 || e.Actions[0] != "score+=goodImpressionTurns" {
		t.Fatalf("Actions = %v", e.Actions)
	}
	if e.Order != 100 {
		t.Fatalf("Order = %d, want 100", e.Order)
	}
	if !e.HasLimit || e.Limit != 2 {
		t.Fatalf("Limit = %d (%v), want 2", e.Limit, e.HasLimit)
	}
	if !e.HasTTL || e.TTL != 0 {
		t.Fatalf("TTL = %d (%v), want 0", e.TTL, e.HasTTL)
	}
}

func TestDeserializeKeepsParenthesizedCommas(t *testing.T) {
	e, err := Deserialize("do:setScoreBuff(0.1,3),do:drawCard")
	if err != nil {
		t.Fatalf("Deserialize error = %v", err)
	}
	if len(e.Actions) != 2 || e.Actions[0] != "setScoreBuff(0.1,3)" {
		t.Fatalf("Actions = %v, want [setScoreBuff(0.1,3) drawCard]", e.Actions)
	}
}

func TestDeserializeErrors(t *testing.T) {
	for _, clause := range []string{"when:now", "do", "limit:one", "order:1.5"} {
		_, err := Deserialize(clause)
		if err == nil {
			t.Fatalf("Deserialize(%q) expected error", clause)
		}
		if code := apperrors.CodeOf(err); code != apperrors.CodeInvalidEffect {
			t.Fatalf("Deserialize(%q) code = %s, want %s", clause, code, apperrors.CodeInvalidEffect)
		}
	}
}

func TestDeserializeSequence(t *testing.T) {
	effects, err := DeserializeSequence("at:startOfTurn,if:stamina>5;do:genki+=3")
	if err != nil {
		t.Fatalf("DeserializeSequence error = %v", err)
	}
	if len(effects) != 2 {
		t.Fatalf("len = %d, want 2", len(effects))
	}
	empty, err := DeserializeSequence("")
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty sequence = %v, %v", empty, err)
	}
}

func TestCompilePairsGates(t *testing.T) {
	raw := []Effect{
		{Phase: "startOfTurn", Conditions: []string{"stamina>5"}},
		{Phase: "endOfTurn", Actions: []string{"genki+=3"}},
		{Phase: "cardUsed", Actions: []string{"score+=1"}},
		{Phase: "endOfTurn", Conditions: []string{"genki>0"}},
	}
	compiled := Compile(raw)
	if len(compiled) != 3 {
		t.Fatalf("len = %d, want 3", len(compiled))
	}
	if compiled[0].Kind != KindGate {
		t.Fatalf("compiled[0].Kind = %v, want gate", compiled[0].Kind)
	}
	inner, ok := compiled[0].Installs()
	if !ok || inner.Phase != "endOfTurn" || inner.Actions[0] != "genki+=3" {
		t.Fatalf("gate installs %+v, %v", inner, ok)
	}
	if compiled[1].Kind != KindRule || compiled[1].Phase != "cardUsed" {
		t.Fatalf("compiled[1] = %+v, want cardUsed rule", compiled[1])
	}
	if compiled[2].Kind != KindRule {
		t.Fatalf("trailing action-less clause should stay a rule")
	}
}

func TestStringRendersGate(t *testing.T) {
	gate := Compile([]Effect{
		{Phase: "startOfTurn", Conditions: []string{"stamina>5"}},
		{Actions: []string{"genki+=3"}, HasLimit: true, Limit: 1},
	})[0]
	want := "at:startOfTurn,if:stamina>5;do:genki+=3,limit:1"
	if got := gate.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestForPhaseOrdering(t *testing.T) {
	r := NewRegistry()
	r.Install(Source{Type: SourceStage}, []Effect{
		{Phase: "endOfTurn", Actions: []string{"a"}, Order: 100},
		{Phase: "endOfTurn", Actions: []string{"b"}},
		{Phase: "startOfTurn", Actions: []string{"x"}},
	})
	r.Install(Source{Type: SourcePItem, ID: "7"}, []Effect{
		{Phase: "endOfTurn", Actions: []string{"c"}},
		{Phase: "endOfTurn", Actions: []string{"d"}, Order: -1},
	})

	got := r.ForPhase("endOfTurn")
	want := []string{"d", "b", "c", "a"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, rec := range got {
		if rec.Effect.Actions[0] != want[i] {
			t.Fatalf("ForPhase[%d] = %q, want %q", i, rec.Effect.Actions[0], want[i])
		}
	}
	if got[0].Source.Type != SourcePItem || got[0].Source.ID != "7" {
		t.Fatalf("source = %+v, want pItem 7", got[0].Source)
	}
	if len(r.ForPhase("cardUsed")) != 0 {
		t.Fatal("expected no records for cardUsed")
	}
}

func TestDecrementLimits(t *testing.T) {
	r := NewRegistry()
	handles := r.Install(Source{}, []Effect{
		{Phase: "cardUsed", Actions: []string{"a"}, HasLimit: true, Limit: 1},
		{Phase: "cardUsed", Actions: []string{"b"}},
		{Phase: "cardUsed", Actions: []string{"c"}, HasLimit: true, Limit: 2},
	})

	r.DecrementLimits(handles[:2])
	if got := len(r.ForPhase("cardUsed")); got != 2 {
		t.Fatalf("active = %d, want 2", got)
	}
	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}
	rec, _ := r.Get(handles[2])
	if rec.Effect.Limit != 2 {
		t.Fatalf("unfired limit = %d, want 2", rec.Effect.Limit)
	}

	r.DecrementLimits(handles[:1])
	rec, _ = r.Get(handles[0])
	if rec.Effect.Limit != 0 {
		t.Fatalf("exhausted limit = %d, want 0", rec.Effect.Limit)
	}
}

func TestTickTTL(t *testing.T) {
	r := NewRegistry()
	handles := r.Install(Source{}, []Effect{
		{Phase: "endOfTurn", Actions: []string{"a"}, HasTTL: true, TTL: 0},
		{Phase: "endOfTurn", Actions: []string{"b"}},
	})
	if got := len(r.ForPhase("endOfTurn")); got != 2 {
		t.Fatalf("active = %d, want 2", got)
	}
	r.TickTTL()
	r.TickTTL()
	rec, _ := r.Get(handles[0])
	if rec.Effect.TTL != -1 {
		t.Fatalf("TTL = %d, want -1", rec.Effect.TTL)
	}
	got := r.ForPhase("endOfTurn")
	if len(got) != 1 || got[0].Effect.Actions[0] != "b" {
		t.Fatalf("ForPhase = %+v, want only b", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	r := NewRegistry()
	handles := r.Install(Source{}, []Effect{
		{Phase: "cardUsed", Actions: []string{"a"}, HasLimit: true, Limit: 1},
	})
	c := r.Clone()
	c.DecrementLimits(handles)
	c.Install(Source{}, []Effect{{Phase: "cardUsed", Actions: []string{"b"}}})

	if got := len(r.ForPhase("cardUsed")); got != 1 {
		t.Fatalf("original active = %d, want 1", got)
	}
	if r.Len() != 1 {
		t.Fatalf("original Len = %d, want 1", r.Len())
	}
	next := c.Install(Source{}, []Effect{{Phase: "x"}})
	if next[0] <= handles[0] {
		t.Fatalf("clone handle %d not after %d", next[0], handles[0])
	}
}
