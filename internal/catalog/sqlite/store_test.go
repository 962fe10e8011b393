package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/louisbranch/stagesim/internal/catalog"
	apperrors "github.com/louisbranch/stagesim/internal/platform/errors"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("Close error = %v", err)
		}
	})
	return store
}

func testRecords() catalog.Records {
	return catalog.Records{
		Cards: []catalog.CardRecord{
			{ID: 2, Name: "アピールの基本+", Type: catalog.CardTypeActive, Plan: catalog.PlanFree, Upgraded: true, Cost: "do:genki-=4", Effects: "do:score+=14"},
			{ID: 1, Name: "アピールの基本", Type: catalog.CardTypeActive, Plan: catalog.PlanFree, Cost: "do:genki-=4", Effects: "do:score+=9"},
			{ID: 40, Name: "signature", Type: catalog.CardTypeMental, Plan: catalog.PlanSense, SourceType: catalog.SourceTypePIdol, PIdolID: 3, Unique: true, ForceInitialHand: true, Limit: 1, Conditions: "if:stamina>=3", Effects: "at:startOfTurn,do:concentration+=1,limit:2"},
		},
		Stages: []catalog.StageRecord{
			{ID: 10, Name: "audition", Plan: catalog.PlanFree, Criteria: "0.5,0.2,0.3", TurnCounts: "4,3,3", FirstTurns: "1,0,0", Effects: "at:startOfStage,do:genki+=5"},
		},
		PItems: []catalog.PItemRecord{
			{ID: 7, Name: "charm", SourceType: catalog.SourceTypePIdol, PIdolID: 3, Effects: "at:endOfTurn,if:score>=100,do:score+=10,limit:1"},
		},
		PIdols: []catalog.PIdolRecord{
			{ID: 3, IdolID: 300, Title: "first light", Plan: catalog.PlanSense, RecommendedEffect: "goodCondition"},
		},
	}
}

func TestPutRecordsRoundTrip(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	if err := store.Put(ctx, "test", testRecords()); err != nil {
		t.Fatalf("Put error = %v", err)
	}

	got, err := store.Records(ctx)
	if err != nil {
		t.Fatalf("Records error = %v", err)
	}
	want := testRecords()
	want.Cards[0], want.Cards[1] = want.Cards[1], want.Cards[0]
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Records = %+v\nwant %+v", got, want)
	}
}

func TestPutUpserts(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	if err := store.Put(ctx, "first", testRecords()); err != nil {
		t.Fatalf("Put error = %v", err)
	}
	updated := catalog.Records{Cards: []catalog.CardRecord{
		{ID: 1, Name: "renamed", Type: catalog.CardTypeActive, Effects: "do:score+=11"},
	}}
	if err := store.Put(ctx, "second", updated); err != nil {
		t.Fatalf("Put error = %v", err)
	}

	card, err := store.Card(ctx, 1)
	if err != nil {
		t.Fatalf("Card error = %v", err)
	}
	if card.Name != "renamed" || card.Effects != "do:score+=11" {
		t.Fatalf("card = %+v, want updated record", card)
	}
	records, err := store.Records(ctx)
	if err != nil {
		t.Fatalf("Records error = %v", err)
	}
	if len(records.Cards) != 3 {
		t.Fatalf("cards = %d, want 3", len(records.Cards))
	}

	imp, ok, err := store.LatestImport(ctx)
	if err != nil || !ok {
		t.Fatalf("LatestImport = %v, %v", ok, err)
	}
	if imp.Source != "second" || imp.Cards != 1 || imp.Version != catalog.PayloadVersion {
		t.Fatalf("import = %+v", imp)
	}
}

func TestLatestImportEmpty(t *testing.T) {
	store := openTempStore(t)
	if _, ok, err := store.LatestImport(context.Background()); err != nil || ok {
		t.Fatalf("LatestImport = %v, %v, want none", ok, err)
	}
}

func TestImportTimestamp(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	if err := store.Put(context.Background(), "clock", catalog.Records{}); err != nil {
		t.Fatalf("Put error = %v", err)
	}
	imp, _, err := store.LatestImport(context.Background())
	if err != nil {
		t.Fatalf("LatestImport error = %v", err)
	}
	if !imp.ImportedAt.Equal(now) {
		t.Fatalf("imported at = %v, want %v", imp.ImportedAt, now)
	}
}

func TestLoadBuildsCatalog(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	if err := store.Put(ctx, "test", testRecords()); err != nil {
		t.Fatalf("Put error = %v", err)
	}
	c, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	card, err := c.Card(40)
	if err != nil {
		t.Fatalf("Card error = %v", err)
	}
	if len(card.Effects) != 1 || card.Effects[0].Phase != "startOfTurn" {
		t.Fatalf("effects = %+v, want one startOfTurn effect", card.Effects)
	}
	stage, err := c.Stage(10)
	if err != nil {
		t.Fatalf("Stage error = %v", err)
	}
	if stage.TurnCount() != 10 {
		t.Fatalf("turn count = %d, want 10", stage.TurnCount())
	}
}

func TestNotFound(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.Card(ctx, 99); apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("Card(99) = %v, want %s", err, apperrors.CodeNotFound)
	}
	if _, err := store.Stage(ctx, 99); apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("Stage(99) = %v, want %s", err, apperrors.CodeNotFound)
	}
}

func TestPutCanceled(t *testing.T) {
	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Put(ctx, "test", testRecords()); err == nil {
		t.Fatal("expected canceled context error")
	}
}
