package play

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/louisbranch/stagesim/internal/catalog"
)

func TestParseConfig(t *testing.T) {
	t.Setenv("STAGESIM_SEED", "11")
	cfg, err := ParseConfig(flag.NewFlagSet("play", flag.ContinueOnError), []string{"-loadout", "me.yaml", "-stage", "2"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Loadout != "me.yaml" || cfg.Stage != 2 || cfg.Seed != 11 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestNewEngine(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		catalog.CardsFile:  `{"version":"v1","source":"test","items":[{"id":1,"name":"appeal","type":"active","plan":"free","effects":"do:score+=10"}]}`,
		catalog.StagesFile: `{"version":"v1","source":"test","items":[{"id":4,"plan":"free","criteria":"0.4,0.3,0.3","turnCounts":"2,1,1","firstTurns":"1,0,0"}]}`,
		"loadout.yaml":     "stage: 1\nparams:\n  stamina: 20\nskillCards:\n  - [1, 1]\nfallbackPlan: free\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	cfg := Config{Loadout: filepath.Join(dir, "loadout.yaml"), Stage: 4, Seed: 9}
	cfg.Catalog.Dir = dir
	eng, seed, err := NewEngine(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewEngine error = %v", err)
	}
	if seed != 9 || eng.Stage().ID != 4 || eng.Stage().TurnCount() != 4 {
		t.Fatalf("seed/stage = %d/%+v", seed, eng.Stage())
	}

	cfg.Stage = 0
	if _, _, err := NewEngine(context.Background(), cfg); err == nil {
		t.Fatal("expected unknown stage error")
	}
}

func TestNewEngineRequiresLoadout(t *testing.T) {
	if _, _, err := NewEngine(context.Background(), Config{}); err == nil {
		t.Fatal("expected error")
	}
}
