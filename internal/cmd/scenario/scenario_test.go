package scenario

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/stagesim/internal/catalog"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("scenario", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Catalog.Dir != "data/catalog" {
		t.Fatalf("catalog dir = %q, want data/catalog", cfg.Catalog.Dir)
	}
	if !cfg.Assertions {
		t.Fatal("expected assertions to default to true")
	}
}

func TestParseConfigFlags(t *testing.T) {
	t.Setenv("STAGESIM_SCENARIO_FILE", "env.lua")
	fs := flag.NewFlagSet("scenario", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"-assert=false", "-verbose"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Scenario != "env.lua" || cfg.Assertions || !cfg.Verbose {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestRunRequiresScenario(t *testing.T) {
	if err := Run(context.Background(), Config{}, nil, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunScenarioFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}
	write(catalog.CardsFile, `{"version":"v1","source":"test","items":[{"id":1,"name":"appeal","type":"active","plan":"free","effects":"do:score+=10"}]}`)
	write(catalog.StagesFile, `{"version":"v1","source":"test","items":[{"id":1,"name":"audition","plan":"free","criteria":"0.4,0.3,0.3","turnCounts":"1,1,1","firstTurns":"1,0,0"}]}`)
	script := write("smoke.lua", `
local s = Scenario.new()
s:stage(1)
s:loadout({stamina = 20, plan = "free", skill_cards = {1, 1, 1}})
s:start()
s:auto("greedy")
s:expect({score = 30})
return s
`)

	var out bytes.Buffer
	cfg := Config{Scenario: script, Assertions: true}
	cfg.Catalog.Dir = dir
	if err := Run(context.Background(), cfg, &out, nil); err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if got := out.String(); !strings.Contains(got, "smoke: 5 step(s), score 30, 0 failed expectation(s)") {
		t.Fatalf("output = %q", got)
	}
}
