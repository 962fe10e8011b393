package source

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/louisbranch/stagesim/internal/catalog"
	catalogsqlite "github.com/louisbranch/stagesim/internal/catalog/sqlite"
)

const cardsJSON = `{"version":"v1","source":"test","items":[{"id":1,"name":"appeal","type":"active","plan":"free","effects":"do:score+=10"}]}`

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, catalog.CardsFile), []byte(cardsJSON), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Config{Dir: dir}.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if _, err := c.Card(1); err != nil {
		t.Fatalf("Card(1) error = %v", err)
	}
}

func TestLoadDBTakesPrecedence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := catalogsqlite.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	records := catalog.Records{Cards: []catalog.CardRecord{
		{ID: 7, Name: "stored", Type: catalog.CardTypeMental, Plan: catalog.PlanFree},
	}}
	if err := store.Put(ctx, "test", records); err != nil {
		t.Fatalf("Put error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}

	c, err := Config{Dir: "does-not-exist", DB: path}.Load(ctx)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if _, err := c.Card(7); err != nil {
		t.Fatalf("Card(7) error = %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "empty", cfg: Config{}},
		{name: "missing dir", cfg: Config{Dir: filepath.Join(t.TempDir(), "missing")}},
		{name: "not a dir", cfg: Config{Dir: file}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cfg.Load(context.Background()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestBindFlags(t *testing.T) {
	cfg := Config{Dir: "data/catalog"}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.BindFlags(fs)
	if err := fs.Parse([]string{"-catalog-db", "x.db"}); err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if cfg.DB != "x.db" || cfg.Dir != "data/catalog" {
		t.Fatalf("cfg = %+v", cfg)
	}
}
