// Package catalogimporter validates a catalog directory and imports it into
// the SQLite catalog store.
package catalogimporter

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/stagesim/internal/catalog"
	catalogsqlite "github.com/louisbranch/stagesim/internal/catalog/sqlite"
)

// Config holds configuration for the catalog importer.
type Config struct {
	Dir    string
	DBPath string
	Source string
	DryRun bool
}

// ParseConfig parses CLI flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{DBPath: filepath.Join("data", "catalog.db")}

	fs.StringVar(&cfg.Dir, "dir", "", "catalog directory containing the JSON payloads")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "catalog database path")
	fs.StringVar(&cfg.Source, "source", "", "import source label (defaults to the directory name)")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "validate without writing to the database")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.Dir) == "" {
		return Config{}, errors.New("dir is required")
	}
	return cfg, nil
}

// Run executes the importer using the provided Config.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return errors.New("dir is required")
	}
	source := strings.TrimSpace(cfg.Source)
	if source == "" {
		source = filepath.Base(filepath.Clean(dir))
	}

	records, err := catalog.ReadRecords(os.DirFS(dir))
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}
	if _, err := catalog.New(records); err != nil {
		return fmt.Errorf("validate %s: %w", dir, err)
	}
	if err := CheckReferences(records); err != nil {
		return fmt.Errorf("validate %s: %w", dir, err)
	}

	summary := fmt.Sprintf("%d skill card(s), %d stage(s), %d p-item(s), %d p-idol(s)",
		len(records.Cards), len(records.Stages), len(records.PItems), len(records.PIdols))
	if cfg.DryRun {
		_, err = fmt.Fprintf(out, "validated %s\n", summary)
		return err
	}

	store, err := catalogsqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open catalog store: %w", err)
	}
	defer store.Close()

	prev, ok, err := store.LatestImport(ctx)
	if err != nil {
		return fmt.Errorf("read previous import: %w", err)
	}
	if ok {
		fmt.Fprintf(out, "previous import %q at %s\n", prev.Source, prev.ImportedAt.Format(time.RFC3339))
	}
	if err := store.Put(ctx, source, records); err != nil {
		return fmt.Errorf("import %s: %w", dir, err)
	}
	_, err = fmt.Fprintf(out, "imported %s into %s\n", summary, cfg.DBPath)
	return err
}

// CheckReferences verifies ids that records point at: p-idols of signature
// cards and items, and the base card of every upgraded card.
func CheckReferences(records catalog.Records) error {
	idols := make(map[int]bool, len(records.PIdols))
	for _, idol := range records.PIdols {
		idols[idol.ID] = true
	}
	cards := make(map[int]bool, len(records.Cards))
	for _, c := range records.Cards {
		cards[c.ID] = true
	}

	var errs []error
	for _, c := range records.Cards {
		if c.SourceType == catalog.SourceTypePIdol && !idols[c.PIdolID] {
			errs = append(errs, fmt.Errorf("skill card %d: unknown p-idol %d", c.ID, c.PIdolID))
		}
		if c.Upgraded && !cards[c.ID-1] {
			errs = append(errs, fmt.Errorf("skill card %d: missing base card %d", c.ID, c.ID-1))
		}
	}
	for _, it := range records.PItems {
		if it.SourceType == catalog.SourceTypePIdol && !idols[it.PIdolID] {
			errs = append(errs, fmt.Errorf("p-item %d: unknown p-idol %d", it.ID, it.PIdolID))
		}
	}
	for _, st := range records.Stages {
		stage, err := st.Stage()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if stage.TurnCount() < 3 {
			errs = append(errs, fmt.Errorf("stage %d: %d turn(s), need at least 3", st.ID, stage.TurnCount()))
		}
	}
	return errors.Join(errs...)
}
