// Package play implements the interactive play command.
package play

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/louisbranch/stagesim/internal/catalog/source"
	"github.com/louisbranch/stagesim/internal/engine"
	"github.com/louisbranch/stagesim/internal/loadout"
	"github.com/louisbranch/stagesim/internal/platform/config"
	"github.com/louisbranch/stagesim/internal/random"
	"github.com/louisbranch/stagesim/internal/tui"
)

// Config holds play command configuration.
type Config struct {
	Catalog source.Config
	Loadout string `env:"STAGESIM_LOADOUT"`
	Stage   int    `env:"STAGESIM_STAGE"`
	Seed    int64  `env:"STAGESIM_SEED"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	err := config.Parse(&cfg, fs, args, func(fs *flag.FlagSet) {
		cfg.Catalog.BindFlags(fs)
		fs.StringVar(&cfg.Loadout, "loadout", cfg.Loadout, "path to loadout yaml file")
		fs.IntVar(&cfg.Stage, "stage", cfg.Stage, "stage id (overrides the loadout's stage)")
		fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed (0 picks a random seed)")
	})
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewEngine builds the strict engine an interactive stage runs on.
func NewEngine(ctx context.Context, cfg Config) (*engine.Engine, int64, error) {
	if strings.TrimSpace(cfg.Loadout) == "" {
		return nil, 0, errors.New("loadout path is required")
	}
	cat, err := cfg.Catalog.Load(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load catalog: %w", err)
	}
	lc, err := loadout.LoadFile(cfg.Loadout)
	if err != nil {
		return nil, 0, err
	}
	if cfg.Stage != 0 {
		lc.StageID = cfg.Stage
	}
	stage, err := cat.Stage(lc.StageID)
	if err != nil {
		return nil, 0, err
	}
	resolved, err := loadout.NewResolver(cat).Resolve(lc, stage)
	if err != nil {
		return nil, 0, err
	}
	seed, err := random.SeedOr(cfg.Seed)
	if err != nil {
		return nil, 0, err
	}
	eng, err := engine.New(engine.Config{
		Stage:   stage,
		Loadout: resolved,
		Catalog: cat,
		Rand:    random.New(seed),
		Strict:  true,
	})
	if err != nil {
		return nil, 0, err
	}
	return eng, seed, nil
}

// Run plays one stage in the terminal and prints the final score.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	eng, seed, err := NewEngine(ctx, cfg)
	if err != nil {
		return err
	}
	model, err := tui.New(eng)
	if err != nil {
		return err
	}
	final, err := tui.Run(ctx, model)
	if err != nil {
		return err
	}
	status := "abandoned"
	if engine.Complete(final) {
		status = "complete"
	}
	fmt.Fprintf(out, "Stage %d %s with score %g (seed %d)\n", eng.Stage().ID, status, final.Score, seed)
	return nil
}
