// Package simulate implements the simulate command: one traced run with its
// full log, or a parallel batch summarized by score statistics.
package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"

	"golang.org/x/text/message"

	"github.com/louisbranch/stagesim/internal/batch"
	"github.com/louisbranch/stagesim/internal/catalog"
	"github.com/louisbranch/stagesim/internal/catalog/source"
	"github.com/louisbranch/stagesim/internal/engine"
	"github.com/louisbranch/stagesim/internal/loadout"
	entrypoint "github.com/louisbranch/stagesim/internal/platform/cmd"
	"github.com/louisbranch/stagesim/internal/platform/config"
	msgcatalog "github.com/louisbranch/stagesim/internal/platform/i18n/catalog"
	"github.com/louisbranch/stagesim/internal/player"
	"github.com/louisbranch/stagesim/internal/random"
	"github.com/louisbranch/stagesim/internal/strategy"
	"github.com/louisbranch/stagesim/internal/telemetry"
)

// Config holds simulate command configuration.
type Config struct {
	Catalog  source.Config
	Loadout  string `env:"STAGESIM_LOADOUT"`
	Stage    int    `env:"STAGESIM_STAGE"`
	Runs     int    `env:"STAGESIM_RUNS"     envDefault:"1"`
	Seed     int64  `env:"STAGESIM_SEED"`
	Strategy string `env:"STAGESIM_STRATEGY" envDefault:"greedy"`
	Workers  int    `env:"STAGESIM_WORKERS"`
	JSON     bool   `env:"STAGESIM_JSON"`
	Debug    bool   `env:"STAGESIM_DEBUG"`
	Lang     string `env:"STAGESIM_LANG"     envDefault:"en"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	err := config.Parse(&cfg, fs, args, func(fs *flag.FlagSet) {
		cfg.Catalog.BindFlags(fs)
		fs.StringVar(&cfg.Loadout, "loadout", cfg.Loadout, "path to loadout yaml file")
		fs.IntVar(&cfg.Stage, "stage", cfg.Stage, "stage id (overrides the loadout's stage)")
		fs.IntVar(&cfg.Runs, "runs", cfg.Runs, "number of simulations")
		fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "base seed (0 picks a random seed)")
		fs.StringVar(&cfg.Strategy, "strategy", cfg.Strategy, "strategy: "+strings.Join(strategy.Names(), ", "))
		fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent runs (0 uses GOMAXPROCS)")
		fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "print JSON instead of a summary")
		fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "log engine debug output to stderr")
		fs.StringVar(&cfg.Lang, "lang", cfg.Lang, "output language (en, ja)")
	})
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SingleResult is the JSON output of a single run.
type SingleResult struct {
	Seed    int64           `json:"seed"`
	Loadout loadout.Loadout `json:"loadout"`
	player.Result
}

// Run executes the simulate command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if strings.TrimSpace(cfg.Loadout) == "" {
		return errors.New("loadout path is required")
	}
	if cfg.Runs < 1 {
		return errors.New("runs must be positive")
	}

	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceSimulate, entrypoint.RunOptions{
		Logger: log.New(errOut, "", 0),
	}, func(ctx context.Context) error {
		cat, err := cfg.Catalog.Load(ctx)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		lc, err := loadout.LoadFile(cfg.Loadout)
		if err != nil {
			return err
		}
		if cfg.Stage != 0 {
			lc.StageID = cfg.Stage
		}
		stage, err := cat.Stage(lc.StageID)
		if err != nil {
			return err
		}
		resolved, err := loadout.NewResolver(cat).Resolve(lc, stage)
		if err != nil {
			return err
		}
		seed, err := random.SeedOr(cfg.Seed)
		if err != nil {
			return err
		}

		printer := msgcatalog.Default().Printer(cfg.Lang)
		if cfg.Runs == 1 {
			return runSingle(ctx, cfg, cat, stage, resolved, seed, out, errOut, printer)
		}
		return runBatch(ctx, cfg, cat, stage, resolved, seed, out, printer)
	})
}

func runSingle(ctx context.Context, cfg Config, cat catalog.Provider, stage catalog.Stage, l loadout.Loadout, seed int64, out, errOut io.Writer, p *message.Printer) error {
	var debug *log.Logger
	if cfg.Debug {
		debug = log.New(errOut, "", 0)
	}
	eng, err := engine.New(engine.Config{
		Stage:   stage,
		Loadout: l,
		Catalog: cat,
		Rand:    random.New(seed),
		Logger:  telemetry.NewLogger(debug),
		Strict:  true,
	})
	if err != nil {
		return err
	}
	strat, err := strategy.New(cfg.Strategy, seed)
	if err != nil {
		return err
	}
	res, err := player.New(eng, strat).Play(ctx)
	if err != nil {
		return err
	}

	if cfg.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(SingleResult{Seed: seed, Loadout: l, Result: res})
	}
	p.Fprintf(out, "simulate.single.header", stage.ID, l.Plan, seed)
	p.Fprintf(out, "simulate.single.multipliers",
		l.TypeMultipliers.Vocal, l.TypeMultipliers.Dance, l.TypeMultipliers.Visual)
	p.Fprintf(out, "simulate.single.turns", turnList(res.State.TurnTypes))
	p.Fprintf(out, "simulate.single.score", res.Score)
	return nil
}

func runBatch(ctx context.Context, cfg Config, cat catalog.Provider, stage catalog.Stage, l loadout.Loadout, seed int64, out io.Writer, p *message.Printer) error {
	runner := &batch.Runner{
		Stage:    stage,
		Loadout:  l,
		Catalog:  cat,
		Strategy: cfg.Strategy,
		Workers:  cfg.Workers,
	}
	report, err := runner.Run(ctx, cfg.Runs, seed)
	if err != nil {
		return err
	}

	if cfg.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	st := report.Stats
	p.Fprintf(out, "simulate.batch.header", stage.ID, l.Plan, st.Runs, seed)
	p.Fprintf(out, "simulate.batch.mean", st.Mean)
	p.Fprintf(out, "simulate.batch.median", st.Median)
	p.Fprintf(out, "simulate.batch.min", st.Min)
	p.Fprintf(out, "simulate.batch.max", st.Max)
	p.Fprintf(out, "simulate.batch.stddev", st.StdDev)
	return nil
}

func turnList(types []catalog.TurnType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
