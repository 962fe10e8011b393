// Package scenario implements the scenario command.
package scenario

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/louisbranch/stagesim/internal/catalog/source"
	"github.com/louisbranch/stagesim/internal/platform/config"
	"github.com/louisbranch/stagesim/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	Catalog    source.Config
	Scenario   string `env:"STAGESIM_SCENARIO_FILE"`
	Assertions bool   `env:"STAGESIM_SCENARIO_ASSERT"  envDefault:"true"`
	Verbose    bool   `env:"STAGESIM_SCENARIO_VERBOSE"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	err := config.Parse(&cfg, fs, args, func(fs *flag.FlagSet) {
		cfg.Catalog.BindFlags(fs)
		fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario lua file")
		fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "enable assertions (disable to log expectations)")
		fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	})
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the scenario command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Scenario == "" {
		return errors.New("scenario path is required")
	}

	cat, err := cfg.Catalog.Load(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}

	logger := log.New(errOut, "", 0)
	result, err := scenario.RunFile(ctx, scenario.Config{
		Catalog:    cat,
		Assertions: mode,
		Verbose:    cfg.Verbose,
		Logger:     logger,
	}, cfg.Scenario)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %d step(s), score %g, %d failed expectation(s)\n", result.Name, result.Steps, result.Score, result.Failures)
	return nil
}
