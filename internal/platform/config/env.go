// Package config holds the environment and flag plumbing shared by the
// command entry points.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment variable the commands read.
const EnvPrefix = "STAGESIM_"

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Parse loads target from the environment, then lets bind register flags
// whose defaults are the environment values before parsing args. Flags win
// over the environment.
func Parse(target any, fs *flag.FlagSet, args []string, bind func(*flag.FlagSet)) error {
	if err := ParseEnv(target); err != nil {
		return err
	}
	if bind != nil {
		bind(fs)
	}
	return fs.Parse(args)
}
