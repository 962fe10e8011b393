// Package source opens the catalog a command runs against, either from a
// directory of JSON payloads or from the SQLite catalog store.
package source

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/louisbranch/stagesim/internal/catalog"
	catalogsqlite "github.com/louisbranch/stagesim/internal/catalog/sqlite"
)

// Config selects a catalog. DB takes precedence over Dir.
type Config struct {
	Dir string `env:"STAGESIM_CATALOG_DIR" envDefault:"data/catalog"`
	DB  string `env:"STAGESIM_CATALOG_DB"`
}

// BindFlags registers -catalog-dir and -catalog-db on fs.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Dir, "catalog-dir", c.Dir, "catalog directory containing the JSON payloads")
	fs.StringVar(&c.DB, "catalog-db", c.DB, "catalog database path (overrides -catalog-dir)")
}

// Load reads the selected catalog.
func (c Config) Load(ctx context.Context) (*catalog.Catalog, error) {
	if db := strings.TrimSpace(c.DB); db != "" {
		store, err := catalogsqlite.Open(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("open catalog db: %w", err)
		}
		defer store.Close()
		return store.Load(ctx)
	}
	dir := strings.TrimSpace(c.Dir)
	if dir == "" {
		return nil, errors.New("catalog dir or db is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog dir %s is not a directory", dir)
	}
	return catalog.LoadDir(dir)
}
