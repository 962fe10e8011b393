// Package server implements the API server command.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/louisbranch/stagesim/internal/api"
	"github.com/louisbranch/stagesim/internal/catalog/source"
	entrypoint "github.com/louisbranch/stagesim/internal/platform/cmd"
	"github.com/louisbranch/stagesim/internal/platform/config"
)

const shutdownTimeout = 10 * time.Second

// Config holds server command configuration.
type Config struct {
	Catalog source.Config
	Addr    string `env:"STAGESIM_ADDR"     envDefault:"localhost:8080"`
	Workers int    `env:"STAGESIM_WORKERS"`
	MaxRuns int    `env:"STAGESIM_MAX_RUNS" envDefault:"1000"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	err := config.Parse(&cfg, fs, args, func(fs *flag.FlagSet) {
		cfg.Catalog.BindFlags(fs)
		fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
		fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent runs per simulation (0 uses GOMAXPROCS)")
		fs.IntVar(&cfg.MaxRuns, "max-runs", cfg.MaxRuns, "maximum runs per simulation request")
	})
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run serves the API until ctx is done.
func Run(ctx context.Context, cfg Config, errOut io.Writer) error {
	if errOut == nil {
		errOut = io.Discard
	}
	logger := log.New(errOut, "", log.LstdFlags)
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceServer, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		cat, err := cfg.Catalog.Load(ctx)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		srv, err := api.New(api.Config{
			Catalog: cat,
			Workers: cfg.Workers,
			MaxRuns: cfg.MaxRuns,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		lis, err := net.Listen("tcp", cfg.Addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
		}
		return serve(ctx, lis, srv.Handler(), logger)
	})
}

func serve(ctx context.Context, lis net.Listener, handler http.Handler, logger *log.Logger) error {
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Printf("server listening on %s", lis.Addr())
		errCh <- httpServer.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Printf("server stopped")
		return nil
	}
}
