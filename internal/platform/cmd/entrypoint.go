// Package cmd holds the startup plumbing shared by the command entry points.
package cmd

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	otelapi "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/louisbranch/stagesim/internal/platform/otel"
)

const (
	defaultShutdownTimeout = 5 * time.Second
	tracerName             = "github.com/louisbranch/stagesim/internal/platform/cmd"
)

// Service names, used as the OTel service name and the root span prefix.
const (
	ServiceCatalogImporter = "catalog-importer"
	ServicePlay            = "play"
	ServiceScenario        = "scenario"
	ServiceServer          = "server"
	ServiceSimulate        = "simulate"
)

// RunOptions controls shared entrypoint behavior for commands.
type RunOptions struct {
	// ShutdownTimeout bounds the tracer flush on exit.
	ShutdownTimeout time.Duration
	// Logger receives shutdown errors. Nil uses the standard logger.
	Logger *log.Logger
}

// RunWithTelemetry is RunWithTelemetryAndOptions with default options.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	return RunWithTelemetryAndOptions(ctx, service, RunOptions{}, run)
}

// RunWithTelemetryAndOptions configures tracing, runs the command inside a
// root span named "<service>.run", then flushes the tracer.
func RunWithTelemetryAndOptions(ctx context.Context, service string, options RunOptions, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	switch {
	case service == "":
		return errors.New("service name is required")
	case run == nil:
		return errors.New("run function is required")
	}
	logger := options.Logger
	if logger == nil {
		logger = log.Default()
	}
	timeout := options.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Printf("%s otel shutdown: %v", service, err)
		}
	}()

	ctx, span := otelapi.Tracer(tracerName).Start(ctx, service+".run")
	defer span.End()
	span.SetAttributes(attribute.String("stagesim.service", service))
	if err := run(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
