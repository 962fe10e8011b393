package engine

import (
	"errors"
	"math/rand"

	"github.com/louisbranch/stagesim/internal/catalog"
	"github.com/louisbranch/stagesim/internal/loadout"
	"github.com/louisbranch/stagesim/internal/telemetry"
)

// Config configures an Engine.
type Config struct {
	Stage   catalog.Stage
	Loadout loadout.Loadout
	Catalog catalog.Provider
	// Rand is the run's random source. It must not be shared with another run.
	Rand *rand.Rand
	// Logger receives telemetry. Nil disables it.
	Logger *telemetry.Logger
	Strict bool
}

// Engine executes one stage attempt.
type Engine struct {
	stage   catalog.Stage
	loadout loadout.Loadout
	catalog catalog.Provider
	rng     *rand.Rand
	logger  *telemetry.Logger
	strict  bool
}

// New validates cfg and creates an engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if cfg.Rand == nil {
		return nil, errors.New("random source is required")
	}
	if cfg.Stage.TurnCount() < 3 {
		return nil, errors.New("stage needs at least 3 turns")
	}
	return &Engine{
		stage:   cfg.Stage,
		loadout: cfg.Loadout,
		catalog: cfg.Catalog,
		rng:     cfg.Rand,
		logger:  cfg.Logger,
		strict:  cfg.Strict,
	}, nil
}

// Fork returns an engine sharing this engine's configuration but drawing
// from rng and recording nothing.
func (e *Engine) Fork(rng *rand.Rand) *Engine {
	fork := *e
	fork.rng = rng
	fork.logger = nil
	return &fork
}

// Stage returns the stage being played.
func (e *Engine) Stage() catalog.Stage {
	return e.stage
}

// Loadout returns the resolved loadout.
func (e *Engine) Loadout() loadout.Loadout {
	return e.loadout
}

// Catalog returns the data provider.
func (e *Engine) Catalog() catalog.Provider {
	return e.catalog
}

// Logger returns the telemetry logger, which may be nil.
func (e *Engine) Logger() *telemetry.Logger {
	return e.logger
}

// TypeMultiplier returns the score multiplier for turns of type t. Before
// the first turn has a type the multiplier is 1.
func (e *Engine) TypeMultiplier(t catalog.TurnType) float64 {
	if t == "" {
		return 1
	}
	return e.loadout.TypeMultipliers.Get(t)
}

func (e *Engine) pushGraph(s *State) {
	e.logger.PushGraph(s.Fields(GraphedFields))
}
