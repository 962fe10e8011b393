package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/stagesim/internal/catalog"
	"github.com/louisbranch/stagesim/internal/core/effect"
	"github.com/louisbranch/stagesim/internal/core/expr"
	"github.com/louisbranch/stagesim/internal/engine"
	"github.com/louisbranch/stagesim/internal/loadout"
	apperrors "github.com/louisbranch/stagesim/internal/platform/errors"
	"github.com/louisbranch/stagesim/internal/strategy"
)

// Config configures scenario execution.
type Config struct {
	Catalog    catalog.Provider
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
}

// Runner executes scenarios against an in-process engine.
type Runner struct {
	catalog    catalog.Provider
	assertions Assertions
	verbose    bool
	logger     *log.Logger
}

// Result summarizes one scenario run.
type Result struct {
	Name     string
	Steps    int
	Score    float64
	Failures int
}

type scenarioState struct {
	stage   catalog.Stage
	staged  bool
	seed    int64
	config  loadout.Config
	engine  *engine.Engine
	state   *engine.State
	started bool
}

// NewRunner validates cfg and creates a runner.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Runner{
		catalog:    cfg.Catalog,
		assertions: Assertions{Mode: cfg.Assertions, Logger: logger},
		verbose:    cfg.Verbose,
		logger:     logger,
	}, nil
}

// RunFile loads a Lua scenario and runs it.
func RunFile(ctx context.Context, cfg Config, path string) (Result, error) {
	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return Result{}, err
	}
	runner, err := NewRunner(cfg)
	if err != nil {
		return Result{}, err
	}
	return runner.RunScenario(ctx, scenario)
}

// RunScenario executes every step of scenario in order.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) (Result, error) {
	if scenario == nil {
		return Result{}, errors.New("scenario is required")
	}
	start := time.Now()
	r.logf("scenario %s: %d step(s)", scenario.Name, len(scenario.Steps))
	state := &scenarioState{}
	for index, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		stepStart := time.Now()
		if err := r.runStep(ctx, state, step); err != nil {
			return Result{}, fmt.Errorf("step %d (%s): %w", index+1, step.Kind, err)
		}
		r.logf("step %d %s done in %s", index+1, step.Kind, time.Since(stepStart))
	}
	result := Result{Name: scenario.Name, Steps: len(scenario.Steps), Failures: r.assertions.Failures()}
	if state.state != nil {
		result.Score = state.state.Score
	}
	r.logf("scenario %s finished in %s", scenario.Name, time.Since(start))
	return result, nil
}

func (r *Runner) runStep(ctx context.Context, state *scenarioState, step Step) error {
	switch step.Kind {
	case StepStage:
		return r.runStage(state, step.Args)
	case StepSeed:
		return r.runSeed(state, step.Args)
	case StepLoadout:
		return r.runLoadout(state, step.Args)
	case StepStart:
		return r.runStart(state)
	case StepPlay:
		return r.runPlay(state, step.Args)
	case StepEndTurn:
		return r.runEndTurn(state, step.Args)
	case StepAuto:
		return r.runAuto(ctx, state, step.Args)
	case StepEffect:
		return r.runEffect(state, step.Args)
	case StepSet:
		return r.runSet(state, step.Args)
	case StepExpect:
		return r.runExpect(state, step.Args)
	case StepExpectExpr:
		return r.runExpectExpr(state, step.Args)
	case StepExpectHand:
		return r.runExpectHand(state, step.Args)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) runStage(state *scenarioState, args map[string]any) error {
	if state.started {
		return errors.New("stage cannot change after start")
	}
	id, err := requiredInt(args, "id")
	if err != nil {
		return err
	}
	stage, err := r.catalog.Stage(id)
	if err != nil {
		return err
	}
	state.stage = stage
	state.staged = true
	state.config.StageID = id
	return nil
}

func (r *Runner) runSeed(state *scenarioState, args map[string]any) error {
	if state.started {
		return errors.New("seed cannot change after start")
	}
	seed, err := requiredInt(args, "seed")
	if err != nil {
		return err
	}
	state.seed = int64(seed)
	return nil
}

func (r *Runner) runLoadout(state *scenarioState, args map[string]any) error {
	if state.started {
		return errors.New("loadout cannot change after start")
	}
	cfg := state.config
	cfg.Params.Stamina = readFloat(args, "stamina", cfg.Params.Stamina)
	cfg.Params.Vocal = readFloat(args, "vocal", cfg.Params.Vocal)
	cfg.Params.Dance = readFloat(args, "dance", cfg.Params.Dance)
	cfg.Params.Visual = readFloat(args, "visual", cfg.Params.Visual)
	cfg.SupportBonus = readFloat(args, "support_bonus", cfg.SupportBonus)
	cfg.FallbackPlan = readString(args, "plan", cfg.FallbackPlan)
	cfg.FallbackIdolID = readInt(args, "idol", cfg.FallbackIdolID)
	if items, ok := args["p_items"]; ok {
		ids, err := intList(items)
		if err != nil {
			return fmt.Errorf("p_items: %w", err)
		}
		cfg.PItemIDs = ids
	}
	if cards, ok := args["skill_cards"]; ok {
		ids, err := intList(cards)
		if err != nil {
			return fmt.Errorf("skill_cards: %w", err)
		}
		cfg.SkillCardIDs = [][]int{ids}
	}
	state.config = cfg
	return nil
}

func (r *Runner) runStart(state *scenarioState) error {
	if !state.staged {
		return errors.New("stage is required before start")
	}
	if state.started {
		return errors.New("scenario already started")
	}
	resolved, err := loadout.NewResolver(r.catalog).Resolve(state.config, state.stage)
	if err != nil {
		return err
	}
	eng, err := engine.New(engine.Config{
		Stage:   state.stage,
		Loadout: resolved,
		Catalog: r.catalog,
		Rand:    rand.New(rand.NewSource(state.seed)),
		Strict:  true,
	})
	if err != nil {
		return err
	}
	s, err := eng.InitialState()
	if err != nil {
		return err
	}
	if err := eng.StartStage(s); err != nil {
		return err
	}
	state.engine = eng
	state.state = s
	state.started = true
	r.logf("started stage %d as %s with hand %v", state.stage.ID, resolved.Plan, s.HandCardIDs)
	return nil
}

func (r *Runner) runPlay(state *scenarioState, args map[string]any) error {
	if err := requireStarted(state); err != nil {
		return err
	}
	id, err := requiredInt(args, "card")
	if err != nil {
		return err
	}
	return r.expectOutcome(args, state.engine.UseCard(state.state, id))
}

func (r *Runner) runEndTurn(state *scenarioState, args map[string]any) error {
	if err := requireStarted(state); err != nil {
		return err
	}
	return r.expectOutcome(args, state.engine.EndTurn(state.state))
}

// expectOutcome compares err with the expect_error option. Without the
// option any error fails the step.
func (r *Runner) expectOutcome(args map[string]any, err error) error {
	want := readString(args, "expect_error", "")
	if want == "" {
		return err
	}
	if err == nil {
		return r.assertions.Failf("expected error %s, got none", want)
	}
	if got := apperrors.CodeOf(err); string(got) != want {
		return r.assertions.Failf("error code = %s, want %s", got, want)
	}
	return nil
}

func (r *Runner) runAuto(ctx context.Context, state *scenarioState, args map[string]any) error {
	if err := requireStarted(state); err != nil {
		return err
	}
	strat, err := strategy.New(readString(args, "strategy", strategy.NameGreedy), state.seed)
	if err != nil {
		return err
	}
	for !engine.Complete(state.state) {
		if err := ctx.Err(); err != nil {
			return err
		}
		decision, err := strat.Evaluate(ctx, strategy.Turn{Engine: state.engine, State: state.state})
		if err != nil {
			return err
		}
		if decision.CardID != 0 {
			r.logf("auto: play %d", decision.CardID)
			err = state.engine.UseCard(state.state, decision.CardID)
		} else {
			r.logf("auto: end turn")
			err = state.engine.EndTurn(state.state)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runEffect(state *scenarioState, args map[string]any) error {
	if err := requireStarted(state); err != nil {
		return err
	}
	effects, err := effect.DeserializeSequence(readString(args, "effects", ""))
	if err != nil {
		return err
	}
	state.state.Effects.Install(effect.Source{Type: effect.SourceStage, ID: "scenario"}, effects)
	return nil
}

func (r *Runner) runSet(state *scenarioState, args map[string]any) error {
	if err := requireStarted(state); err != nil {
		return err
	}
	for _, name := range sortedKeys(args) {
		value, ok := toFloat(args[name])
		if !ok {
			return fmt.Errorf("field %s must be a number", name)
		}
		if !state.state.SetField(name, value) {
			return fmt.Errorf("unknown field %q", name)
		}
	}
	return nil
}

func (r *Runner) runExpect(state *scenarioState, args map[string]any) error {
	if err := requireStarted(state); err != nil {
		return err
	}
	for _, name := range sortedKeys(args) {
		want, ok := toFloat(args[name])
		if !ok {
			return fmt.Errorf("field %s must be a number", name)
		}
		got, ok := state.state.Field(name)
		if !ok {
			return fmt.Errorf("unknown field %q", name)
		}
		if !approxEqual(got, want) {
			if err := r.assertions.Failf("%s = %v, want %v", name, got, want); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) runExpectExpr(state *scenarioState, args map[string]any) error {
	if err := requireStarted(state); err != nil {
		return err
	}
	source := readString(args, "expr", "")
	value, err := engine.Eval(state.state, source)
	if err != nil {
		return err
	}
	if value.Kind != expr.KindBool {
		return fmt.Errorf("expression %q is not a condition", source)
	}
	if !value.Bool {
		return r.assertions.Failf("expression %q is false", source)
	}
	return nil
}

func (r *Runner) runExpectHand(state *scenarioState, args map[string]any) error {
	if err := requireStarted(state); err != nil {
		return err
	}
	want, err := intList(args["cards"])
	if err != nil {
		return fmt.Errorf("cards: %w", err)
	}
	got := slices.Clone(state.state.HandCardIDs)
	sort.Ints(got)
	sort.Ints(want)
	if !slices.Equal(got, want) {
		return r.assertions.Failf("hand = %v, want %v", got, want)
	}
	return nil
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose {
		return
	}
	r.logger.Printf(format, args...)
}

func requireStarted(state *scenarioState) error {
	if !state.started {
		return errors.New("scenario has not started")
	}
	return nil
}

func requiredInt(args map[string]any, key string) (int, error) {
	value, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, ok := value.(int)
	if !ok {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

func readInt(args map[string]any, key string, fallback int) int {
	if n, ok := args[key].(int); ok {
		return n
	}
	return fallback
}

func readFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := toFloat(args[key]); ok {
		return v
	}
	return fallback
}

func readString(args map[string]any, key, fallback string) string {
	if s, ok := args[key].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func intList(value any) ([]int, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, errors.New("expected a list")
	}
	ids := make([]int, 0, len(items))
	for _, item := range items {
		id, ok := item.(int)
		if !ok {
			return nil, fmt.Errorf("expected integer ids, got %v", item)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func sortedKeys(args map[string]any) []string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func approxEqual(a, b float64) bool {
	diff := a - b
	return diff < 1e-9 && diff > -1e-9
}
