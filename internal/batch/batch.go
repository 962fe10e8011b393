// Package batch runs many independent simulations of one loadout in
// parallel and aggregates their scores. Run i is seeded with seed+i, so a
// batch is reproducible regardless of how its runs are scheduled.
package batch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/louisbranch/stagesim/internal/catalog"
	"github.com/louisbranch/stagesim/internal/engine"
	"github.com/louisbranch/stagesim/internal/loadout"
	"github.com/louisbranch/stagesim/internal/player"
	"github.com/louisbranch/stagesim/internal/random"
	"github.com/louisbranch/stagesim/internal/strategy"
	"github.com/louisbranch/stagesim/internal/telemetry"
)

const tracerName = "github.com/louisbranch/stagesim/internal/batch"

// Runner holds what every run of a batch shares.
type Runner struct {
	Stage    catalog.Stage
	Loadout  loadout.Loadout
	Catalog  catalog.Provider
	Strategy string
	// Workers bounds concurrent runs. Zero means GOMAXPROCS.
	Workers int
	// KeepLogs keeps telemetry of every run in the report.
	KeepLogs bool
	// OnRun, when set, is called after each run completes. Calls are
	// serialized but arrive in completion order.
	OnRun func(RunResult)
}

// RunResult is the outcome of one run.
type RunResult struct {
	Index  int            `json:"index"`
	Seed   int64          `json:"seed"`
	Score  float64        `json:"score"`
	Result *player.Result `json:"result,omitempty"`
}

// Stats summarizes the scores of a batch.
type Stats struct {
	Runs   int     `json:"runs"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stdDev"`
}

// Report is the outcome of a batch.
type Report struct {
	ID    string      `json:"id"`
	Seed  int64       `json:"seed"`
	Runs  []RunResult `json:"runs"`
	Stats Stats       `json:"stats"`
}

// Run plays runs simulations seeded from seed. The first failing run
// cancels the others.
func (r *Runner) Run(ctx context.Context, runs int, seed int64) (Report, error) {
	if runs < 1 {
		return Report{}, errors.New("runs must be positive")
	}
	if r.Catalog == nil {
		return Report{}, errors.New("catalog is required")
	}
	if _, err := strategy.New(r.Strategy, seed); err != nil {
		return Report{}, err
	}

	report := Report{ID: uuid.NewString(), Seed: seed, Runs: make([]RunResult, runs)}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "batch.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("stagesim.batch_id", report.ID),
		attribute.Int("stagesim.runs", runs),
		attribute.Int64("stagesim.seed", seed),
	)

	workers := r.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	for i := range runs {
		g.Go(func() error {
			res, err := r.runOne(ctx, i, random.RunSeed(seed, i))
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			report.Runs[i] = res
			if r.OnRun != nil {
				mu.Lock()
				r.OnRun(res)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return Report{}, err
	}

	scores := make([]float64, runs)
	for i, res := range report.Runs {
		scores[i] = res.Score
	}
	report.Stats = Summarize(scores)
	span.SetAttributes(attribute.Float64("stagesim.mean_score", report.Stats.Mean))
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, index int, seed int64) (RunResult, error) {
	if err := ctx.Err(); err != nil {
		return RunResult{}, err
	}
	var logger *telemetry.Logger
	if r.KeepLogs {
		logger = telemetry.NewLogger(nil)
	}
	eng, err := engine.New(engine.Config{
		Stage:   r.Stage,
		Loadout: r.Loadout,
		Catalog: r.Catalog,
		Rand:    random.New(seed),
		Logger:  logger,
		Strict:  true,
	})
	if err != nil {
		return RunResult{}, err
	}
	s, err := strategy.New(r.Strategy, seed)
	if err != nil {
		return RunResult{}, err
	}
	res, err := player.New(eng, s).Play(ctx)
	if err != nil {
		return RunResult{}, err
	}
	out := RunResult{Index: index, Seed: seed, Score: res.Score}
	if r.KeepLogs {
		res.State = nil
		out.Result = &res
	}
	return out, nil
}

// Summarize computes score statistics. The standard deviation is the
// population deviation.
func Summarize(scores []float64) Stats {
	if len(scores) == 0 {
		return Stats{}
	}
	sorted := slices.Clone(scores)
	slices.Sort(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	variance := 0.0
	for _, v := range sorted {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(sorted))

	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return Stats{
		Runs:   n,
		Min:    sorted[0],
		Max:    sorted[n-1],
		Mean:   mean,
		Median: median,
		StdDev: math.Sqrt(variance),
	}
}
