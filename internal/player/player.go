// Package player drives a stage from start to finish with a strategy.
package player

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/stagesim/internal/engine"
	"github.com/louisbranch/stagesim/internal/strategy"
	"github.com/louisbranch/stagesim/internal/telemetry"
)

const tracerName = "github.com/louisbranch/stagesim/internal/player"

// Result is the outcome of one played stage.
type Result struct {
	Score float64              `json:"score"`
	Logs  []telemetry.Entry    `json:"logs"`
	Graph map[string][]float64 `json:"graphData"`
	State *engine.State        `json:"-"`
}

// Player pairs an engine with the strategy that makes its decisions.
type Player struct {
	Engine   *engine.Engine
	Strategy strategy.Strategy
	// OnDecision, when set, is called after every decision is applied.
	OnDecision func(turn strategy.Turn, decision strategy.Decision)
}

// New creates a player.
func New(eng *engine.Engine, s strategy.Strategy) *Player {
	return &Player{Engine: eng, Strategy: s}
}

// Play runs a fresh stage until no turns remain. Telemetry is paused while
// the strategy evaluates so that look-ahead leaves no trace in the log.
func (p *Player) Play(ctx context.Context) (Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "player.Play")
	defer span.End()

	s, err := p.Engine.InitialState()
	if err != nil {
		return Result{}, fail(span, fmt.Errorf("initial state: %w", err))
	}
	if err := p.Engine.StartStage(s); err != nil {
		return Result{}, fail(span, fmt.Errorf("start stage: %w", err))
	}

	logger := p.Engine.Logger()
	decisions := 0
	for !engine.Complete(s) {
		if err := ctx.Err(); err != nil {
			return Result{}, fail(span, err)
		}

		turn := strategy.Turn{Engine: p.Engine, State: s}
		recording := logger.Enabled()
		logger.Disable()
		decision, err := p.Strategy.Evaluate(ctx, turn)
		if recording {
			logger.Enable()
		}
		if err != nil {
			return Result{}, fail(span, fmt.Errorf("evaluate turn %d: %w", int(s.TurnsElapsed)+1, err))
		}

		logger.Log(telemetry.EntryHand, handEntry(s, decision))

		if decision.CardID != 0 {
			err = p.Engine.UseCard(s, decision.CardID)
		} else {
			err = p.Engine.EndTurn(s)
		}
		if err != nil {
			return Result{}, fail(span, err)
		}
		decisions++
		if p.OnDecision != nil {
			p.OnDecision(turn, decision)
		}
	}

	span.SetAttributes(
		attribute.Float64("stagesim.score", s.Score),
		attribute.Int("stagesim.decisions", decisions),
	)
	return Result{
		Score: s.Score,
		Logs:  logger.Entries(),
		Graph: logger.Graph(),
		State: s,
	}, nil
}

// handEntry snapshots the decision point: the hand with each card's score
// and the non-zero logged fields of the state.
func handEntry(s *engine.State, d strategy.Decision) telemetry.Hand {
	scores := make([]float64, len(s.HandCardIDs))
	for i, id := range s.HandCardIDs {
		scores[i] = d.Scores[id]
	}

	fields := make(map[string]float64)
	for _, name := range engine.LoggedFields {
		if name == engine.FieldTurnsRemaining || name == engine.FieldCardUsesRemaining {
			continue
		}
		if v, _ := s.Field(name); v != 0 {
			fields[name] = v
		}
	}

	var buffs []telemetry.ScoreBuff
	for _, b := range s.ScoreBuffs {
		buffs = append(buffs, telemetry.ScoreBuff{Amount: b.Amount, Turns: b.Turns})
	}

	return telemetry.Hand{
		HandCardIDs:    append([]int(nil), s.HandCardIDs...),
		Scores:         scores,
		SelectedCardID: d.CardID,
		State:          fields,
		ScoreBuffs:     buffs,
	}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	return err
}
