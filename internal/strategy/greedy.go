package strategy

import (
	"context"
	"math/rand"
)

// Greedy plays the legal card whose immediate resolution gains the most
// score. Genki and stamina left over break ties between equal gains.
type Greedy struct {
	seed int64
}

// NewGreedy returns a greedy strategy. The seed drives the random draws of
// look-ahead runs so that evaluation is reproducible.
func NewGreedy(seed int64) *Greedy {
	return &Greedy{seed: seed}
}

// Evaluate scores every legal card and selects the best one.
func (g *Greedy) Evaluate(ctx context.Context, turn Turn) (Decision, error) {
	legal, err := LegalCards(turn.Engine, turn.State)
	if err != nil {
		return Decision{}, err
	}
	decision := Decision{Scores: make(map[int]float64, len(legal))}
	best := 0.0
	for _, id := range legal {
		if err := ctx.Err(); err != nil {
			return Decision{}, err
		}
		score, err := g.score(turn, id)
		if err != nil {
			return Decision{}, err
		}
		decision.Scores[id] = score
		if decision.CardID == 0 || score > best {
			decision.CardID = id
			best = score
		}
	}
	return decision, nil
}

func (g *Greedy) score(turn Turn, cardID int) (float64, error) {
	preview := turn.State.Clone()
	fork := turn.Engine.Fork(rand.New(rand.NewSource(g.seed + int64(cardID))))
	if err := fork.UseCard(preview, cardID); err != nil {
		return 0, err
	}
	gain := preview.Score - turn.State.Score
	reserve := (preview.Genki + preview.Stamina) - (turn.State.Genki + turn.State.Stamina)
	return gain + reserve/100, nil
}

// Ensure Greedy implements Strategy.
var _ Strategy = (*Greedy)(nil)
