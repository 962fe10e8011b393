package strategy

import (
	"context"
	"math/rand"
	"sync"
)

// Random plays a uniformly chosen legal card.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a random strategy seeded with seed.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

// Evaluate selects a legal card at random, or ends the turn when none is.
func (r *Random) Evaluate(_ context.Context, turn Turn) (Decision, error) {
	legal, err := LegalCards(turn.Engine, turn.State)
	if err != nil {
		return Decision{}, err
	}
	decision := Decision{Scores: make(map[int]float64, len(legal))}
	if len(legal) == 0 {
		return decision, nil
	}
	r.mu.Lock()
	pick := legal[r.rng.Intn(len(legal))]
	r.mu.Unlock()
	for _, id := range legal {
		decision.Scores[id] = 0
	}
	decision.Scores[pick] = 1
	decision.CardID = pick
	return decision, nil
}

// First plays the first legal card in hand order.
type First struct{}

// Evaluate selects the first legal card.
func (First) Evaluate(_ context.Context, turn Turn) (Decision, error) {
	legal, err := LegalCards(turn.Engine, turn.State)
	if err != nil {
		return Decision{}, err
	}
	decision := Decision{Scores: make(map[int]float64, len(legal))}
	for i, id := range legal {
		decision.Scores[id] = float64(len(legal) - i)
	}
	if len(legal) > 0 {
		decision.CardID = legal[0]
	}
	return decision, nil
}

var (
	_ Strategy = (*Random)(nil)
	_ Strategy = First{}
)
