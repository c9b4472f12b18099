package game

import (
	"math/rand"
	"sync"
	"time"
)

// Generator draws spin outcomes from an injectable random source.
// Draw takes no caller input, so a request can never influence its own
// result.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator builds a generator over src. A nil src gets a
// time-seeded source; the outcome is a game, not a security primitive.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Generator{rng: rand.New(src)}
}

func (g *Generator) Draw() Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out Outcome
	for i := range out {
		out[i] = Symbols[g.rng.Intn(len(Symbols))]
	}
	return out
}
