package chess

import (
	"math/rand"
	"sync"
	"time"
)

// RandomMover chooses uniformly among legal moves. Safe for concurrent use.
type RandomMover struct {
	mu   sync.Mutex
	rand *rand.Rand
}

func NewRandomMover() *RandomMover {
	return NewSeededRandomMover(time.Now().UnixNano())
}

func NewSeededRandomMover(seed int64) *RandomMover {
	return &RandomMover{rand: rand.New(rand.NewSource(seed))}
}

// Choose returns a random legal move, or false when the side to move has none.
func (r *RandomMover) Choose(state BoardState) (Move, bool) {
	moves := LegalMoves(state)
	if len(moves) == 0 {
		return Move{}, false
	}
	return moves[r.Intn(len(moves))], true
}

func (r *RandomMover) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a value in [0, 1).
func (r *RandomMover) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}
