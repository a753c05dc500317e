package engine

import (
	"math/rand"
	"sync"
	"time"
)

// Random is the source of every random decision the engine makes.
type Random interface {
	// Intn returns a uniform value in [0, n).
	Intn(n int) int
}

type lockedRandom struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandom returns a Random seeded with seed, or with the current time
// when seed is zero. It is safe for use by several games at once.
func NewRandom(seed int64) Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRandom{rnd: rand.New(rand.NewSource(seed))}
}

func (r *lockedRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}
