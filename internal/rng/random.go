package rng

import (
	"math/rand"
	"sync"
	"time"
)

// randomSource implements Source using math/rand seeded at construction
type randomSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource creates a new time-seeded random source
func NewRandomSource() Source {
	return &randomSource{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSeededSource creates a random source with a fixed seed, for reproducible simulations
func NewSeededSource(seed int64) Source {
	return &randomSource{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

// Int64N implements Source.Int64N
func (r *randomSource) Int64N(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Int63n(n)
}
