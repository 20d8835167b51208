package rng

import (
	"fmt"
	"sync"
)

// ManualSource implements Source for testing with predetermined draws.
// Draws are consumed in order; running out is a test setup error.
type ManualSource struct {
	mu    sync.Mutex
	draws []int64
	index int
}

// NewManualSource creates a new manual source
func NewManualSource() *ManualSource {
	return &ManualSource{
		draws: []int64{},
	}
}

// SetNextDraw appends a single predetermined draw
func (m *ManualSource) SetNextDraw(draw int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draws = append(m.draws, draw)
}

// SetDraws replaces the predetermined draws and resets the index
func (m *ManualSource) SetDraws(draws []int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draws = draws
	m.index = 0
}

// Reset clears all draws and resets the index
func (m *ManualSource) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draws = []int64{}
	m.index = 0
}

// Int64N implements Source.Int64N. The predetermined draw is reduced
// modulo n so scripted values stay in range regardless of the scale asked for.
func (m *ManualSource) Int64N(n int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.index >= len(m.draws) {
		panic(fmt.Sprintf("no more predetermined draws available (used %d of %d)", m.index, len(m.draws)))
	}

	draw := m.draws[m.index]
	m.index++
	if draw >= n {
		draw = draw % n
	}
	return draw
}
