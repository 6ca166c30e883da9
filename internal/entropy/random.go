// Package entropy provides the simulation's randomness as an injectable,
// seedable source so scenario tests can replay runs deterministically.
package entropy

import (
	"math/rand"
	"sync"
)

// Source is a concurrency-safe random source shared by every stochastic
// subsystem (weather, outages, migration, incidents).
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource creates a Source from a seed. The same seed yields the same
// sequence of draws for the same sequence of calls.
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Float64 returns a random float64 in [0, 1).
func (s *Source) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// IntN returns a random int in [0, n). n must be > 0.
func (s *Source) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Range returns a random float64 in [min, max).
func (s *Source) Range(min, max float64) float64 {
	return min + s.Float64()*(max-min)
}

// Chance returns true with probability p.
func (s *Source) Chance(p float64) bool {
	return s.Float64() < p
}
