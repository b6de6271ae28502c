// Package recommend selects a diverse top-N keyword set and finds keyword gaps against competitors.
package recommend

import (
	"math/rand/v2"
	"sync"
)

// RandomSource supplies the randomness used to break diversity ties.
// Next returns a value in [0,1).
type RandomSource interface {
	Next() float64
}

// SeededSource is a RandomSource backed by a PCG generator. Equal seeds give equal sequences.
type SeededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource returns a reproducible RandomSource.
func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Next returns the next value in [0,1).
func (s *SeededSource) Next() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// SequenceSource replays a fixed list of values, cycling when exhausted.
// An empty sequence always yields 0.
type SequenceSource struct {
	values []float64
	pos    int
}

// NewSequenceSource returns a RandomSource that yields values in order.
func NewSequenceSource(values ...float64) *SequenceSource {
	return &SequenceSource{values: values}
}

// Next returns the next value of the sequence.
func (s *SequenceSource) Next() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}
