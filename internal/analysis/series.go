package analysis

import "sync"

// FractalDimensionSample is one published dimension estimate.
type FractalDimensionSample struct {
	Generation int
	Dimension  float64
	StdDev     float64
	RSquared   float64
}

// Series is a bounded window of samples; the oldest sample is dropped when
// a new one arrives at capacity. It is safe for concurrent use.
type Series struct {
	mu       sync.Mutex
	capacity int
	samples  []FractalDimensionSample
}

// NewSeries returns an empty series holding at most capacity samples.
func NewSeries(capacity int) *Series {
	if capacity < 1 {
		capacity = 1
	}
	return &Series{capacity: capacity}
}

// Add appends s, dropping the oldest sample at capacity.
func (s *Series) Add(sample FractalDimensionSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.samples) == s.capacity {
		copy(s.samples, s.samples[1:])
		s.samples = s.samples[:len(s.samples)-1]
	}
	s.samples = append(s.samples, sample)
}

// Samples returns a copy of the samples, oldest first.
func (s *Series) Samples() []FractalDimensionSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]FractalDimensionSample(nil), s.samples...)
}

// Latest returns the newest sample.
func (s *Series) Latest() (FractalDimensionSample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.samples) == 0 {
		return FractalDimensionSample{}, false
	}
	return s.samples[len(s.samples)-1], true
}

// Len returns the number of samples held.
func (s *Series) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}

// Capacity returns the maximum number of samples.
func (s *Series) Capacity() int { return s.capacity }

// Reset drops every sample.
func (s *Series) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = s.samples[:0]
}
