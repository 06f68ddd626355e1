package core

import "math/rand/v2"

// RNG is a seeded PCG source. The same seed always yields the same sim and
// the same jittered topology.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// IntN returns a random int in [0, n). It returns 0 when n <= 0.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}

// Float64 returns a random value in [0, 1).
func (r *RNG) Float64() float64 { return r.r.Float64() }

// FillDensity sets each cell of buf to 1 with probability p and 0 otherwise.
// p = 0.5 gives an unbiased binary fill.
func (r *RNG) FillDensity(buf []uint8, p float64) {
	for i := range buf {
		buf[i] = 0
		if r.r.Float64() < p {
			buf[i] = 1
		}
	}
}
