package analysis

import (
	"sync"

	"ca-fractal/internal/lattice"
	"ca-fractal/internal/spatial"
)

func init() {
	Register("neighborhood", func(g lattice.Grid, opts Options) Statistic { return NewNeighborhood(g, opts) })
}

// Neighborhood tallies the neighborhood sizes of matching cells. Degrees
// may change arbitrarily between generations on variable topologies, so
// the histogram is rebuilt from scratch on every call.
type Neighborhood struct {
	mu      sync.Mutex
	grid    lattice.Grid
	sampler *spatial.Sampler
	pred    spatial.Predicate
	counts  map[int]int
	result  Result
}

// NewNeighborhood returns a neighborhood-size estimator for g.
func NewNeighborhood(g lattice.Grid, opts Options) *Neighborhood {
	opts = opts.withDefaults()
	return &Neighborhood{
		grid:    g,
		sampler: spatial.NewSampler(g),
		pred:    resolvePredicate("neighborhood", g, opts.Predicate),
		result:  Result{Statistic: "neighborhood"},
	}
}

// Name implements Statistic.
func (n *Neighborhood) Name() string { return "neighborhood" }

// Analyze implements Statistic.
func (n *Neighborhood) Analyze(generation int) error {
	return retryOnce(n.Name(), generation, func() error {
		cells, err := n.sampler.Sample(generation)
		if err != nil {
			return err
		}
		degrees := spatial.Degrees(n.grid, cells, n.pred)
		counts := spatial.NeighborhoodCounts(degrees)
		hist := spatial.NeighborhoodHistogram(counts)

		n.mu.Lock()
		defer n.mu.Unlock()
		n.counts = counts
		n.result = Result{
			Statistic:  "neighborhood",
			Generation: generation,
			Valid:      true,
			Matching:   len(degrees),
			Total:      len(cells),
			Histogram:  hist,
		}
		return nil
	})
}

// Counts returns a copy of the per-cell neighborhood sizes of the last
// analyzed generation.
func (n *Neighborhood) Counts() map[int]int {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[int]int, len(n.counts))
	for k, v := range n.counts {
		out[k] = v
	}
	return out
}

// Reset implements Statistic.
func (n *Neighborhood) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.counts = nil
	n.result = Result{Statistic: "neighborhood"}
}

// NotifyExternalEdit implements Statistic. Every generation is a full
// recount, so there is nothing to invalidate.
func (n *Neighborhood) NotifyExternalEdit() {}

// Result implements Statistic.
func (n *Neighborhood) Result() Result {
	n.mu.Lock()
	defer n.mu.Unlock()
	r := n.result
	r.Histogram = append([]int(nil), r.Histogram...)
	return r
}
