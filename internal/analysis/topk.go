package analysis

import (
	"slices"
	"sync"

	"ca-fractal/internal/lattice"
	"ca-fractal/internal/spatial"
)

func init() {
	Register("topk", func(g lattice.Grid, opts Options) Statistic { return NewTopK(g, opts) })
}

// TopK selects the cells with the largest neighborhoods and keeps the
// user's pinned cells. Both feed the highlighted set.
type TopK struct {
	mu        sync.Mutex
	grid      lattice.Grid
	sampler   *spatial.Sampler
	pred      spatial.Predicate
	k         int
	neighbors bool
	pinned    []int
	result    Result
}

// NewTopK returns a top-k selector for g.
func NewTopK(g lattice.Grid, opts Options) *TopK {
	opts = opts.withDefaults()
	return &TopK{
		grid:      g,
		sampler:   spatial.NewSampler(g),
		pred:      resolvePredicate("topk", g, opts.Predicate),
		k:         opts.TopK,
		neighbors: opts.IncludeNeighbors,
		result:    Result{Statistic: "topk"},
	}
}

// Name implements Statistic.
func (t *TopK) Name() string { return "topk" }

// Analyze implements Statistic.
func (t *TopK) Analyze(generation int) error {
	return retryOnce(t.Name(), generation, func() error {
		cells, err := t.sampler.Sample(generation)
		if err != nil {
			return err
		}
		degrees := spatial.Degrees(t.grid, cells, t.pred)

		t.mu.Lock()
		defer t.mu.Unlock()
		top := spatial.SelectTopK(degrees, t.k)
		t.result = Result{
			Statistic:  "topk",
			Generation: generation,
			Valid:      true,
			Matching:   len(degrees),
			Total:      len(cells),
			TopK:       top,
			Highlight:  t.highlightLocked(top),
		}
		return nil
	})
}

func (t *TopK) highlightLocked(top []spatial.CellDegree) []int {
	selected := make([]int, 0, len(top)+len(t.pinned))
	for _, c := range top {
		selected = append(selected, c.Index)
	}
	selected = append(selected, t.pinned...)
	if t.neighbors {
		return spatial.ExpandNeighbors(t.grid, selected)
	}
	seen := make(map[int]bool, len(selected))
	out := selected[:0]
	for _, i := range selected {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	return out
}

// Pin adds index to the pinned cells.
func (t *TopK) Pin(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= t.grid.Size().Cells() || slices.Contains(t.pinned, index) {
		return
	}
	t.pinned = append(t.pinned, index)
}

// Unpin removes index from the pinned cells.
func (t *TopK) Unpin(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := slices.Index(t.pinned, index); i >= 0 {
		t.pinned = slices.Delete(t.pinned, i, i+1)
	}
}

// ClearPins removes every pinned cell.
func (t *TopK) ClearPins() {
	t.mu.Lock()
	t.pinned = nil
	t.mu.Unlock()
}

// Pinned returns the pinned cells in pinning order.
func (t *TopK) Pinned() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.pinned)
}

// SetIntParameter adjusts top_k.
func (t *TopK) SetIntParameter(key string, value int) bool {
	if key != "top_k" || value < 0 {
		return false
	}
	t.mu.Lock()
	t.k = value
	t.mu.Unlock()
	return true
}

// Reset implements Statistic. Pins survive a reset; they are cleared with
// ClearPins.
func (t *TopK) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result = Result{Statistic: "topk"}
}

// NotifyExternalEdit implements Statistic.
func (t *TopK) NotifyExternalEdit() {}

// Result implements Statistic.
func (t *TopK) Result() Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.result
	r.TopK = slices.Clone(r.TopK)
	r.Highlight = slices.Clone(r.Highlight)
	return r
}

func (t *TopK) parameterValue(key string) (float64, bool) {
	if key != "top_k" {
		return 0, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return float64(t.k), true
}
