package analysis

import (
	"sync"

	"ca-fractal/internal/lattice"
	"ca-fractal/internal/spatial"
)

func init() {
	Register("box", func(g lattice.Grid, opts Options) Statistic { return NewBox(g, opts) })
}

// Box is the single-scale box-counting estimator. On 1-D grids the count
// is kept incrementally as rows slide through the history window; 2-D
// grids are rescanned every generation.
type Box struct {
	mu       sync.Mutex
	win      *window
	occ      *spatial.Occupancy
	series   *Series
	result   Result
	rebuilds int
}

// NewBox returns a box-counting estimator for g.
func NewBox(g lattice.Grid, opts Options) *Box {
	opts = opts.withDefaults()
	return &Box{
		win:    newWindow(g, opts.MaxHistory),
		occ:    spatial.NewOccupancy(resolvePredicate("box", g, opts.Predicate)),
		series: NewSeries(opts.MaxSamples),
		result: Result{Statistic: "box"},
	}
}

// Name implements Statistic.
func (b *Box) Name() string { return "box" }

// Series returns the published dimension series.
func (b *Box) Series() *Series { return b.series }

// Analyze implements Statistic.
func (b *Box) Analyze(generation int) error {
	return retryOnce(b.Name(), generation, func() error { return b.analyze(generation) })
}

func (b *Box) analyze(generation int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	step, err := b.win.advance(generation)
	if err != nil {
		return err
	}
	switch step.kind {
	case stepNone:
		return nil
	case stepSlide:
		b.occ.Slide(step.added, step.evicted)
	case stepRebuild:
		if step.restart {
			b.series.Reset()
			b.rebuilds = 0
		}
		if step.reason != reasonRescan {
			b.rebuilds++
			log().Debug("full rebuild", "statistic", "box", "generation", generation, "reason", step.reason)
		}
		b.occ.Rescan(step.cells)
	}

	rows, cols, total := b.win.dims()
	n := b.occ.Count()
	dim := spatial.BoxDimension(n, total, rows, cols)
	b.result = Result{
		Statistic:  "box",
		Generation: generation,
		Valid:      true,
		Dimension:  dim,
		Matching:   n,
		Total:      total,
		Degenerate: spatial.IsDegenerate(n, total),
		Rebuilds:   b.rebuilds,
	}
	b.series.Add(FractalDimensionSample{Generation: generation, Dimension: dim})
	return nil
}

// Reset implements Statistic.
func (b *Box) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.win.reset()
	b.occ.Reset()
	b.series.Reset()
	b.rebuilds = 0
	b.result = Result{Statistic: "box"}
}

// NotifyExternalEdit implements Statistic.
func (b *Box) NotifyExternalEdit() {
	b.mu.Lock()
	b.win.dirty = true
	b.mu.Unlock()
}

// Result implements Statistic.
func (b *Box) Result() Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.result
}

// resolvePredicate applies the integer-capability fallback once per grid.
func resolvePredicate(name string, g lattice.Grid, p spatial.Predicate) spatial.Predicate {
	resolved, fell := p.Resolve(g.IntegerValued())
	if fell {
		log().Info("predicate needs integer states, falling back", "statistic", name, "requested", p.String(), "using", resolved.String())
	}
	return resolved
}
