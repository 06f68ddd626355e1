package analysis

import (
	"sync"

	"ca-fractal/internal/lattice"
	"ca-fractal/internal/spatial"
)

func init() {
	Register("correlation", func(g lattice.Grid, opts Options) Statistic { return NewCorrelation(g, opts) })
}

// Correlation estimates the correlation dimension from the pairwise
// squared-distance histogram of matching cells.
//
// Sliding a 1-D window costs O(W·n) per generation. Full rebuilds are
// O(n²) and run on a copy of the window with the lock released; the new
// histogram is discarded if a Reset happened meanwhile.
type Correlation struct {
	mu       sync.Mutex
	opts     Options
	pred     spatial.Predicate
	win      *window
	hist     *spatial.DistanceHistogram
	occ      *spatial.Occupancy
	series   *Series
	result   Result
	epoch    uint64
	rebuilds int
}

// NewCorrelation returns a correlation-dimension estimator for g.
func NewCorrelation(g lattice.Grid, opts Options) *Correlation {
	opts = opts.withDefaults()
	c := &Correlation{
		opts:   opts,
		pred:   resolvePredicate("correlation", g, opts.Predicate),
		win:    newWindow(g, opts.MaxHistory),
		series: NewSeries(opts.MaxSamples),
		result: Result{Statistic: "correlation"},
	}
	c.hist = c.newHistogram()
	c.occ = spatial.NewOccupancy(c.pred)
	return c
}

func (c *Correlation) newHistogram() *spatial.DistanceHistogram {
	rows, cols := c.win.maxDeltas()
	return spatial.NewDistanceHistogram(rows, cols, c.pred)
}

// Name implements Statistic.
func (c *Correlation) Name() string { return "correlation" }

// Series returns the published dimension series.
func (c *Correlation) Series() *Series { return c.series }

// Histogram returns a copy of the distance histogram.
func (c *Correlation) Histogram() *spatial.DistanceHistogram {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hist.Clone()
}

// Analyze implements Statistic.
func (c *Correlation) Analyze(generation int) error {
	return retryOnce(c.Name(), generation, func() error { return c.analyze(generation) })
}

func (c *Correlation) analyze(generation int) error {
	c.mu.Lock()
	step, err := c.win.advance(generation)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	switch step.kind {
	case stepNone:
		c.mu.Unlock()
		return nil
	case stepSlide:
		if step.evicted != nil {
			c.hist.RemoveRow(step.evicted, step.existing)
		}
		c.hist.AddRow(step.added, step.existing)
		c.occ.Slide(step.added, step.evicted)
		c.publish(generation)
		c.mu.Unlock()
		return nil
	}

	epoch := c.epoch
	if step.restart {
		c.series.Reset()
		c.rebuilds = 0
	}
	if step.reason != reasonRescan {
		log().Debug("full rebuild", "statistic", "correlation", "generation", generation, "reason", step.reason, "cells", len(step.cells))
	}
	fresh := c.newHistogram()
	c.mu.Unlock()

	fresh.RebuildFull(step.cells)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return nil
	}
	c.hist = fresh
	c.occ.Rescan(step.cells)
	if step.reason != reasonRescan {
		c.rebuilds++
	}
	c.publish(generation)
	return nil
}

// publish derives the result from the histogram. Callers hold c.mu.
func (c *Correlation) publish(generation int) {
	rows, cols, total := c.win.dims()
	n := c.occ.Count()
	r := Result{
		Statistic:     "correlation",
		Generation:    generation,
		Valid:         true,
		Matching:      n,
		Total:         total,
		Rebuilds:      c.rebuilds,
		LowConfidence: n < spatial.TsonisMinimum(c.opts.TsonisDimension),
	}
	if spatial.IsDegenerate(n, total) {
		r.Degenerate = true
		r.Dimension = spatial.BoxDimension(n, total, rows, cols)
		r.RSquared = 1
	} else {
		points := spatial.TrimTail(spatial.CorrelationFunction(c.hist.Bins()), c.opts.TailTrim, c.opts.MinFitPoints)
		r.FitPoints = len(points)
		if len(points) < c.opts.MinFitPoints {
			r.Insufficient = true
		} else if fit, err := spatial.Fit(points); err != nil {
			r.Insufficient = true
		} else {
			r.Dimension = fit.Slope
			r.StdErr = fit.StdErr
			r.RSquared = fit.RSquared
		}
	}
	c.result = r
	if !r.Insufficient {
		c.series.Add(FractalDimensionSample{
			Generation: generation,
			Dimension:  r.Dimension,
			StdDev:     r.StdErr,
			RSquared:   r.RSquared,
		})
	}
}

// SetFloatParameter adjusts tail_trim.
func (c *Correlation) SetFloatParameter(key string, value float64) bool {
	if key != "tail_trim" || value < 0 || value > 0.9 {
		return false
	}
	c.mu.Lock()
	c.opts.TailTrim = value
	c.mu.Unlock()
	return true
}

// SetIntParameter adjusts min_fit_points.
func (c *Correlation) SetIntParameter(key string, value int) bool {
	if key != "min_fit_points" || value < 2 {
		return false
	}
	c.mu.Lock()
	c.opts.MinFitPoints = value
	c.mu.Unlock()
	return true
}

// Reset implements Statistic.
func (c *Correlation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.win.reset()
	c.hist.Clear()
	c.occ.Reset()
	c.series.Reset()
	c.rebuilds = 0
	c.result = Result{Statistic: "correlation"}
}

// NotifyExternalEdit implements Statistic.
func (c *Correlation) NotifyExternalEdit() {
	c.mu.Lock()
	c.win.dirty = true
	c.mu.Unlock()
}

// Result implements Statistic.
func (c *Correlation) Result() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

func (c *Correlation) parameterValue(key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch key {
	case "tail_trim":
		return c.opts.TailTrim, true
	case "min_fit_points":
		return float64(c.opts.MinFitPoints), true
	}
	return 0, false
}
