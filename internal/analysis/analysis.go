// Package analysis runs spatial statistics over a lattice once per
// generation. Each Statistic owns its incremental state; a Session drives
// several statistics over one grid and feeds them the edits posted by an
// interactive host.
package analysis

import "ca-fractal/internal/spatial"

// Statistic is a per-generation spatial estimator.
//
// Analyze is called by a single driver goroutine with monotonically
// increasing generations. NotifyExternalEdit, Reset and Result may be
// called from any goroutine.
type Statistic interface {
	Name() string
	Analyze(generation int) error
	Reset()
	NotifyExternalEdit()
	Result() Result
}

// SeriesPublisher is implemented by statistics that keep a dimension series.
type SeriesPublisher interface {
	Series() *Series
}

// Pinner is implemented by statistics that track user-pinned cells.
type Pinner interface {
	Pin(index int)
	Unpin(index int)
	ClearPins()
	Pinned() []int
}

// Result is the latest output of a Statistic. Fields a statistic does not
// produce stay zero.
type Result struct {
	Statistic  string
	Generation int
	// Valid is false until the first successful Analyze after a reset.
	Valid bool

	Dimension float64
	StdErr    float64
	RSquared  float64
	// FitPoints is the number of correlation points used by the fit.
	FitPoints int

	Matching int
	Total    int

	Degenerate    bool
	LowConfidence bool
	// Insufficient is set when too few correlation points survive trimming
	// for a fit; Dimension is then left at zero.
	Insufficient bool

	// Histogram maps neighborhood size to cell count.
	Histogram []int
	TopK      []spatial.CellDegree
	// Highlight lists the cells a host should mark: top-k, pinned cells and
	// optionally their neighbors, deduplicated.
	Highlight []int

	// Rebuilds counts full O(n²) rebuilds since the last reset.
	Rebuilds int
}

// Options configure the statistics of a Session.
type Options struct {
	Statistics       []string
	Predicate        spatial.Predicate
	MaxHistory       int
	MaxSamples       int
	TailTrim         float64
	MinFitPoints     int
	TopK             int
	IncludeNeighbors bool
	TsonisDimension  float64
}

// DefaultStatistics are run when nothing else is requested.
var DefaultStatistics = []string{"box", "correlation"}

// DefaultOptions returns the options used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		Statistics:      append([]string(nil), DefaultStatistics...),
		Predicate:       spatial.Occupied,
		MaxHistory:      128,
		MaxSamples:      500,
		TailTrim:        0.25,
		MinFitPoints:    3,
		TopK:            10,
		TsonisDimension: 2,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if len(o.Statistics) == 0 {
		o.Statistics = d.Statistics
	}
	if o.MaxHistory <= 0 {
		o.MaxHistory = d.MaxHistory
	}
	if o.MaxSamples <= 0 {
		o.MaxSamples = d.MaxSamples
	}
	if o.TailTrim < 0 {
		o.TailTrim = 0
	}
	if o.MinFitPoints < 2 {
		o.MinFitPoints = d.MinFitPoints
	}
	if o.TopK < 0 {
		o.TopK = 0
	}
	if o.TsonisDimension <= 0 {
		o.TsonisDimension = d.TsonisDimension
	}
	return o
}
