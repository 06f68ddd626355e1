package analysis

import (
	"ca-fractal/internal/lattice"
	"ca-fractal/internal/spatial"
)

type stepKind int

const (
	stepNone stepKind = iota
	stepSlide
	stepRebuild
)

// Reasons for taking the full rebuild path.
const (
	reasonFirst   = "first sample"
	reasonEdit    = "external edit detected"
	reasonNotify  = "host notification"
	reasonGap     = "generation gap"
	reasonRestart = "restart"
	reasonRescan  = "rescan"
)

// windowStep describes how an estimator must update its structures after
// the window advanced.
type windowStep struct {
	kind    stepKind
	reason  string
	restart bool
	// cells is an owned copy of the whole window for stepRebuild.
	cells []spatial.SampledCell
	// added and evicted are set for stepSlide; existing holds the window
	// cells that are neither.
	added    []spatial.SampledCell
	evicted  []spatial.SampledCell
	existing []spatial.SampledCell
}

// window tracks the cells an estimator analyzes: the sliding history of a
// 1-D grid, or the whole current generation of a 2-D grid. Owners hold
// their lock around every call.
type window struct {
	grid    lattice.Grid
	sampler *spatial.Sampler
	buf     *spatial.HistoryBuffer
	last    int
	dirty   bool
}

func newWindow(g lattice.Grid, maxHistory int) *window {
	w := &window{grid: g, sampler: spatial.NewSampler(g), last: -1}
	if g.OneDimensional() {
		capacity := min(maxHistory, g.MaxHistory())
		w.buf = spatial.NewHistoryBuffer(g.Size().W, capacity)
	}
	return w
}

// maxDeltas bounds the row and column differences between window cells.
func (w *window) maxDeltas() (rows, cols int) {
	size := w.grid.Size()
	if w.buf != nil {
		return w.buf.Capacity() - 1, size.W - 1
	}
	return size.H - 1, size.W - 1
}

// dims returns the row and column span and the cell count of the current
// window.
func (w *window) dims() (rows, cols, total int) {
	size := w.grid.Size()
	if w.buf != nil {
		return w.buf.Rows(), size.W, w.buf.Len()
	}
	return size.H, size.W, size.Cells()
}

func (w *window) reset() {
	w.last = -1
	w.dirty = false
	if w.buf != nil {
		w.buf.Reset()
	}
}

// advance moves the window to generation. The window is only modified when
// every read from the grid succeeded.
func (w *window) advance(generation int) (windowStep, error) {
	if w.buf == nil {
		return w.advance2D(generation)
	}
	var reason string
	switch {
	case w.last < 0:
		reason = reasonFirst
	case generation < w.last:
		reason = reasonRestart
	case w.dirty:
		reason = reasonNotify
	case generation == w.last:
		return windowStep{kind: stepNone}, nil
	case generation > w.last+1:
		reason = reasonGap
	}
	if reason == "" {
		edited, err := w.buf.DetectExternalEdit(w.sampler, generation)
		if err != nil {
			return windowStep{}, err
		}
		if edited {
			reason = reasonEdit
		}
	}
	if reason != "" {
		if err := w.buf.Refill(w.sampler, generation); err != nil {
			return windowStep{}, err
		}
		w.last = generation
		w.dirty = false
		return windowStep{
			kind:    stepRebuild,
			reason:  reason,
			restart: reason == reasonRestart,
			cells:   append([]spatial.SampledCell(nil), w.buf.Cells()...),
		}, nil
	}

	added, evicted, err := w.buf.AppendNewestRow(w.sampler, generation)
	if err != nil {
		return windowStep{}, err
	}
	w.last = generation
	cells := w.buf.Cells()
	return windowStep{
		kind:     stepSlide,
		added:    added,
		evicted:  evicted,
		existing: cells[:len(cells)-len(added)],
	}, nil
}

func (w *window) advance2D(generation int) (windowStep, error) {
	if generation == w.last && !w.dirty {
		return windowStep{kind: stepNone}, nil
	}
	cells, err := w.sampler.Sample(generation)
	if err != nil {
		return windowStep{}, err
	}
	restart := w.last >= 0 && generation < w.last
	w.last = generation
	w.dirty = false
	return windowStep{kind: stepRebuild, reason: reasonRescan, restart: restart, cells: cells}, nil
}
