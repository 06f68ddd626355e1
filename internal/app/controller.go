package app

import (
	"errors"
	"slices"

	"ca-fractal/internal/analysis"
	"ca-fractal/internal/lattice"
	"ca-fractal/internal/ui"
)

// Controller applies user actions to a grid and the analysis session
// watching it. The GUI calls it from its update loop; it holds no ebiten
// state so it also runs headless.
type Controller struct {
	grid    *lattice.SimGrid
	session *analysis.Session
	seed    int64
	lastErr error
}

// NewController analyzes the current generation once so results are
// available before the first step.
func NewController(grid *lattice.SimGrid, session *analysis.Session, seed int64) *Controller {
	c := &Controller{grid: grid, session: session, seed: seed}
	c.Refresh()
	return c
}

// Grid returns the controlled grid.
func (c *Controller) Grid() *lattice.SimGrid { return c.grid }

// Session returns the analysis session.
func (c *Controller) Session() *analysis.Session { return c.session }

// Err returns the error of the most recent analysis, if any.
func (c *Controller) Err() error { return c.lastErr }

// Step advances the sim one generation and analyzes it.
func (c *Controller) Step() int {
	gen := c.grid.Step()
	c.lastErr = c.session.Analyze(gen)
	return gen
}

// Refresh re-analyzes the current generation, picking up queued edits.
func (c *Controller) Refresh() {
	c.lastErr = c.session.Analyze(c.grid.Generation())
}

// Reset reseeds the sim and restarts the analysis.
func (c *Controller) Reset(seed int64) {
	c.seed = seed
	c.grid.Reset(seed)
	c.session.Reset()
	c.Refresh()
}

// Seed returns the seed of the last reset.
func (c *Controller) Seed() int64 { return c.seed }

// Paint sets a cell and tells the session about it. Edits to read-only sims
// are reported as errors.
func (c *Controller) Paint(generation, index int, value uint8) error {
	if err := c.grid.Set(generation, index, value); err != nil {
		return err
	}
	c.session.Post(analysis.Draw(index))
	return nil
}

// TogglePin pins index, or unpins it when it is already pinned. It reports
// whether the cell ends up pinned; sessions without a top-k statistic never
// pin.
func (c *Controller) TogglePin(index int) (bool, error) {
	p, ok := c.pinner()
	if !ok {
		return false, errors.New("no topk statistic to pin cells for")
	}
	if slices.Contains(p.Pinned(), index) {
		c.session.Post(analysis.Unpin(index))
		return false, nil
	}
	c.session.Post(analysis.Pin(index))
	return true, nil
}

// ClearPins drops every pin.
func (c *Controller) ClearPins() { c.session.Post(analysis.ClearPins()) }

// Pinned returns the pinned cells.
func (c *Controller) Pinned() []int {
	if p, ok := c.pinner(); ok {
		return p.Pinned()
	}
	return nil
}

func (c *Controller) pinner() (analysis.Pinner, bool) {
	st, ok := c.session.Statistic("topk")
	if !ok {
		return nil, false
	}
	p, ok := st.(analysis.Pinner)
	return p, ok
}

// ToggleAnalysis stops or resumes the session and reports whether analysis
// is on afterwards.
func (c *Controller) ToggleAnalysis() bool {
	if c.session.Stopped() {
		c.session.Resume()
		c.Refresh()
		return true
	}
	c.session.Stop()
	return false
}

// Layout describes the displayed sim buffer at the given scale.
func (c *Controller) Layout(scale int) ui.Layout {
	return ui.Layout{
		Size:       c.grid.Sim().Size(),
		Scale:      scale,
		OneD:       c.grid.OneDimensional(),
		Generation: c.grid.Generation(),
	}
}
