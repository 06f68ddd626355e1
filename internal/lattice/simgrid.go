package lattice

import (
	"errors"
	"fmt"
	"sync"

	"ca-fractal/internal/core"
)

// ErrReadOnly is returned by Set when the wrapped sim cannot be edited.
var ErrReadOnly = errors.New("lattice: simulation does not accept cell edits")

// SimGrid adapts a core.Sim to the Grid interface. It counts generations as
// the sim is stepped and guards every access with a read/write lock so that
// an editing goroutine may call Set while another goroutine reads states.
type SimGrid struct {
	mu         sync.RWMutex
	sim        core.Sim
	topo       Topology
	oneD       bool
	integer    bool
	generation int
}

// Option configures a SimGrid.
type Option func(*SimGrid)

// WithTopology overrides the neighbor topology.
func WithTopology(t Topology) Option {
	return func(g *SimGrid) {
		if t != nil {
			g.topo = t
		}
	}
}

// NewSimGrid wraps sim. Scrolling sims are treated as one-dimensional with a
// ring topology; everything else is two-dimensional with a wrapped Moore
// neighborhood. Integer capability is decided here, once per grid.
func NewSimGrid(sim core.Sim, opts ...Option) *SimGrid {
	g := &SimGrid{sim: sim}
	if s, ok := sim.(core.Scroller); ok && s.Scrolls() {
		g.oneD = true
	}
	if m, ok := sim.(core.MultiState); ok && m.States() > 2 {
		g.integer = true
	}
	if g.oneD {
		g.topo = Ring{}
	} else {
		g.topo = Moore{Wrap: true}
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Sim returns the wrapped simulation.
func (g *SimGrid) Sim() core.Sim { return g.sim }

// Topology returns the neighbor topology in use.
func (g *SimGrid) Topology() Topology { return g.topo }

// Size reports the cells of a single generation.
func (g *SimGrid) Size() core.Size {
	s := g.sim.Size()
	if g.oneD {
		return core.Size{W: s.W, H: 1}
	}
	return s
}

// OneDimensional reports whether the grid is a scrolling 1-D automaton.
func (g *SimGrid) OneDimensional() bool { return g.oneD }

// IntegerValued reports whether cell values are meaningful integers.
func (g *SimGrid) IntegerValued() bool { return g.integer }

// Generation returns the number of steps since the last reset.
func (g *SimGrid) Generation() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.generation
}

// History reports how many generations (newest included) are retrievable.
func (g *SimGrid) History() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.historyLocked()
}

// MaxHistory reports the most generations the grid can retain.
func (g *SimGrid) MaxHistory() int {
	if !g.oneD {
		return 1
	}
	return g.sim.Size().H
}

func (g *SimGrid) historyLocked() int {
	if !g.oneD {
		return 1
	}
	rows := g.sim.Size().H
	if g.generation+1 < rows {
		return g.generation + 1
	}
	return rows
}

// Coord returns the row and column of index within one generation.
func (g *SimGrid) Coord(index int) (int, int) {
	w := g.sim.Size().W
	if g.oneD || w <= 0 {
		return 0, index
	}
	return index / w, index % w
}

// States returns a copy of every cell's state at generation.
func (g *SimGrid) States(generation int) ([]CellState, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	offset := g.generation - generation
	if offset < 0 || offset >= g.historyLocked() {
		return nil, fmt.Errorf("generation %d (current %d): %w", generation, g.generation, ErrGenerationUnavailable)
	}
	cells := g.sim.Cells()
	size := g.Size()
	n := size.Cells()
	start := offset * size.W
	if start+n > len(cells) {
		return nil, fmt.Errorf("generation %d needs cells [%d,%d) of %d: %w", generation, start, start+n, len(cells), ErrIndexOutOfRange)
	}
	out := make([]CellState, n)
	for i, v := range cells[start : start+n] {
		out[i] = CellState{Value: int(v), Empty: v == 0}
	}
	return out, nil
}

// Neighbors returns the neighbors of index according to the topology.
func (g *SimGrid) Neighbors(index int) []int {
	return g.topo.Neighbors(g.Size(), index)
}

// Step advances the wrapped sim by one generation.
func (g *SimGrid) Step() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sim.Step()
	g.generation++
	return g.generation
}

// Reset reseeds the wrapped sim and restarts generation counting.
func (g *SimGrid) Reset(seed int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sim.Reset(seed)
	g.generation = 0
}

// Set overwrites the cell at index of the given generation. For 1-D grids any
// retained generation may be edited; 2-D grids only accept the current one.
func (g *SimGrid) Set(generation, index int, value uint8) error {
	setter, ok := g.sim.(core.CellSetter)
	if !ok {
		return ErrReadOnly
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	offset := g.generation - generation
	if offset < 0 || offset >= g.historyLocked() {
		return fmt.Errorf("edit generation %d (current %d): %w", generation, g.generation, ErrGenerationUnavailable)
	}
	size := g.Size()
	if index < 0 || index >= size.Cells() {
		return fmt.Errorf("edit index %d: %w", index, ErrIndexOutOfRange)
	}
	if !setter.SetCell(offset*size.W+index, value) {
		return fmt.Errorf("edit index %d: %w", index, ErrIndexOutOfRange)
	}
	return nil
}

// Snapshot returns a copy of the full display buffer of the wrapped sim.
func (g *SimGrid) Snapshot() []uint8 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]uint8(nil), g.sim.Cells()...)
}
