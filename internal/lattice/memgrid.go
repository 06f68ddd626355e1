package lattice

import (
	"fmt"
	"sync"

	"ca-fractal/internal/core"
)

// MemGrid is a Grid backed by explicit per-generation values. Hosts that
// feed recorded or externally computed states use it; it also makes
// analysis behaviour easy to pin down in tests.
type MemGrid struct {
	mu      sync.RWMutex
	size    core.Size
	oneD    bool
	integer bool
	keep    int
	topo    Topology
	gens    [][]CellState // oldest first
	first   int           // generation number of gens[0]
}

// MemGridConfig describes a MemGrid.
type MemGridConfig struct {
	Size           core.Size
	OneDimensional bool
	IntegerValued  bool
	// Keep bounds the retained generations; 0 keeps one generation for 2-D
	// grids and 64 for 1-D grids.
	Keep     int
	Topology Topology
}

// NewMemGrid builds an empty MemGrid. Push must be called before the grid
// exposes any generation.
func NewMemGrid(cfg MemGridConfig) *MemGrid {
	size := cfg.Size
	if cfg.OneDimensional {
		size.H = 1
	}
	keep := cfg.Keep
	if keep <= 0 {
		keep = 1
		if cfg.OneDimensional {
			keep = 64
		}
	}
	topo := cfg.Topology
	if topo == nil {
		if cfg.OneDimensional {
			topo = Ring{}
		} else {
			topo = Moore{}
		}
	}
	return &MemGrid{size: size, oneD: cfg.OneDimensional, integer: cfg.IntegerValued, keep: keep, topo: topo}
}

// Push appends a new newest generation built from values (0 means empty)
// and returns its generation number. The first push is generation 0.
func (m *MemGrid) Push(values []int) (int, error) {
	if len(values) != m.size.Cells() {
		return 0, fmt.Errorf("push %d values into %dx%d grid: %w", len(values), m.size.W, m.size.H, ErrIndexOutOfRange)
	}
	states := make([]CellState, len(values))
	for i, v := range values {
		states[i] = CellState{Value: v, Empty: v == 0}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gens = append(m.gens, states)
	if len(m.gens) > m.keep {
		drop := len(m.gens) - m.keep
		m.gens = append([][]CellState(nil), m.gens[drop:]...)
		m.first += drop
	}
	return m.first + len(m.gens) - 1, nil
}

// Set overwrites a single retained cell.
func (m *MemGrid) Set(generation, index, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := generation - m.first
	if i < 0 || i >= len(m.gens) {
		return fmt.Errorf("edit generation %d: %w", generation, ErrGenerationUnavailable)
	}
	if index < 0 || index >= len(m.gens[i]) {
		return fmt.Errorf("edit index %d: %w", index, ErrIndexOutOfRange)
	}
	m.gens[i][index] = CellState{Value: value, Empty: value == 0}
	return nil
}

// Clear drops every retained generation.
func (m *MemGrid) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gens = nil
	m.first = 0
}

// Size reports the cells of a single generation.
func (m *MemGrid) Size() core.Size { return m.size }

// OneDimensional reports whether the grid is 1-D.
func (m *MemGrid) OneDimensional() bool { return m.oneD }

// IntegerValued reports whether values are meaningful integers.
func (m *MemGrid) IntegerValued() bool { return m.integer }

// Generation returns the newest generation number, or -1 when empty.
func (m *MemGrid) Generation() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.first + len(m.gens) - 1
}

// History reports the number of retained generations.
func (m *MemGrid) History() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.gens)
}

// MaxHistory reports the retention bound.
func (m *MemGrid) MaxHistory() int { return m.keep }

// Coord returns the row and column of index within one generation.
func (m *MemGrid) Coord(index int) (int, int) {
	if m.oneD {
		return 0, index
	}
	return index / m.size.W, index % m.size.W
}

// States returns a copy of the states at generation.
func (m *MemGrid) States(generation int) ([]CellState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := generation - m.first
	if i < 0 || i >= len(m.gens) {
		return nil, fmt.Errorf("generation %d: %w", generation, ErrGenerationUnavailable)
	}
	return append([]CellState(nil), m.gens[i]...), nil
}

// Neighbors returns the neighbors of index according to the topology.
func (m *MemGrid) Neighbors(index int) []int {
	return m.topo.Neighbors(m.size, index)
}
