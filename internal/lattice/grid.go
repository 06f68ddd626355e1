// Package lattice exposes simulation state to the analysis code: cell
// enumeration per generation, per-cell state, neighbor lists and lattice
// dimensions.
package lattice

import (
	"errors"

	"ca-fractal/internal/core"
)

var (
	// ErrGenerationUnavailable is returned when a generation is no longer (or
	// not yet) retained by the grid.
	ErrGenerationUnavailable = errors.New("lattice: generation not retained")
	// ErrIndexOutOfRange is returned when a cell index lies outside the grid.
	ErrIndexOutOfRange = errors.New("lattice: cell index out of range")
)

// CellState is the state of a single cell at one generation.
type CellState struct {
	Value int
	Empty bool
}

// Cell identifies a lattice site by its enumeration index and coordinates.
type Cell struct {
	Index int
	Row   int
	Col   int
}

// Grid is the read side of a lattice as seen by the analysis code.
//
// Enumeration order returned by States is stable across calls. For
// one-dimensional grids Size().H is 1 and older generations are reachable
// through States(g) for Generation()-History() < g <= Generation(); History
// grows towards MaxHistory as generations accumulate.
type Grid interface {
	Size() core.Size
	OneDimensional() bool
	IntegerValued() bool
	Generation() int
	History() int
	MaxHistory() int
	Coord(index int) (row, col int)
	States(generation int) ([]CellState, error)
	Neighbors(index int) []int
}
