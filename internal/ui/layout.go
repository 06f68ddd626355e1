package ui

import "ca-fractal/internal/core"

// Layout maps window pixels onto the displayed sim buffer. For scrolling
// 1-D sims display row r holds generation Generation-r and a cell index is
// its column; 2-D sims show only the current generation.
type Layout struct {
	Size       core.Size
	Scale      int
	OneD       bool
	Generation int
}

func (l Layout) scale() int {
	if l.Scale <= 0 {
		return 1
	}
	return l.Scale
}

// CellAt returns the generation and cell index under pixel (x, y).
func (l Layout) CellAt(x, y int) (generation, index int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	s := l.scale()
	col, row := x/s, y/s
	if col >= l.Size.W || row >= l.Size.H {
		return 0, 0, false
	}
	if l.OneD {
		gen := l.Generation - row
		if gen < 0 {
			return 0, 0, false
		}
		return gen, col, true
	}
	return l.Generation, row*l.Size.W + col, true
}

// Origin returns the top-left pixel of cell index in the current
// generation.
func (l Layout) Origin(index int) (x, y int) {
	s := l.scale()
	if l.OneD || l.Size.W <= 0 {
		return index * s, 0
	}
	return (index % l.Size.W) * s, (index / l.Size.W) * s
}

// Width and Height are the pixel extent of the sim view.
func (l Layout) Width() int  { return l.Size.W * l.scale() }
func (l Layout) Height() int { return l.Size.H * l.scale() }
