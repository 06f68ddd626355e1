package core

// ByteGrid stores a 2D grid of byte-sized cell values in row-major order.
type ByteGrid struct {
	W, H int
	data []uint8
}

// NewByteGrid allocates a grid with the given dimensions. Non-positive
// dimensions become 1.
func NewByteGrid(w, h int) *ByteGrid {
	w, h = max(w, 1), max(h, 1)
	return &ByteGrid{W: w, H: h, data: make([]uint8, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *ByteGrid) Cells() []uint8 { return g.data }

// Size reports the grid dimensions.
func (g *ByteGrid) Size() Size { return Size{W: g.W, H: g.H} }

// Index returns the linear slice index for coordinates (x, y).
func (g *ByteGrid) Index(x, y int) int { return y*g.W + x }

// Row returns row y of the backing slice.
func (g *ByteGrid) Row(y int) []uint8 { return g.data[y*g.W : (y+1)*g.W] }

// At returns the value at (x, y) with toroidal wrapping.
func (g *ByteGrid) At(x, y int) uint8 {
	x = (x%g.W + g.W) % g.W
	y = (y%g.H + g.H) % g.H
	return g.data[y*g.W+x]
}

// Set writes v at linear index i, reporting false when i is out of range.
func (g *ByteGrid) Set(i int, v uint8) bool {
	if i < 0 || i >= len(g.data) {
		return false
	}
	g.data[i] = v
	return true
}

// ScrollDown moves every row one step down, dropping the last row. Row 0
// keeps its values.
func (g *ByteGrid) ScrollDown() {
	copy(g.data[g.W:], g.data[:len(g.data)-g.W])
}

// Clear fills the grid with zeros.
func (g *ByteGrid) Clear() { clear(g.data) }
