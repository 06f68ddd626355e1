package spatial

import "ca-fractal/internal/lattice"

// SampledCell is an immutable snapshot of one cell at one generation. For
// 1-D grids Row is the generation number, so distances between rows of the
// history window stay fixed as the window slides.
type SampledCell struct {
	Row   int
	Col   int
	Value int
	Empty bool
}

// Sampler reads cell snapshots from a grid. Whether values are integers is
// decided once, at construction; binary grids are encoded as empty=0,
// occupied=1.
type Sampler struct {
	grid    lattice.Grid
	integer bool
}

// NewSampler returns a sampler for g.
func NewSampler(g lattice.Grid) *Sampler {
	return &Sampler{grid: g, integer: g.IntegerValued()}
}

// Grid returns the sampled grid.
func (s *Sampler) Grid() lattice.Grid { return s.grid }

// IntegerValued reports whether sampled values are raw integer states.
func (s *Sampler) IntegerValued() bool { return s.integer }

// Sample returns every cell of generation in enumeration order.
func (s *Sampler) Sample(generation int) ([]SampledCell, error) {
	states, err := s.grid.States(generation)
	if err != nil {
		return nil, err
	}
	oneD := s.grid.OneDimensional()
	out := make([]SampledCell, len(states))
	for i, st := range states {
		c := SampledCell{Empty: st.Empty, Value: s.encode(st)}
		if oneD {
			c.Row, c.Col = generation, i
		} else {
			c.Row, c.Col = s.grid.Coord(i)
		}
		out[i] = c
	}
	return out, nil
}

func (s *Sampler) encode(st lattice.CellState) int {
	if s.integer {
		return st.Value
	}
	if st.Empty {
		return 0
	}
	return 1
}
