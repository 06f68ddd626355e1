package lattice

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"ca-fractal/internal/core"
)

// Topology maps a cell index to the indices of its neighbors for a grid of
// the given size. Every call returns a fresh slice the caller may keep.
type Topology interface {
	Name() string
	Neighbors(size core.Size, index int) []int
}

var (
	// moore and vonNeumann list (dx, dy) offsets clockwise from north.
	mooreOffsets      = [][2]int{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}
	vonNeumannOffsets = [][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
)

// Ring is the one-dimensional nearest-neighbor topology with wrapping ends.
type Ring struct{}

// Name identifies the topology.
func (Ring) Name() string { return "ring" }

// Neighbors returns the left and right neighbors of index.
func (Ring) Neighbors(size core.Size, index int) []int {
	w := size.W
	if w <= 1 || index < 0 || index >= w {
		return nil
	}
	left := (index - 1 + w) % w
	right := (index + 1) % w
	if left == right {
		return []int{left}
	}
	return []int{left, right}
}

// Moore is the eight-cell neighborhood. Without wrapping, edge cells have
// three or five neighbors.
type Moore struct {
	Wrap bool
}

// Name identifies the topology.
func (m Moore) Name() string {
	if m.Wrap {
		return "moore"
	}
	return "moore-bounded"
}

// Neighbors returns the in-bounds Moore neighbors of index.
func (m Moore) Neighbors(size core.Size, index int) []int {
	return offsetNeighbors(size, index, mooreOffsets, m.Wrap)
}

// VonNeumann is the four-cell orthogonal neighborhood.
type VonNeumann struct {
	Wrap bool
}

// Name identifies the topology.
func (v VonNeumann) Name() string {
	if v.Wrap {
		return "vonneumann"
	}
	return "vonneumann-bounded"
}

// Neighbors returns the in-bounds von Neumann neighbors of index.
func (v VonNeumann) Neighbors(size core.Size, index int) []int {
	return offsetNeighbors(size, index, vonNeumannOffsets, v.Wrap)
}

func offsetNeighbors(size core.Size, index int, offsets [][2]int, wrap bool) []int {
	if index < 0 || index >= size.Cells() {
		return nil
	}
	x, y := index%size.W, index/size.W
	out := make([]int, 0, len(offsets))
	for _, d := range offsets {
		nx, ny := x+d[0], y+d[1]
		if wrap {
			nx = (nx%size.W + size.W) % size.W
			ny = (ny%size.H + size.H) % size.H
		} else if nx < 0 || nx >= size.W || ny < 0 || ny >= size.H {
			continue
		}
		n := ny*size.W + nx
		if n == index || containsInt(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Jittered places one random point inside every cell and links cells whose
// points lie within Radius of each other, giving each cell a variable number
// of neighbors. Neighbor lists are computed once per grid size.
type Jittered struct {
	Radius float64
	Seed   int64

	mu    sync.Mutex
	size  core.Size
	table [][]int
}

// NewJittered returns a jittered topology with the given radius (in cells).
func NewJittered(radius float64, seed int64) *Jittered {
	return &Jittered{Radius: radius, Seed: seed}
}

// Name identifies the topology.
func (j *Jittered) Name() string { return fmt.Sprintf("jittered(r=%g)", j.Radius) }

// Neighbors returns a copy of the precomputed neighbor list of index.
func (j *Jittered) Neighbors(size core.Size, index int) []int {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.table == nil || j.size != size {
		j.build(size)
	}
	if index < 0 || index >= len(j.table) {
		return nil
	}
	return slices.Clone(j.table[index])
}

func (j *Jittered) build(size core.Size) {
	total := size.Cells()
	rng := core.NewRNG(j.Seed)
	px := make([]float64, total)
	py := make([]float64, total)
	for i := 0; i < total; i++ {
		px[i] = float64(i%size.W) + rng.Float64()
		py[i] = float64(i/size.W) + rng.Float64()
	}
	reach := int(math.Ceil(j.Radius)) + 1
	r2 := j.Radius * j.Radius
	table := make([][]int, total)
	for i := 0; i < total; i++ {
		x, y := i%size.W, i/size.W
		for ny := y - reach; ny <= y+reach; ny++ {
			if ny < 0 || ny >= size.H {
				continue
			}
			for nx := x - reach; nx <= x+reach; nx++ {
				if nx < 0 || nx >= size.W {
					continue
				}
				n := ny*size.W + nx
				if n == i {
					continue
				}
				dx, dy := px[n]-px[i], py[n]-py[i]
				if dx*dx+dy*dy <= r2 {
					table[i] = append(table[i], n)
				}
			}
		}
	}
	j.size = size
	j.table = table
}

// TopologyByName resolves a topology from its command-line name. Jittered
// topologies use radius and seed.
func TopologyByName(name string, radius float64, seed int64) (Topology, error) {
	switch name {
	case "ring":
		return Ring{}, nil
	case "moore":
		return Moore{Wrap: true}, nil
	case "moore-bounded":
		return Moore{}, nil
	case "vonneumann":
		return VonNeumann{Wrap: true}, nil
	case "vonneumann-bounded":
		return VonNeumann{}, nil
	case "jittered":
		if radius <= 0 {
			return nil, fmt.Errorf("jittered topology needs a positive radius, got %g", radius)
		}
		return NewJittered(radius, seed), nil
	default:
		return nil, fmt.Errorf("unknown topology %q", name)
	}
}
