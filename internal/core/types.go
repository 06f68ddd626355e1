package core

import "sort"

// Size describes the dimensions of a simulation grid.
type Size struct {
	W int
	H int
}

// Cells returns the number of cells covered by the size.
func (s Size) Cells() int {
	if s.W <= 0 || s.H <= 0 {
		return 0
	}
	return s.W * s.H
}

// Sim defines the minimal contract a cellular automaton must implement.
type Sim interface {
	Name() string
	Size() Size
	Reset(seed int64)
	Step()
	Cells() []uint8
}

// Scroller is implemented by one-dimensional automata that keep past
// generations scrolled down the grid: row 0 holds the newest generation and
// row k the generation k steps back.
type Scroller interface {
	Scrolls() bool
}

// MultiState is implemented by sims whose cell values are meaningful
// integers beyond the binary empty/occupied encoding.
type MultiState interface {
	States() int
}

// CellSetter lets hosts overwrite a single cell value, e.g. when the user
// draws on the grid.
type CellSetter interface {
	SetCell(index int, value uint8) bool
}

// Factory constructs a Sim using an optional configuration map.
type Factory func(cfg map[string]string) Sim

var sims = map[string]Factory{}

// Register adds a simulation factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	sims[name] = f
}

// Sims exposes the registry of available simulation factories.
func Sims() map[string]Factory {
	return sims
}

// SimNames returns the registered simulation names in sorted order.
func SimNames() []string {
	names := make([]string, 0, len(sims))
	for name := range sims {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
