package elementary

import (
	"strconv"

	"ca-fractal/internal/core"
)

// Config holds parameters for the elementary cellular automaton.
type Config struct {
	Width  int
	Height int
	Rule   uint8
	// Random seeds the first row from the RNG instead of a single centre cell.
	Random bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Width: 256, Height: 256, Rule: 110}
}

// FromMap populates a Config from a string map.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["rule"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 && parsed <= 255 {
			c.Rule = uint8(parsed)
		}
	}
	if v, ok := cfg["random"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Random = parsed
		}
	}
	return c
}

// Elementary implements a one-dimensional Wolfram code projected vertically.
// Row 0 holds the newest generation; older generations scroll downwards.
type Elementary struct {
	grid   *core.ByteGrid
	rule   uint8
	random bool
	tmp    []uint8
}

// New creates an automaton with the given dimensions and rule.
func New(w, h int, rule uint8) *Elementary {
	g := core.NewByteGrid(w, h)
	return &Elementary{grid: g, rule: rule, tmp: make([]uint8, g.W)}
}

// NewWithConfig creates an automaton from cfg.
func NewWithConfig(cfg Config) *Elementary {
	e := New(cfg.Width, cfg.Height, cfg.Rule)
	e.random = cfg.Random
	return e
}

// Name returns the simulation identifier.
func (e *Elementary) Name() string { return "elementary" }

// Size returns the simulation grid dimensions.
func (e *Elementary) Size() core.Size { return e.grid.Size() }

// Cells exposes the render buffer.
func (e *Elementary) Cells() []uint8 { return e.grid.Cells() }

// Rule reports the Wolfram code in use.
func (e *Elementary) Rule() uint8 { return e.rule }

// Scrolls reports that past generations are kept below the newest row.
func (e *Elementary) Scrolls() bool { return true }

// SetCell overwrites a single cell, clamping values to 0/1.
func (e *Elementary) SetCell(index int, value uint8) bool {
	if value > 1 {
		value = 1
	}
	return e.grid.Set(index, value)
}

// Reset clears the grid and seeds the top row.
func (e *Elementary) Reset(seed int64) {
	e.grid.Clear()
	if e.random {
		core.NewRNG(seed).FillDensity(e.grid.Row(0), 0.5)
		return
	}
	e.grid.Row(0)[e.grid.W/2] = 1
}

// Step computes the next generation and scrolls history downwards.
func (e *Elementary) Step() {
	w := e.grid.W
	copy(e.tmp, e.grid.Row(0))
	e.grid.ScrollDown()
	top := e.grid.Row(0)
	for x := range w {
		left := e.tmp[(x-1+w)%w]
		center := e.tmp[x]
		right := e.tmp[(x+1)%w]
		top[x] = (e.rule >> ((left << 2) | (center << 1) | right)) & 1
	}
}

func init() {
	core.Register("elementary", func(cfg map[string]string) core.Sim {
		return NewWithConfig(FromMap(cfg))
	})
}
