package briansbrain

import (
	"strconv"

	"ca-fractal/internal/core"
)

const (
	stateDead  = 0
	stateOn    = 1
	stateDying = 2
)

// Brain implements Brian's Brain cellular automaton.
type Brain struct {
	cur, nxt *core.ByteGrid
}

// New creates a Brain simulation with the provided dimensions.
func New(w, h int) *Brain {
	return &Brain{cur: core.NewByteGrid(w, h), nxt: core.NewByteGrid(w, h)}
}

// Name identifies the simulation.
func (b *Brain) Name() string { return "briansbrain" }

// Size returns the grid dimensions.
func (b *Brain) Size() core.Size { return b.cur.Size() }

// Cells exposes the current state buffer.
func (b *Brain) Cells() []uint8 { return b.cur.Cells() }

// States reports the number of distinct cell states.
func (b *Brain) States() int { return 3 }

// SetCell overwrites a single cell with one of the three states.
func (b *Brain) SetCell(index int, value uint8) bool {
	if value > stateDying {
		value = stateOn
	}
	return b.cur.Set(index, value)
}

// Reset randomizes cells into dead or firing states.
func (b *Brain) Reset(seed int64) {
	rng := core.NewRNG(seed)
	cells := b.cur.Cells()
	for i := range cells {
		if rng.IntN(8) == 0 {
			cells[i] = stateOn
			continue
		}
		cells[i] = stateDead
	}
}

// Step advances the automaton by one tick.
func (b *Brain) Step() {
	w, h := b.cur.W, b.cur.H
	cur, nxt := b.cur.Cells(), b.nxt.Cells()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			switch cur[idx] {
			case stateOn:
				nxt[idx] = stateDying
			case stateDying:
				nxt[idx] = stateDead
			default:
				neighbors := 0
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						if b.cur.At(x+dx, y+dy) == stateOn {
							neighbors++
						}
					}
				}
				if neighbors == 2 {
					nxt[idx] = stateOn
				} else {
					nxt[idx] = stateDead
				}
			}
		}
	}
	b.cur, b.nxt = b.nxt, b.cur
}

func init() {
	core.Register("briansbrain", func(cfg map[string]string) core.Sim {
		w, h := 128, 128
		if v, err := strconv.Atoi(cfg["w"]); err == nil && v > 0 {
			w = v
		}
		if v, err := strconv.Atoi(cfg["h"]); err == nil && v > 0 {
			h = v
		}
		return New(w, h)
	})
}
