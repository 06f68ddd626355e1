package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ca-fractal/internal/analysis"
	"ca-fractal/internal/core"
	"ca-fractal/internal/lattice"
	"ca-fractal/internal/sims/elementary"
	"ca-fractal/internal/sims/life"
)

func newLifeController(t *testing.T, names ...string) *Controller {
	t.Helper()
	grid := lattice.NewSimGrid(life.NewWithConfig(life.Config{Width: 16, Height: 16, Density: 0.3}))
	grid.Reset(7)
	session, err := analysis.New(grid, analysis.DefaultOptions(), names...)
	require.NoError(t, err)
	return NewController(grid, session, 7)
}

func TestControllerAnalyzesOnStartAndStep(t *testing.T) {
	c := newLifeController(t, "box", "correlation")
	for _, r := range c.Session().Results() {
		assert.True(t, r.Valid, r.Statistic)
		assert.Equal(t, 0, r.Generation)
	}
	assert.Equal(t, 1, c.Step())
	assert.Equal(t, 2, c.Step())
	require.NoError(t, c.Err())
	for _, r := range c.Session().Results() {
		assert.Equal(t, 2, r.Generation, r.Statistic)
	}

	c.Reset(11)
	assert.Equal(t, int64(11), c.Seed())
	assert.Equal(t, 0, c.Grid().Generation())
	assert.Equal(t, 0, c.Session().Results()[0].Generation)
}

func TestControllerPaint(t *testing.T) {
	c := newLifeController(t, "box")
	gen := c.Grid().Generation()
	require.NoError(t, c.Paint(gen, 5, 0))
	require.NoError(t, c.Paint(gen, 6, 1))
	c.Refresh()
	require.NoError(t, c.Err())

	states, err := c.Grid().States(gen)
	require.NoError(t, err)
	assert.True(t, states[5].Empty)
	assert.Equal(t, 1, states[6].Value)

	want := 0
	for _, s := range states {
		if !s.Empty {
			want++
		}
	}
	assert.Equal(t, want, c.Session().Results()[0].Matching)

	assert.ErrorIs(t, c.Paint(gen+3, 0, 1), lattice.ErrGenerationUnavailable)
	assert.ErrorIs(t, c.Paint(gen, 16*16, 1), lattice.ErrIndexOutOfRange)
}

func TestControllerPins(t *testing.T) {
	c := newLifeController(t, "topk")

	pinned, err := c.TogglePin(5)
	require.NoError(t, err)
	assert.True(t, pinned)
	c.Refresh()
	assert.Equal(t, []int{5}, c.Pinned())
	assert.Contains(t, c.Session().Highlight(), 5)

	pinned, err = c.TogglePin(5)
	require.NoError(t, err)
	assert.False(t, pinned)
	c.Refresh()
	assert.Empty(t, c.Pinned())

	_, _ = c.TogglePin(1)
	_, _ = c.TogglePin(2)
	c.Refresh()
	c.ClearPins()
	c.Refresh()
	assert.Empty(t, c.Pinned())

	without := newLifeController(t, "box")
	_, err = without.TogglePin(1)
	assert.Error(t, err)
	assert.Nil(t, without.Pinned())
}

func TestControllerToggleAnalysis(t *testing.T) {
	c := newLifeController(t, "box")
	assert.False(t, c.ToggleAnalysis())
	assert.True(t, c.Session().Stopped())
	c.Step()
	assert.Equal(t, 0, c.Session().Results()[0].Generation, "stopped sessions do not advance")

	assert.True(t, c.ToggleAnalysis())
	assert.Equal(t, 1, c.Session().Results()[0].Generation, "resuming analyzes the current generation")
}

func TestControllerPaintWhileStoppedRebuildsOnResume(t *testing.T) {
	grid := lattice.NewSimGrid(elementary.NewWithConfig(elementary.Config{Width: 16, Height: 8, Rule: 90}))
	grid.Reset(1)
	session, err := analysis.New(grid, analysis.DefaultOptions(), "correlation")
	require.NoError(t, err)
	c := NewController(grid, session, 1)
	var gen int
	for range 4 {
		gen = c.Step()
	}
	before := c.Session().Results()[0].Rebuilds

	require.False(t, c.ToggleAnalysis())
	states, err := grid.States(gen - 2)
	require.NoError(t, err)
	var value uint8 = 1
	if !states[5].Empty {
		value = 0
	}
	require.NoError(t, c.Paint(gen-2, 5, value))
	require.True(t, c.ToggleAnalysis())

	r := c.Session().Results()[0]
	assert.Equal(t, gen, r.Generation)
	assert.Equal(t, before+1, r.Rebuilds)
	matching := 0
	for g := 0; g <= gen; g++ {
		states, err := grid.States(g)
		require.NoError(t, err)
		for _, st := range states {
			if !st.Empty {
				matching++
			}
		}
	}
	assert.Equal(t, matching, r.Matching)
}

func TestControllerLayoutOneDimensional(t *testing.T) {
	grid := lattice.NewSimGrid(elementary.NewWithConfig(elementary.Config{Width: 16, Height: 8, Rule: 90}))
	grid.Reset(1)
	session, err := analysis.New(grid, analysis.DefaultOptions(), "correlation")
	require.NoError(t, err)
	c := NewController(grid, session, 1)
	for range 3 {
		c.Step()
	}
	l := c.Layout(2)
	assert.True(t, l.OneD)
	assert.Equal(t, 3, l.Generation)
	assert.Equal(t, core.Size{W: 16, H: 8}, l.Size)

	gen, idx, ok := l.CellAt(2*5, 2*1)
	require.True(t, ok)
	require.NoError(t, c.Paint(gen, idx, 1))
	states, err := grid.States(2)
	require.NoError(t, err)
	assert.Equal(t, 1, states[5].Value)
}
