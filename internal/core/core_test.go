package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedStepPacing(t *testing.T) {
	clock := time.Unix(100, 0)
	f := NewFixedStep(10)
	f.now = func() time.Time { return clock }
	require.Equal(t, 100*time.Millisecond, f.Interval())

	assert.True(t, f.ShouldStep(), "first poll steps")
	assert.False(t, f.ShouldStep())
	clock = clock.Add(60 * time.Millisecond)
	assert.False(t, f.ShouldStep())
	clock = clock.Add(40 * time.Millisecond)
	assert.True(t, f.ShouldStep())

	clock = clock.Add(time.Second)
	assert.True(t, f.ShouldStep())
	assert.True(t, f.ShouldStep(), "one tick of backlog is kept")
	assert.False(t, f.ShouldStep(), "the rest is dropped")

	f.SetTPS(0)
	assert.Equal(t, time.Second/60, f.Interval())
}

func TestByteGrid(t *testing.T) {
	g := NewByteGrid(3, 2)
	assert.Equal(t, Size{W: 3, H: 2}, g.Size())
	require.True(t, g.Set(g.Index(2, 0), 5))
	assert.False(t, g.Set(6, 1))
	assert.Equal(t, uint8(5), g.At(-1, 2), "coordinates wrap")

	copy(g.Row(0), []uint8{1, 2, 3})
	g.ScrollDown()
	assert.Equal(t, []uint8{1, 2, 3, 1, 2, 3}, g.Cells())
	g.Clear()
	assert.Equal(t, make([]uint8, 6), g.Cells())

	assert.Equal(t, Size{W: 1, H: 1}, NewByteGrid(0, -2).Size())
}

func TestRNGIsDeterministic(t *testing.T) {
	a, b := make([]uint8, 64), make([]uint8, 64)
	NewRNG(9).FillDensity(a, 0.5)
	NewRNG(9).FillDensity(b, 0.5)
	assert.Equal(t, a, b)

	NewRNG(9).FillDensity(a, 0)
	assert.Equal(t, make([]uint8, 64), a)
	NewRNG(9).FillDensity(a, 1)
	for _, v := range a {
		assert.Equal(t, uint8(1), v)
	}
	assert.Equal(t, 0, NewRNG(1).IntN(0))
}

func TestParameterControlClamp(t *testing.T) {
	c := ParameterControl{Min: 0, Max: 0.9, HasMin: true, HasMax: true}
	assert.Equal(t, 0.0, c.Clamp(-1))
	assert.Equal(t, 0.9, c.Clamp(2))
	assert.Equal(t, 0.5, c.Clamp(0.5))
	assert.Equal(t, 42.0, ParameterControl{}.Clamp(42))
}

func TestSizeCells(t *testing.T) {
	assert.Equal(t, 12, Size{W: 3, H: 4}.Cells())
	assert.Equal(t, 0, Size{W: -1, H: 4}.Cells())
}
