package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ca-fractal/internal/analysis"
	"ca-fractal/internal/core"
	"ca-fractal/internal/lattice"
)

func TestResultLines(t *testing.T) {
	lines := ResultLines([]analysis.Result{
		{Statistic: "box"},
		{Statistic: "correlation", Valid: true, Dimension: 1.5849, StdErr: 0.0123, RSquared: 0.998, FitPoints: 5, Matching: 120, Total: 512, LowConfidence: true},
		{Statistic: "correlation", Valid: true, Insufficient: true, Matching: 3},
		{Statistic: "box", Valid: true, Dimension: 2, Matching: 64, Total: 64, Degenerate: true},
		{Statistic: "topk", Valid: true, Highlight: []int{1, 2, 3}},
		{Statistic: "neighborhood", Valid: true, Histogram: []int{0, 2, 5}},
	}, true)
	assert.Equal(t, []string{
		"analysis off (A to resume)",
		"box: waiting",
		"correlation: D=1.585 ±0.012",
		"  n=120/512 r2=0.998 LOW",
		"correlation: too few points (n=3)",
		"box: D=2.000",
		"  n=64/64 degenerate",
		"topk: 3 cells marked",
		"neighborhood: [0 2 5]",
	}, lines)
}

func TestAdjustClampsAndRounds(t *testing.T) {
	trim := core.ParameterControl{Key: "tail_trim", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 0.9, HasMin: true, HasMax: true}
	v, ok := adjust(trim, 0.25, 1)
	require.True(t, ok)
	assert.InDelta(t, 0.30, v, 1e-12)
	_, ok = adjust(trim, 0, -1)
	assert.False(t, ok, "already at minimum")
	v, ok = adjust(trim, 0.88, 1)
	require.True(t, ok)
	assert.Equal(t, 0.9, v)

	k := core.ParameterControl{Key: "top_k", Type: core.ParamTypeInt, Step: 0, Min: 0, HasMin: true}
	v, ok = adjust(k, 3, -1)
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
	_, ok = adjust(k, 3, 0)
	assert.False(t, ok)

	assert.Equal(t, "0.30", formatValue(trim, 0.3))
	assert.Equal(t, "7", formatValue(k, 7))
}

func TestApplyReachesSession(t *testing.T) {
	g := lattice.NewMemGrid(lattice.MemGridConfig{Size: core.Size{W: 4, H: 4}})
	s, err := analysis.New(g, analysis.DefaultOptions(), "correlation", "topk")
	require.NoError(t, err)

	var src Source = s
	controls := map[string]core.ParameterControl{}
	for _, c := range src.ParameterControls() {
		controls[c.Key] = c
	}
	require.Contains(t, controls, "tail_trim")
	require.Contains(t, controls, "top_k")

	cur, ok := src.ParameterValue("tail_trim")
	require.True(t, ok)
	target, ok := adjust(controls["tail_trim"], cur, -1)
	require.True(t, ok)
	require.True(t, apply(src, controls["tail_trim"], target))
	got, _ := src.ParameterValue("tail_trim")
	assert.InDelta(t, 0.20, got, 1e-12)

	require.True(t, apply(src, controls["top_k"], 4))
	got, _ = src.ParameterValue("top_k")
	assert.Equal(t, 4.0, got)

	assert.False(t, apply(src, core.ParameterControl{Key: "label", Type: core.ParamTypeString}, 1))
}

func TestLayoutMapsPixelsToCells(t *testing.T) {
	plane := Layout{Size: core.Size{W: 10, H: 5}, Scale: 3, Generation: 7}
	gen, idx, ok := plane.CellAt(14, 7)
	require.True(t, ok)
	assert.Equal(t, 7, gen)
	assert.Equal(t, 2*10+4, idx)
	x, y := plane.Origin(idx)
	assert.Equal(t, [2]int{12, 6}, [2]int{x, y})
	_, _, ok = plane.CellAt(30, 0)
	assert.False(t, ok)
	assert.Equal(t, 30, plane.Width())
	assert.Equal(t, 15, plane.Height())

	strip := Layout{Size: core.Size{W: 10, H: 8}, Scale: 2, OneD: true, Generation: 3}
	gen, idx, ok = strip.CellAt(9, 5)
	require.True(t, ok)
	assert.Equal(t, 1, gen, "display row 2 is two generations back")
	assert.Equal(t, 4, idx)
	_, _, ok = strip.CellAt(0, 9)
	assert.False(t, ok, "rows below generation 0 hold nothing")
	x, y = strip.Origin(4)
	assert.Equal(t, [2]int{8, 0}, [2]int{x, y})
}
