package spatial

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ca-fractal/internal/core"
	"ca-fractal/internal/lattice"
)

func oneDGrid(t *testing.T, width, keep int) *lattice.MemGrid {
	t.Helper()
	return lattice.NewMemGrid(lattice.MemGridConfig{
		Size:           core.Size{W: width},
		OneDimensional: true,
		Keep:           keep,
	})
}

func randomRow(r *rand.Rand, width int, density float64) []int {
	row := make([]int, width)
	for i := range row {
		if r.Float64() < density {
			row[i] = 1
		}
	}
	return row
}

func TestParsePredicate(t *testing.T) {
	cases := map[string]Predicate{
		"all":      {Kind: AllCells},
		"":         Occupied,
		"Occupied": Occupied,
		"empty":    {Kind: EmptyOnly},
		"state=2":  {Kind: ExactState, State: 2},
	}
	for in, want := range cases {
		got, err := ParsePredicate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		if in != "" && in != "Occupied" {
			assert.Equal(t, in, got.String())
		}
	}
	_, err := ParsePredicate("state=x")
	assert.Error(t, err)
	_, err = ParsePredicate("bogus")
	assert.Error(t, err)
}

func TestPredicateResolveFallsBackOnBinaryGrids(t *testing.T) {
	p, fell := Predicate{Kind: ExactState, State: 0}.Resolve(false)
	assert.True(t, fell)
	assert.Equal(t, EmptyOnly, p.Kind)

	p, fell = Predicate{Kind: ExactState, State: 3}.Resolve(false)
	assert.True(t, fell)
	assert.Equal(t, AllOccupied, p.Kind)

	p, fell = Predicate{Kind: ExactState, State: 3}.Resolve(true)
	assert.False(t, fell)
	assert.Equal(t, ExactState, p.Kind)
}

func TestSamplerEncodesBinaryAndIntegerGrids(t *testing.T) {
	values := []int{0, 2, 1, 0}

	binary := lattice.NewMemGrid(lattice.MemGridConfig{Size: core.Size{W: 2, H: 2}})
	_, err := binary.Push(values)
	require.NoError(t, err)
	cells, err := NewSampler(binary).Sample(0)
	require.NoError(t, err)
	assert.Equal(t, []SampledCell{
		{Row: 0, Col: 0, Value: 0, Empty: true},
		{Row: 0, Col: 1, Value: 1},
		{Row: 1, Col: 0, Value: 1},
		{Row: 1, Col: 1, Value: 0, Empty: true},
	}, cells)

	integer := lattice.NewMemGrid(lattice.MemGridConfig{Size: core.Size{W: 2, H: 2}, IntegerValued: true})
	_, err = integer.Push(values)
	require.NoError(t, err)
	cells, err = NewSampler(integer).Sample(0)
	require.NoError(t, err)
	assert.Equal(t, 2, cells[1].Value)

	_, err = NewSampler(integer).Sample(5)
	assert.ErrorIs(t, err, lattice.ErrGenerationUnavailable)
}

func TestSamplerUsesGenerationAsRowOnOneDimensionalGrids(t *testing.T) {
	g := oneDGrid(t, 3, 8)
	for i := 0; i < 3; i++ {
		_, err := g.Push([]int{1, 0, 1})
		require.NoError(t, err)
	}
	cells, err := NewSampler(g).Sample(1)
	require.NoError(t, err)
	for i, c := range cells {
		assert.Equal(t, 1, c.Row)
		assert.Equal(t, i, c.Col)
	}
}

func TestHistoryBufferStates(t *testing.T) {
	b := NewHistoryBuffer(2, 3)
	assert.Equal(t, BufferEmpty, b.State())
	assert.Nil(t, b.Oldest())
	assert.Nil(t, b.EvictOldest())

	row := func(gen int) []SampledCell {
		return []SampledCell{{Row: gen, Col: 0, Value: gen}, {Row: gen, Col: 1, Value: gen}}
	}
	require.NoError(t, b.Append(row(0)))
	assert.Equal(t, BufferFilling, b.State())
	require.NoError(t, b.Append(row(1)))
	require.NoError(t, b.Append(row(2)))
	assert.Equal(t, BufferFull, b.State())
	assert.ErrorIs(t, b.Append(row(3)), ErrBufferFull)
	assert.ErrorIs(t, b.Append(row(3)[:1]), ErrRowWidth)

	for gen := 3; gen < 20; gen++ {
		evicted := b.EvictOldest()
		assert.Equal(t, gen-3, evicted[0].Row)
		require.NoError(t, b.Append(row(gen)))
		assert.Equal(t, 3, b.Rows())
		assert.Equal(t, gen-2, b.Oldest()[0].Row)
		assert.Equal(t, gen, b.Newest()[0].Row)
		assert.Len(t, b.AfterOldest(), 4)
	}
	newest, ok := b.NewestGeneration()
	require.True(t, ok)
	assert.Equal(t, 19, newest)

	b.Reset()
	assert.Equal(t, BufferEmpty, b.State())
}

func TestHistoryBufferReplaceKeepsNewestRows(t *testing.T) {
	b := NewHistoryBuffer(1, 2)
	rows := [][]SampledCell{{{Row: 0}}, {{Row: 1}}, {{Row: 2}}}
	require.NoError(t, b.Replace(rows))
	assert.Equal(t, []SampledCell{{Row: 1}, {Row: 2}}, b.Cells())
	assert.ErrorIs(t, b.Replace([][]SampledCell{{{}, {}}}), ErrRowWidth)
}

func TestBoxDimensionScenario(t *testing.T) {
	cells := make([]SampledCell, 64)
	for i := range cells {
		cells[i] = SampledCell{Row: i / 8, Col: i % 8, Empty: i >= 10, Value: 1}
		if cells[i].Empty {
			cells[i].Value = 0
		}
	}
	n := CountMatching(cells, Occupied)
	require.Equal(t, 10, n)
	assert.InDelta(t, math.Log(10)/math.Log(8), BoxDimension(n, 64, 8, 8), 1e-12)
	assert.InDelta(t, 1.107, BoxDimension(n, 64, 8, 8), 1e-3)
}

func TestBoxDimensionDegenerateBounds(t *testing.T) {
	assert.Equal(t, 0.0, BoxDimension(0, 64, 8, 8))
	assert.Equal(t, 0.0, BoxDimension(1, 64, 8, 8))
	assert.Equal(t, 2.0, BoxDimension(63, 64, 8, 8))
	assert.Equal(t, 2.0, BoxDimension(64, 64, 8, 8))
	for n := 0; n <= 64; n++ {
		d := BoxDimension(n, 64, 8, 8)
		assert.GreaterOrEqual(t, d, 0.0)
		assert.LessOrEqual(t, d, 2.0)
	}
	assert.True(t, IsDegenerate(1, 64))
	assert.False(t, IsDegenerate(10, 64))
}

func TestOccupancySlide(t *testing.T) {
	o := NewOccupancy(Occupied)
	o.Rescan([]SampledCell{{Value: 1}, {Empty: true}, {Value: 1}})
	assert.Equal(t, 2, o.Count())
	o.Slide([]SampledCell{{Value: 1}}, []SampledCell{{Value: 1}, {Value: 1}})
	assert.Equal(t, 1, o.Count())
	o.Reset()
	assert.Zero(t, o.Count())
}

func TestPredicatePartition(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	g := lattice.NewMemGrid(lattice.MemGridConfig{Size: core.Size{W: 9, H: 7}, IntegerValued: true})
	values := make([]int, 63)
	for i := range values {
		values[i] = r.Intn(3)
	}
	_, err := g.Push(values)
	require.NoError(t, err)
	cells, err := NewSampler(g).Sample(0)
	require.NoError(t, err)

	occupied := CountMatching(cells, Occupied)
	empty := CountMatching(cells, Predicate{Kind: EmptyOnly})
	assert.Equal(t, len(cells), occupied+empty)
	assert.Equal(t, len(cells), CountMatching(cells, Predicate{Kind: AllCells}))

	sum := 0
	for v := 0; v < 3; v++ {
		sum += CountMatching(cells, Predicate{Kind: ExactState, State: v})
	}
	assert.Equal(t, len(cells), sum)

	census := CountAll(cells)
	assert.Equal(t, occupied, census.Occupied)
	assert.Equal(t, empty, census.Empty)
	assert.Equal(t, census.Total, census.States[0]+census.States[1]+census.States[2])
}

func TestDistanceHistogramCollinearScenario(t *testing.T) {
	h := NewDistanceHistogram(0, 2, Occupied)
	h.RebuildFull([]SampledCell{{Row: 0, Col: 0, Value: 1}, {Row: 0, Col: 1, Value: 1}, {Row: 0, Col: 2, Value: 1}})
	assert.Equal(t, []int{0, 2, 0, 0, 1}, h.Bins())
	assert.Equal(t, 3, h.Total())
	assert.Equal(t, PairCount(3), h.Total())
}

func TestDistanceHistogramGrowsForUnexpectedDistances(t *testing.T) {
	h := NewDistanceHistogram(0, 0, Predicate{Kind: AllCells})
	h.RebuildFull([]SampledCell{{Row: 0, Col: 0}, {Row: 3, Col: 4}})
	assert.Equal(t, 1, h.Bin(25))
	assert.Equal(t, 26, h.Len())
}

// Sliding a window row by row must match a full rebuild of the same window.
func TestDistanceHistogramIncrementalMatchesRebuild(t *testing.T) {
	const width, capacity = 6, 4
	r := rand.New(rand.NewSource(11))
	g := oneDGrid(t, width, 16)
	s := NewSampler(g)
	b := NewHistoryBuffer(width, capacity)
	h := NewDistanceHistogram(capacity-1, width-1, Occupied)

	for gen := 0; gen < 15; gen++ {
		_, err := g.Push(randomRow(r, width, 0.5))
		require.NoError(t, err)
		row, err := s.Sample(gen)
		require.NoError(t, err)
		if b.State() == BufferFull {
			h.RemoveRow(b.Oldest(), b.AfterOldest())
			b.EvictOldest()
		}
		h.AddRow(row, b.Cells())
		require.NoError(t, b.Append(row))

		full := NewDistanceHistogram(capacity-1, width-1, Occupied)
		full.RebuildFull(b.Cells())
		if diff := cmp.Diff(full.Bins(), h.Bins()); diff != "" {
			t.Fatalf("generation %d: incremental histogram differs (-full +incremental):\n%s", gen, diff)
		}
		assert.True(t, full.Equal(h))
		assert.Equal(t, PairCount(CountMatching(b.Cells(), Occupied)), h.Total())
	}
}

func TestHistoryBufferDetectsEditBehindNewest(t *testing.T) {
	const width = 4
	g := oneDGrid(t, width, width)
	s := NewSampler(g)
	b := NewHistoryBuffer(width, width)
	rows := [][]int{{1, 0, 0, 1}, {0, 1, 1, 0}, {1, 1, 0, 0}, {0, 0, 1, 1}}
	for gen, row := range rows {
		_, err := g.Push(row)
		require.NoError(t, err)
		_, _, err = b.AppendNewestRow(s, gen)
		require.NoError(t, err)
	}
	require.Equal(t, BufferFull, b.State())

	_, err := g.Push([]int{1, 1, 1, 1})
	require.NoError(t, err)
	edited, err := b.DetectExternalEdit(s, 4)
	require.NoError(t, err)
	assert.False(t, edited)

	require.NoError(t, g.Set(3, 0, 1))
	edited, err = b.DetectExternalEdit(s, 4)
	require.NoError(t, err)
	assert.True(t, edited)

	require.NoError(t, b.Refill(s, 4))
	assert.Equal(t, 4, b.Rows())
	assert.Equal(t, 1, b.Oldest()[0].Row)
	h := NewDistanceHistogram(width-1, width-1, Occupied)
	h.RebuildFull(b.Cells())
	assert.Equal(t, PairCount(CountMatching(b.Cells(), Occupied)), h.Total())
	assert.Equal(t, 1, b.Cells()[2*width].Value, "refill must pick up the edited cell")
}

func TestCorrelationFunction(t *testing.T) {
	bins := make([]int, 17)
	bins[1], bins[3], bins[5], bins[9] = 4, 2, 2, 1
	got := CorrelationFunction(bins)
	want := []CorrelationPoint{
		{math.Log(2) / 2, math.Log(4)},
		{math.Log(4) / 2, math.Log(6)},
		{math.Log(8) / 2, math.Log(8)},
		{math.Log(16) / 2, math.Log(9)},
	}
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i].LogRadius, got[i].LogRadius, 1e-12)
		assert.InDelta(t, want[i].LogCount, got[i].LogCount, 1e-12)
	}

	bins[1] = 0
	assert.Len(t, CorrelationFunction(bins), 3, "zero cumulative counts are skipped")
	assert.Empty(t, CorrelationFunction([]int{0, 5}))
}

func TestTrimTail(t *testing.T) {
	pts := make([]CorrelationPoint, 8)
	assert.Len(t, TrimTail(pts, 0.25, 3), 6)
	assert.Len(t, TrimTail(pts[:4], 0.25, 3), 3)
	assert.Len(t, TrimTail(pts[:3], 0.25, 3), 3)
	assert.Len(t, TrimTail(pts[:2], 0.25, 3), 2)
	assert.Len(t, TrimTail(pts, 0.9, 3), 3)
}

func TestFitRecoversLine(t *testing.T) {
	pts := make([]CorrelationPoint, 6)
	for i := range pts {
		x := float64(i) * 0.5
		pts[i] = CorrelationPoint{LogRadius: x, LogCount: 1.5*x + 0.2}
	}
	res, err := Fit(pts)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, res.Slope, 1e-9)
	assert.InDelta(t, 0.2, res.Intercept, 1e-9)
	assert.InDelta(t, 0, res.StdErr, 1e-9)
	assert.InDelta(t, 1, res.RSquared, 1e-9)
	assert.Equal(t, 6, res.Points)

	pts[2].LogCount += 0.3
	noisy, err := Fit(pts)
	require.NoError(t, err)
	assert.Greater(t, noisy.StdErr, 0.0)
	assert.Less(t, noisy.RSquared, 1.0)

	_, err = Fit(pts[:1])
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestTsonisMinimum(t *testing.T) {
	assert.Equal(t, 630, TsonisMinimum(2))
	assert.Equal(t, 100, TsonisMinimum(0))
}

func TestNeighborhoodOnRing(t *testing.T) {
	g := oneDGrid(t, 8, 1)
	_, err := g.Push([]int{1, 1, 1, 1, 1, 1, 1, 1})
	require.NoError(t, err)
	cells, err := NewSampler(g).Sample(0)
	require.NoError(t, err)

	degrees := Degrees(g, cells, Occupied)
	hist := NeighborhoodHistogram(NeighborhoodCounts(degrees))
	assert.Equal(t, []int{0, 0, 8}, hist)

	top := SelectTopK(degrees, 1)
	require.Len(t, top, 1)
	assert.Equal(t, 2, top[0].Degree)
	assert.Equal(t, 7, top[0].Index, "ties resolve by enumeration order")
}

func TestSelectTopKProperty(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	size := core.Size{W: 10, H: 10}
	g := lattice.NewMemGrid(lattice.MemGridConfig{Size: size, Topology: lattice.NewJittered(1.7, 9)})
	values := make([]int, size.Cells())
	for i := range values {
		if r.Float64() < 0.6 {
			values[i] = 1
		}
	}
	_, err := g.Push(values)
	require.NoError(t, err)
	cells, err := NewSampler(g).Sample(0)
	require.NoError(t, err)
	degrees := Degrees(g, cells, Occupied)

	for _, k := range []int{0, 1, 5, 17, 1000} {
		top := SelectTopK(degrees, k)
		assert.Len(t, top, min(k, len(degrees)), "k=%d", k)
		chosen := map[int]bool{}
		minChosen := math.MaxInt
		for _, c := range top {
			chosen[c.Index] = true
			minChosen = min(minChosen, c.Degree)
		}
		for _, d := range degrees {
			if !chosen[d.Index] {
				assert.LessOrEqual(t, d.Degree, minChosen, "k=%d cell %d", k, d.Index)
			}
		}
	}
}

func TestExpandNeighborsDeduplicates(t *testing.T) {
	g := oneDGrid(t, 6, 1)
	_, err := g.Push(make([]int, 6))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 5, 1, 2, 4}, ExpandNeighbors(g, []int{0, 3}))
	assert.Empty(t, ExpandNeighbors(g, nil))
}
