package spatial

import (
	"sort"

	"ca-fractal/internal/lattice"
)

// CellDegree is a matching cell together with its neighborhood size.
type CellDegree struct {
	Index  int
	Row    int
	Col    int
	Degree int
}

// Degrees returns the matching cells of one generation, in enumeration
// order, with the neighbor count the grid reports for each. cells must be
// a full generation as returned by Sampler.Sample.
func Degrees(g lattice.Grid, cells []SampledCell, p Predicate) []CellDegree {
	out := make([]CellDegree, 0, len(cells))
	for i, c := range cells {
		if !p.MatchesCell(c) {
			continue
		}
		out = append(out, CellDegree{Index: i, Row: c.Row, Col: c.Col, Degree: len(g.Neighbors(i))})
	}
	return out
}

// NeighborhoodCounts maps cell index to neighborhood size.
func NeighborhoodCounts(degrees []CellDegree) map[int]int {
	counts := make(map[int]int, len(degrees))
	for _, d := range degrees {
		counts[d.Index] = d.Degree
	}
	return counts
}

// NeighborhoodHistogram tallies neighborhood sizes; the result has one bin
// per size up to the largest observed.
func NeighborhoodHistogram(counts map[int]int) []int {
	maxDeg := -1
	for _, d := range counts {
		if d > maxDeg {
			maxDeg = d
		}
	}
	hist := make([]int, maxDeg+1)
	for _, d := range counts {
		hist[d]++
	}
	return hist
}

// SelectTopK returns the k cells with the largest neighborhoods. Cells are
// stably sorted ascending by degree and the last k are returned in that
// order, so among equal degrees later-enumerated cells win. Fewer than k
// cells yields all of them.
func SelectTopK(degrees []CellDegree, k int) []CellDegree {
	if k <= 0 {
		return nil
	}
	sorted := append([]CellDegree(nil), degrees...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Degree < sorted[j].Degree })
	if k > len(sorted) {
		k = len(sorted)
	}
	return sorted[len(sorted)-k:]
}

// ExpandNeighbors returns the selected indices followed by their neighbors,
// deduplicated in first-seen order.
func ExpandNeighbors(g lattice.Grid, selected []int) []int {
	seen := make(map[int]struct{}, len(selected)*9)
	out := make([]int, 0, len(selected)*9)
	add := func(i int) {
		if _, ok := seen[i]; ok {
			return
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	for _, i := range selected {
		add(i)
	}
	for _, i := range selected {
		for _, n := range g.Neighbors(i) {
			add(n)
		}
	}
	return out
}
