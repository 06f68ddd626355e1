package spatial

import "math"

// CountMatching returns the number of cells matching p.
func CountMatching(cells []SampledCell, p Predicate) int {
	n := 0
	for _, c := range cells {
		if p.MatchesCell(c) {
			n++
		}
	}
	return n
}

// Occupancy is a running count of predicate-matching cells.
type Occupancy struct {
	pred  Predicate
	count int
}

// NewOccupancy returns a zero count for p.
func NewOccupancy(p Predicate) *Occupancy { return &Occupancy{pred: p} }

// Predicate returns the counted predicate.
func (o *Occupancy) Predicate() Predicate { return o.pred }

// Count returns the current count.
func (o *Occupancy) Count() int { return o.count }

// Rescan replaces the count with a full count over cells.
func (o *Occupancy) Rescan(cells []SampledCell) {
	o.count = CountMatching(cells, o.pred)
}

// Slide applies count += matches(added) - matches(removed).
func (o *Occupancy) Slide(added, removed []SampledCell) {
	o.count += CountMatching(added, o.pred) - CountMatching(removed, o.pred)
}

// Reset zeroes the count.
func (o *Occupancy) Reset() { o.count = 0 }

// BoxDimension is the single-scale box-counting estimate for n matching
// cells out of total on a rows x cols window: log(n)/log(max(rows, cols)).
// Near-empty and near-full counts short-circuit to 0 and 2; the n == 0 and
// n == total checks run first so tiny windows resolve the same way every
// time.
func BoxDimension(n, total, rows, cols int) float64 {
	switch {
	case n <= 0:
		return 0
	case n >= total:
		return 2
	case n == 1:
		return 0
	case n == total-1:
		return 2
	}
	span := rows
	if cols > span {
		span = cols
	}
	if span < 2 {
		return 0
	}
	d := math.Log(float64(n)) / math.Log(float64(span))
	return math.Min(2, math.Max(0, d))
}

// IsDegenerate reports whether BoxDimension short-circuits for n.
func IsDegenerate(n, total int) bool {
	return n <= 1 || n >= total-1
}

// Census partitions a cell set by predicate kind.
type Census struct {
	Total    int
	Occupied int
	Empty    int
	// States counts cells per value; only meaningful for integer grids.
	States map[int]int
}

// CountAll returns the census of cells.
func CountAll(cells []SampledCell) Census {
	c := Census{Total: len(cells), States: make(map[int]int)}
	for _, cell := range cells {
		if cell.Empty {
			c.Empty++
		} else {
			c.Occupied++
		}
		c.States[cell.Value]++
	}
	return c
}
