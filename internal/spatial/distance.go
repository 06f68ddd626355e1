package spatial

// DistanceHistogram counts unordered pairs of predicate-matching cells by
// their exact squared Euclidean distance. Bin d holds the number of pairs
// exactly sqrt(d) apart; bin 0 stays zero unless two sampled cells share a
// position.
type DistanceHistogram struct {
	pred  Predicate
	bins  []int
	total int
}

// NewDistanceHistogram sizes the histogram for a window whose cells differ
// by at most maxRowDelta rows and maxColDelta columns.
func NewDistanceHistogram(maxRowDelta, maxColDelta int, p Predicate) *DistanceHistogram {
	if maxRowDelta < 0 {
		maxRowDelta = 0
	}
	if maxColDelta < 0 {
		maxColDelta = 0
	}
	return &DistanceHistogram{
		pred: p,
		bins: make([]int, maxRowDelta*maxRowDelta+maxColDelta*maxColDelta+1),
	}
}

// Predicate returns the predicate selecting counted cells.
func (h *DistanceHistogram) Predicate() Predicate { return h.pred }

// Len returns the number of bins.
func (h *DistanceHistogram) Len() int { return len(h.bins) }

// MaxDistSquared returns the largest representable squared distance.
func (h *DistanceHistogram) MaxDistSquared() int { return len(h.bins) - 1 }

// Bin returns the count at squared distance d.
func (h *DistanceHistogram) Bin(d int) int {
	if d < 0 || d >= len(h.bins) {
		return 0
	}
	return h.bins[d]
}

// Bins returns a copy of the bins.
func (h *DistanceHistogram) Bins() []int { return append([]int(nil), h.bins...) }

// Total returns the sum of all bins.
func (h *DistanceHistogram) Total() int { return h.total }

// Clear zeroes every bin.
func (h *DistanceHistogram) Clear() {
	clear(h.bins)
	h.total = 0
}

// Clone returns an independent copy.
func (h *DistanceHistogram) Clone() *DistanceHistogram {
	return &DistanceHistogram{pred: h.pred, bins: h.Bins(), total: h.total}
}

// Equal reports whether both histograms hold the same counts. Trailing
// zero bins are ignored.
func (h *DistanceHistogram) Equal(o *DistanceHistogram) bool {
	if h.total != o.total {
		return false
	}
	n := max(len(h.bins), len(o.bins))
	for d := 0; d < n; d++ {
		if h.Bin(d) != o.Bin(d) {
			return false
		}
	}
	return true
}

// RebuildFull recounts every unordered pair of matching cells. O(n²).
func (h *DistanceHistogram) RebuildFull(cells []SampledCell) {
	h.Clear()
	matching := h.filter(cells)
	for i := 1; i < len(matching); i++ {
		for j := 0; j < i; j++ {
			h.adjust(matching[i], matching[j], 1)
		}
	}
}

// AddRow counts the pairs a newly appended row forms with the cells already
// present and among its own cells. existing must not contain newRow.
func (h *DistanceHistogram) AddRow(newRow, existing []SampledCell) {
	h.pairRow(newRow, existing, 1)
}

// RemoveRow uncounts every pair that includes a cell of oldRow. remaining
// holds every other cell still in the window; call it before the row is
// evicted.
func (h *DistanceHistogram) RemoveRow(oldRow, remaining []SampledCell) {
	h.pairRow(oldRow, remaining, -1)
}

func (h *DistanceHistogram) pairRow(row, others []SampledCell, delta int) {
	rowMatching := h.filter(row)
	if len(rowMatching) == 0 {
		return
	}
	otherMatching := h.filter(others)
	for i, c := range rowMatching {
		for _, o := range otherMatching {
			h.adjust(c, o, delta)
		}
		for _, prev := range rowMatching[:i] {
			h.adjust(c, prev, delta)
		}
	}
}

func (h *DistanceHistogram) filter(cells []SampledCell) []SampledCell {
	out := make([]SampledCell, 0, len(cells))
	for _, c := range cells {
		if h.pred.MatchesCell(c) {
			out = append(out, c)
		}
	}
	return out
}

func (h *DistanceHistogram) adjust(a, b SampledCell, delta int) {
	dr := a.Row - b.Row
	dc := a.Col - b.Col
	d := dr*dr + dc*dc
	if d >= len(h.bins) {
		grown := make([]int, d+1)
		copy(grown, h.bins)
		h.bins = grown
	}
	h.bins[d] += delta
	h.total += delta
}

// PairCount returns C(n, 2).
func PairCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}
