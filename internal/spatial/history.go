package spatial

import (
	"errors"
	"fmt"

	"ca-fractal/internal/lattice"
)

// BufferState is the fill state of a HistoryBuffer.
type BufferState int

const (
	// BufferEmpty holds no rows.
	BufferEmpty BufferState = iota
	// BufferFilling holds fewer rows than its capacity.
	BufferFilling
	// BufferFull holds exactly its capacity; appends must evict first.
	BufferFull
)

func (s BufferState) String() string {
	switch s {
	case BufferEmpty:
		return "empty"
	case BufferFilling:
		return "filling"
	case BufferFull:
		return "full"
	default:
		return fmt.Sprintf("BufferState(%d)", int(s))
	}
}

var (
	// ErrRowWidth is returned when a row does not match the buffer width.
	ErrRowWidth = errors.New("spatial: row width mismatch")
	// ErrBufferFull is returned by Append when the oldest row was not evicted.
	ErrBufferFull = errors.New("spatial: history buffer full")
)

// HistoryBuffer is the sliding window of the most recent rows of a 1-D
// automaton, stored oldest first in one flat slice. Appends and evictions
// cost O(width) amortized: evicted rows are skipped by advancing an offset
// and the dead prefix is reclaimed once it reaches the live capacity.
type HistoryBuffer struct {
	width    int
	capacity int
	cells    []SampledCell
	head     int
}

// NewHistoryBuffer returns an empty buffer of capacity rows of width cells.
func NewHistoryBuffer(width, capacity int) *HistoryBuffer {
	if width < 1 {
		width = 1
	}
	if capacity < 1 {
		capacity = 1
	}
	return &HistoryBuffer{width: width, capacity: capacity}
}

// Width returns the number of cells per row.
func (b *HistoryBuffer) Width() int { return b.width }

// Capacity returns the maximum number of rows.
func (b *HistoryBuffer) Capacity() int { return b.capacity }

// Rows returns the number of buffered rows.
func (b *HistoryBuffer) Rows() int { return (len(b.cells) - b.head) / b.width }

// Len returns the number of buffered cells.
func (b *HistoryBuffer) Len() int { return len(b.cells) - b.head }

// State reports whether the buffer is empty, filling or full.
func (b *HistoryBuffer) State() BufferState {
	switch rows := b.Rows(); {
	case rows == 0:
		return BufferEmpty
	case rows < b.capacity:
		return BufferFilling
	default:
		return BufferFull
	}
}

// Cells returns the buffered cells, oldest row first. The slice aliases the
// buffer and is only valid until the next mutation.
func (b *HistoryBuffer) Cells() []SampledCell { return b.cells[b.head:] }

// Oldest returns the oldest row, or nil when empty.
func (b *HistoryBuffer) Oldest() []SampledCell {
	if b.Rows() == 0 {
		return nil
	}
	return b.cells[b.head : b.head+b.width]
}

// Newest returns the newest row, or nil when empty.
func (b *HistoryBuffer) Newest() []SampledCell {
	if b.Rows() == 0 {
		return nil
	}
	return b.cells[len(b.cells)-b.width:]
}

// AfterOldest returns every buffered cell except the oldest row.
func (b *HistoryBuffer) AfterOldest() []SampledCell {
	if b.Rows() == 0 {
		return nil
	}
	return b.cells[b.head+b.width:]
}

// NewestGeneration returns the generation of the newest row.
func (b *HistoryBuffer) NewestGeneration() (int, bool) {
	row := b.Newest()
	if row == nil {
		return 0, false
	}
	return row[0].Row, true
}

// Append adds row as the newest row. The buffer must not be full.
func (b *HistoryBuffer) Append(row []SampledCell) error {
	if len(row) != b.width {
		return fmt.Errorf("append %d cells to width %d: %w", len(row), b.width, ErrRowWidth)
	}
	if b.State() == BufferFull {
		return ErrBufferFull
	}
	b.cells = append(b.cells, row...)
	return nil
}

// EvictOldest drops the oldest row and returns a copy of it.
func (b *HistoryBuffer) EvictOldest() []SampledCell {
	old := b.Oldest()
	if old == nil {
		return nil
	}
	evicted := append([]SampledCell(nil), old...)
	b.head += b.width
	if b.head >= b.capacity*b.width {
		live := copy(b.cells, b.cells[b.head:])
		b.cells = b.cells[:live]
		b.head = 0
	}
	return evicted
}

// Replace discards the buffer contents and loads rows, oldest first. Only
// the newest Capacity rows are kept.
func (b *HistoryBuffer) Replace(rows [][]SampledCell) error {
	if len(rows) > b.capacity {
		rows = rows[len(rows)-b.capacity:]
	}
	cells := make([]SampledCell, 0, b.capacity*b.width)
	for _, row := range rows {
		if len(row) != b.width {
			return fmt.Errorf("replace with %d-cell row at width %d: %w", len(row), b.width, ErrRowWidth)
		}
		cells = append(cells, row...)
	}
	b.cells = cells
	b.head = 0
	return nil
}

// Reset empties the buffer.
func (b *HistoryBuffer) Reset() {
	b.cells = b.cells[:0]
	b.head = 0
}

// AppendNewestRow samples generation and appends it, evicting the oldest row
// first when full. It returns the appended row and the evicted row (nil when
// nothing was evicted).
func (b *HistoryBuffer) AppendNewestRow(s *Sampler, generation int) (added, evicted []SampledCell, err error) {
	row, err := s.Sample(generation)
	if err != nil {
		return nil, nil, err
	}
	if len(row) != b.width {
		return nil, nil, fmt.Errorf("sampled %d cells at width %d: %w", len(row), b.width, ErrRowWidth)
	}
	if b.State() == BufferFull {
		evicted = b.EvictOldest()
	}
	if err := b.Append(row); err != nil {
		return nil, evicted, err
	}
	return row, evicted, nil
}

// DetectExternalEdit compares the buffered row for generation-1 with what the
// grid currently holds for that generation. Users edit the row that was just
// displayed, so a difference there means the window is stale. It returns
// false when there is nothing to compare.
func (b *HistoryBuffer) DetectExternalEdit(s *Sampler, generation int) (bool, error) {
	newest := b.Newest()
	if newest == nil || newest[0].Row != generation-1 {
		return false, nil
	}
	current, err := s.Sample(generation - 1)
	if err != nil {
		return false, err
	}
	if len(current) != len(newest) {
		return true, nil
	}
	for i := range current {
		if current[i].Value != newest[i].Value || current[i].Empty != newest[i].Empty {
			return true, nil
		}
	}
	return false, nil
}

// Refill rebuilds the window from the grid's retained history ending at
// generation, oldest first.
func (b *HistoryBuffer) Refill(s *Sampler, generation int) error {
	g := s.Grid()
	first := max(generation-b.capacity+1, g.Generation()-g.History()+1, 0)
	if first > generation {
		return fmt.Errorf("refill at generation %d: %w", generation, lattice.ErrGenerationUnavailable)
	}
	loaded := make([][]SampledCell, 0, generation-first+1)
	for gen := first; gen <= generation; gen++ {
		row, err := s.Sample(gen)
		if err != nil {
			return err
		}
		loaded = append(loaded, row)
	}
	return b.Replace(loaded)
}
