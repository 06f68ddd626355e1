package analysis

import (
	"fmt"
	"sync"
)

// EditKind tells what an interactive edit does.
type EditKind int

const (
	// EditDraw reports that the user changed a cell on the grid.
	EditDraw EditKind = iota
	// EditPin adds a cell to the pinned set.
	EditPin
	// EditUnpin removes a cell from the pinned set.
	EditUnpin
	// EditClearPins empties the pinned set.
	EditClearPins
)

func (k EditKind) String() string {
	switch k {
	case EditDraw:
		return "draw"
	case EditPin:
		return "pin"
	case EditUnpin:
		return "unpin"
	case EditClearPins:
		return "clear-pins"
	default:
		return fmt.Sprintf("EditKind(%d)", int(k))
	}
}

// Edit is a message posted by the interactive goroutine.
type Edit struct {
	Kind  EditKind
	Index int
}

// Draw returns the edit for a cell the user drew on.
func Draw(index int) Edit { return Edit{Kind: EditDraw, Index: index} }

// Pin returns the edit pinning a cell.
func Pin(index int) Edit { return Edit{Kind: EditPin, Index: index} }

// Unpin returns the edit unpinning a cell.
func Unpin(index int) Edit { return Edit{Kind: EditUnpin, Index: index} }

// ClearPins returns the edit removing every pin.
func ClearPins() Edit { return Edit{Kind: EditClearPins} }

// EditQueue carries edits from the interactive goroutine to the analysis
// goroutine, which drains it at the start of each generation.
type EditQueue struct {
	mu    sync.Mutex
	edits []Edit
}

// Post enqueues e.
func (q *EditQueue) Post(e Edit) {
	q.mu.Lock()
	q.edits = append(q.edits, e)
	q.mu.Unlock()
}

// Drain removes and returns every queued edit in posting order.
func (q *EditQueue) Drain() []Edit {
	q.mu.Lock()
	defer q.mu.Unlock()
	edits := q.edits
	q.edits = nil
	return edits
}

// Len returns the number of queued edits.
func (q *EditQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.edits)
}

// Clear drops every queued edit.
func (q *EditQueue) Clear() {
	q.mu.Lock()
	q.edits = nil
	q.mu.Unlock()
}
