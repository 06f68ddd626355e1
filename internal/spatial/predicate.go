// Package spatial holds the incremental spatial-statistics primitives: cell
// predicates and sampling, the sliding history window for 1-D automata, the
// pairwise squared-distance histogram, the correlation-dimension fit, the
// single-scale box-counting estimate and neighborhood-size selection.
//
// None of the types here lock internally; owners serialise access.
package spatial

import (
	"fmt"
	"strconv"
	"strings"
)

// PredicateKind selects which cells count as part of the analysed set.
type PredicateKind int

const (
	// AllCells matches every cell.
	AllCells PredicateKind = iota
	// AllOccupied matches every non-empty cell.
	AllOccupied
	// EmptyOnly matches empty cells.
	EmptyOnly
	// ExactState matches cells holding one specific integer value.
	ExactState
)

// Predicate decides membership of a cell in the analysed set.
type Predicate struct {
	Kind  PredicateKind
	State int
}

// Occupied is the predicate used when nothing else is configured.
var Occupied = Predicate{Kind: AllOccupied}

// Matches reports whether a cell with the given value and emptiness is in
// the set.
func (p Predicate) Matches(value int, empty bool) bool {
	switch p.Kind {
	case AllCells:
		return true
	case AllOccupied:
		return !empty
	case EmptyOnly:
		return empty
	case ExactState:
		return value == p.State
	default:
		return false
	}
}

// MatchesCell is Matches applied to a sampled cell.
func (p Predicate) MatchesCell(c SampledCell) bool {
	return p.Matches(c.Value, c.Empty)
}

// Resolve returns the predicate to use on a grid. ExactState needs integer
// values; on binary grids it falls back to EmptyOnly for state 0 and
// AllOccupied otherwise. The second result reports whether a fallback
// happened.
func (p Predicate) Resolve(integerValued bool) (Predicate, bool) {
	if p.Kind != ExactState || integerValued {
		return p, false
	}
	if p.State == 0 {
		return Predicate{Kind: EmptyOnly}, true
	}
	return Predicate{Kind: AllOccupied}, true
}

// String renders the predicate in the form accepted by ParsePredicate.
func (p Predicate) String() string {
	switch p.Kind {
	case AllCells:
		return "all"
	case AllOccupied:
		return "occupied"
	case EmptyOnly:
		return "empty"
	case ExactState:
		return "state=" + strconv.Itoa(p.State)
	default:
		return fmt.Sprintf("predicate(%d)", int(p.Kind))
	}
}

// ParsePredicate parses "all", "occupied", "empty" or "state=N".
func ParsePredicate(s string) (Predicate, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "all":
		return Predicate{Kind: AllCells}, nil
	case "occupied", "":
		return Predicate{Kind: AllOccupied}, nil
	case "empty":
		return Predicate{Kind: EmptyOnly}, nil
	}
	if rest, ok := strings.CutPrefix(s, "state="); ok {
		v, err := strconv.Atoi(rest)
		if err != nil {
			return Predicate{}, fmt.Errorf("invalid state in predicate %q: %w", s, err)
		}
		return Predicate{Kind: ExactState, State: v}, nil
	}
	return Predicate{}, fmt.Errorf("unknown predicate %q", s)
}
