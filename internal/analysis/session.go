package analysis

import (
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"

	"ca-fractal/internal/core"
	"ca-fractal/internal/lattice"
	"ca-fractal/internal/spatial"
)

// Session runs a set of statistics over one grid. Analyze is driven by one
// goroutine; Post, NotifyExternalEdit, Stop and the accessors are safe from
// any other.
type Session struct {
	id      uuid.UUID
	grid    lattice.Grid
	opts    Options
	stats   []Statistic
	edits   EditQueue
	stopped atomic.Bool
}

// New builds a session running the named statistics, or opts.Statistics
// when no names are given.
func New(g lattice.Grid, opts Options, names ...string) (*Session, error) {
	if g == nil {
		return nil, errors.New("analysis: nil grid")
	}
	opts = opts.withDefaults()
	if len(names) == 0 {
		names = opts.Statistics
	}
	s := &Session{id: uuid.New(), grid: g, opts: opts}
	seen := map[string]bool{}
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		f, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		s.stats = append(s.stats, f(g, opts))
	}
	log().Info("analysis session started", "session", s.id, "statistics", names, "predicate", opts.Predicate.String(),
		"one_dimensional", g.OneDimensional(), "integer_valued", g.IntegerValued())
	return s, nil
}

// ID identifies the session in logs and metrics.
func (s *Session) ID() string { return s.id.String() }

// Grid returns the analyzed grid.
func (s *Session) Grid() lattice.Grid { return s.grid }

// Options returns the effective options.
func (s *Session) Options() Options { return s.opts }

// Statistics returns the statistics in run order.
func (s *Session) Statistics() []Statistic { return append([]Statistic(nil), s.stats...) }

// Statistic returns the statistic registered under name.
func (s *Session) Statistic(name string) (Statistic, bool) {
	for _, st := range s.stats {
		if st.Name() == name {
			return st, true
		}
	}
	return nil, false
}

// Analyze applies queued edits and then runs every statistic for
// generation. Failures of individual statistics are joined; the others
// still run. A stopped session does nothing.
func (s *Session) Analyze(generation int) error {
	if s.stopped.Load() {
		return nil
	}
	s.applyEdits()
	var errs []error
	for _, st := range s.stats {
		if err := st.Analyze(generation); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", st.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (s *Session) applyEdits() {
	edits := s.edits.Drain()
	if len(edits) == 0 {
		return
	}
	drawn := false
	for _, e := range edits {
		switch e.Kind {
		case EditDraw:
			drawn = true
		default:
			for _, st := range s.stats {
				p, ok := st.(Pinner)
				if !ok {
					continue
				}
				switch e.Kind {
				case EditPin:
					p.Pin(e.Index)
				case EditUnpin:
					p.Unpin(e.Index)
				case EditClearPins:
					p.ClearPins()
				}
			}
		}
	}
	if drawn {
		s.NotifyExternalEdit()
	}
	log().Debug("applied edits", "session", s.id, "edits", len(edits), "drawn", drawn)
}

// Post queues an edit for the next Analyze. Edits posted to a stopped
// session are dropped and Post reports false.
func (s *Session) Post(e Edit) bool {
	if s.stopped.Load() {
		return false
	}
	s.edits.Post(e)
	return true
}

// NotifyExternalEdit forces the next Analyze of every statistic onto the
// full rebuild path.
func (s *Session) NotifyExternalEdit() {
	for _, st := range s.stats {
		st.NotifyExternalEdit()
	}
}

// Reset drops all accumulated state and queued edits.
func (s *Session) Reset() {
	s.edits.Clear()
	for _, st := range s.stats {
		st.Reset()
	}
	log().Info("analysis session reset", "session", s.id)
}

// Stop turns analysis off. State already accumulated is left untouched.
func (s *Session) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		s.edits.Clear()
		log().Info("analysis stopped", "session", s.id)
	}
}

// Resume turns analysis back on. Edits made while stopped were never seen,
// so the first Analyze after resuming takes the full rebuild path.
func (s *Session) Resume() {
	if s.stopped.CompareAndSwap(true, false) {
		s.NotifyExternalEdit()
		log().Info("analysis resumed", "session", s.id)
	}
}

// Stopped reports whether analysis is off.
func (s *Session) Stopped() bool { return s.stopped.Load() }

// Results returns the latest result of every statistic in run order.
func (s *Session) Results() []Result {
	out := make([]Result, len(s.stats))
	for i, st := range s.stats {
		out[i] = st.Result()
	}
	return out
}

// Highlight returns the cells the top-k statistic wants marked, if any.
func (s *Session) Highlight() []int {
	if st, ok := s.Statistic("topk"); ok {
		return st.Result().Highlight
	}
	return nil
}

// ParameterSnapshot describes the session for display.
func (s *Session) ParameterSnapshot() core.ParameterSnapshot {
	names := make([]string, len(s.stats))
	for i, st := range s.stats {
		names[i] = st.Name()
	}
	snap := core.ParameterSnapshot{Groups: []core.ParameterGroup{{
		Name: "Analysis",
		Params: []core.Parameter{
			{Key: "session", Label: "Session", Type: core.ParamTypeString, Value: s.ID()},
			{Key: "predicate", Label: "Predicate", Type: core.ParamTypeString, Value: s.opts.Predicate.String()},
			{Key: "max_history", Label: "History", Type: core.ParamTypeInt, Value: strconv.Itoa(s.opts.MaxHistory)},
			{Key: "statistics", Label: "Statistics", Type: core.ParamTypeString, Value: fmt.Sprint(names)},
		},
	}}}
	if c, err := s.Census(); err == nil {
		snap.Groups[0].Params = append(snap.Groups[0].Params, core.Parameter{
			Key: "cells", Label: "Cells", Type: core.ParamTypeString,
			Value: fmt.Sprintf("%d occupied, %d empty", c.Occupied, c.Empty),
		})
	}
	return snap
}

// Census partitions the newest generation of the grid by predicate kind.
func (s *Session) Census() (spatial.Census, error) {
	gen := s.grid.Generation()
	cells, err := spatial.NewSampler(s.grid).Sample(gen)
	if err != nil {
		return spatial.Census{}, err
	}
	return spatial.CountAll(cells), nil
}

// ParameterControls lists the tunables of the running statistics.
func (s *Session) ParameterControls() []core.ParameterControl {
	var controls []core.ParameterControl
	if _, ok := s.Statistic("correlation"); ok {
		controls = append(controls,
			core.ParameterControl{Key: "tail_trim", Label: "Tail trim", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 0.9, HasMin: true, HasMax: true},
			core.ParameterControl{Key: "min_fit_points", Label: "Min fit points", Type: core.ParamTypeInt, Step: 1, Min: 2, HasMin: true},
		)
	}
	if _, ok := s.Statistic("topk"); ok {
		controls = append(controls, core.ParameterControl{Key: "top_k", Label: "Top k", Type: core.ParamTypeInt, Step: 1, Min: 0, HasMin: true})
	}
	return controls
}

// SetIntParameter forwards an integer tunable to the statistic owning it.
func (s *Session) SetIntParameter(key string, value int) bool {
	for _, st := range s.stats {
		if p, ok := st.(core.IntParameterSetter); ok && p.SetIntParameter(key, value) {
			return true
		}
	}
	return false
}

// SetFloatParameter forwards a float tunable to the statistic owning it.
func (s *Session) SetFloatParameter(key string, value float64) bool {
	for _, st := range s.stats {
		if p, ok := st.(core.FloatParameterSetter); ok && p.SetFloatParameter(key, value) {
			return true
		}
	}
	return false
}

type parameterValuer interface {
	parameterValue(key string) (float64, bool)
}

// ParameterValue returns the current value of a tunable.
func (s *Session) ParameterValue(key string) (float64, bool) {
	for _, st := range s.stats {
		if p, ok := st.(parameterValuer); ok {
			if v, ok := p.parameterValue(key); ok {
				return v, true
			}
		}
	}
	return 0, false
}
