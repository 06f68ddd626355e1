package ui

import (
	"fmt"
	"math"
	"strconv"

	"ca-fractal/internal/analysis"
	"ca-fractal/internal/core"
)

// Source is what the HUD reads from and writes to. *analysis.Session
// satisfies it.
type Source interface {
	core.ParameterSnapshotProvider
	core.ParameterControlsProvider
	core.IntParameterSetter
	core.FloatParameterSetter
	ParameterValue(key string) (float64, bool)
	Results() []analysis.Result
	Stopped() bool
}

// ResultLines renders the latest results as HUD text, one or two lines per
// statistic.
func ResultLines(results []analysis.Result, stopped bool) []string {
	lines := make([]string, 0, 2*len(results)+1)
	if stopped {
		lines = append(lines, "analysis off (A to resume)")
	}
	for _, r := range results {
		lines = append(lines, resultLine(r)...)
	}
	return lines
}

func resultLine(r analysis.Result) []string {
	if !r.Valid {
		return []string{r.Statistic + ": waiting"}
	}
	switch r.Statistic {
	case "neighborhood":
		return []string{fmt.Sprintf("neighborhood: %v", r.Histogram)}
	case "topk":
		return []string{fmt.Sprintf("topk: %d cells marked", len(r.Highlight))}
	}
	if r.Insufficient {
		return []string{fmt.Sprintf("%s: too few points (n=%d)", r.Statistic, r.Matching)}
	}
	head := fmt.Sprintf("%s: D=%.3f", r.Statistic, r.Dimension)
	if r.FitPoints > 0 {
		head += fmt.Sprintf(" ±%.3f", r.StdErr)
	}
	detail := fmt.Sprintf("  n=%d/%d", r.Matching, r.Total)
	if r.FitPoints > 0 {
		detail += fmt.Sprintf(" r2=%.3f", r.RSquared)
	}
	switch {
	case r.Degenerate:
		detail += " degenerate"
	case r.LowConfidence:
		detail += " LOW"
	}
	return []string{head, detail}
}

// adjust returns the value one step from current in direction, clamped to
// the control's bounds. ok is false when the step would not change anything.
func adjust(ctrl core.ParameterControl, current float64, direction int) (float64, bool) {
	if direction == 0 {
		return current, false
	}
	step := ctrl.Step
	switch {
	case ctrl.Type == core.ParamTypeInt:
		step = math.Max(1, math.Round(step))
	case step <= 0:
		step = 0.05
	}
	target := ctrl.Clamp(current + float64(direction)*step)
	if ctrl.Type == core.ParamTypeInt {
		target = math.Round(target)
	}
	if math.Abs(target-current) < 1e-9 {
		return current, false
	}
	return target, true
}

// apply pushes target to src through the setter matching the control type.
func apply(src Source, ctrl core.ParameterControl, target float64) bool {
	switch ctrl.Type {
	case core.ParamTypeInt:
		return src.SetIntParameter(ctrl.Key, int(target))
	case core.ParamTypeFloat:
		return src.SetFloatParameter(ctrl.Key, target)
	}
	return false
}

func formatValue(ctrl core.ParameterControl, v float64) string {
	if ctrl.Type == core.ParamTypeInt {
		return strconv.Itoa(int(math.Round(v)))
	}
	precision := 1
	switch {
	case ctrl.Step > 0 && ctrl.Step < 0.001:
		precision = 4
	case ctrl.Step > 0 && ctrl.Step < 0.01:
		precision = 3
	case ctrl.Step > 0 && ctrl.Step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}
