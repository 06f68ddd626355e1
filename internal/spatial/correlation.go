package spatial

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrTooFewPoints is returned by Fit when fewer than two points remain.
var ErrTooFewPoints = errors.New("spatial: too few points to fit")

// CorrelationPoint is one sample of the log-log correlation function.
type CorrelationPoint struct {
	LogRadius float64
	LogCount  float64
}

// CorrelationFunction samples C(r), the number of pairs closer than r, at
// squared radii 2, 4, 8, ... up to the largest bin. Each point is
// (log(r²)/2, log(C)); radii with no pairs are skipped.
func CorrelationFunction(bins []int) []CorrelationPoint {
	maxD2 := len(bins) - 1
	var points []CorrelationPoint
	cum := 0
	next := 1
	for r := 2; r <= maxD2; r *= 2 {
		for ; next < r; next++ {
			cum += bins[next]
		}
		if cum <= 0 {
			continue
		}
		points = append(points, CorrelationPoint{
			LogRadius: math.Log(float64(r)) / 2,
			LogCount:  math.Log(float64(cum)),
		})
	}
	return points
}

// TrimTail drops the trailing fraction of points (largest radii) but never
// leaves fewer than minPoints unless there were fewer to begin with.
func TrimTail(points []CorrelationPoint, fraction float64, minPoints int) []CorrelationPoint {
	m := len(points)
	drop := int(math.Floor(fraction * float64(m)))
	if m-drop < minPoints {
		drop = m - minPoints
	}
	if drop <= 0 {
		return points
	}
	return points[:m-drop]
}

// FitResult is an ordinary least-squares fit of LogCount on LogRadius.
type FitResult struct {
	Slope     float64
	Intercept float64
	StdErr    float64
	RSquared  float64
	Points    int
}

// Fit regresses LogCount on LogRadius. StdErr is the standard error of the
// slope and is zero for a two-point fit.
func Fit(points []CorrelationPoint) (FitResult, error) {
	m := len(points)
	if m < 2 {
		return FitResult{Points: m}, ErrTooFewPoints
	}
	x := make([]float64, m)
	y := make([]float64, m)
	for i, p := range points {
		x[i], y[i] = p.LogRadius, p.LogCount
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)

	resid := make([]float64, m)
	for i := range x {
		resid[i] = y[i] - (alpha + beta*x[i])
	}
	sse := floats.Dot(resid, resid)

	r2 := stat.RSquared(x, y, nil, alpha, beta)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		// Constant y: a flat line fits exactly.
		r2 = 0
		if sse == 0 {
			r2 = 1
		}
	}

	var stdErr float64
	if m > 2 {
		sxx := stat.Variance(x, nil) * float64(m-1)
		if sxx > 0 {
			stdErr = math.Sqrt(sse / float64(m-2) / sxx)
		}
	}
	return FitResult{Slope: beta, Intercept: alpha, StdErr: stdErr, RSquared: r2, Points: m}, nil
}

// TsonisMinimum is the smallest point count for which a correlation
// dimension near dim is considered reliable: 10^(2+0.4·dim).
func TsonisMinimum(dim float64) int {
	return int(math.Pow(10, 2+0.4*dim))
}
