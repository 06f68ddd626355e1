// Package metrics publishes the latest analysis results as Prometheus
// gauges and counters.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ca-fractal/internal/analysis"
)

const namespace = "fractal"

// Metrics holds the collectors for one analysis session.
type Metrics struct {
	Generation    prometheus.Gauge
	Dimension     *prometheus.GaugeVec
	StdErr        *prometheus.GaugeVec
	RSquared      *prometheus.GaugeVec
	Matching      *prometheus.GaugeVec
	LowConfidence *prometheus.GaugeVec
	Rebuilds      *prometheus.GaugeVec
	Analyzed      prometheus.Counter
	Skipped       *prometheus.CounterVec
	Failures      prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer, session string) (*Metrics, error) {
	labels := prometheus.Labels{"session": session}
	gauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: name, Help: help, ConstLabels: labels,
		}, []string{"statistic"})
	}
	m := &Metrics{
		Generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "generation", Help: "Last analyzed generation", ConstLabels: labels,
		}),
		Dimension:     gauge("dimension", "Latest dimension estimate"),
		StdErr:        gauge("dimension_stderr", "Standard error of the latest correlation fit"),
		RSquared:      gauge("dimension_r_squared", "R squared of the latest correlation fit"),
		Matching:      gauge("matching_cells", "Cells matching the predicate in the analyzed window"),
		LowConfidence: gauge("low_confidence", "1 when the matching cell count is below the Tsonis threshold"),
		Rebuilds:      gauge("full_rebuilds", "Full rebuilds since the last reset"),
		Analyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "generations_analyzed_total", Help: "Generations passed to the session", ConstLabels: labels,
		}),
		Skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "generations_skipped_total", Help: "Generations a statistic skipped", ConstLabels: labels,
		}, []string{"statistic"}),
		Failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "analysis_errors_total", Help: "Analyze calls failing for reasons other than a skip", ConstLabels: labels,
		}),
	}
	for _, c := range []prometheus.Collector{
		m.Generation, m.Dimension, m.StdErr, m.RSquared, m.Matching,
		m.LowConfidence, m.Rebuilds, m.Analyzed, m.Skipped, m.Failures,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one Analyze call: err is what Session.Analyze returned.
func (m *Metrics) Observe(generation int, results []analysis.Result, err error) {
	m.Analyzed.Inc()
	m.Generation.Set(float64(generation))
	for _, r := range results {
		if !r.Valid {
			continue
		}
		m.Dimension.WithLabelValues(r.Statistic).Set(r.Dimension)
		m.StdErr.WithLabelValues(r.Statistic).Set(r.StdErr)
		m.RSquared.WithLabelValues(r.Statistic).Set(r.RSquared)
		m.Matching.WithLabelValues(r.Statistic).Set(float64(r.Matching))
		m.Rebuilds.WithLabelValues(r.Statistic).Set(float64(r.Rebuilds))
		low := 0.0
		if r.LowConfidence {
			low = 1
		}
		m.LowConfidence.WithLabelValues(r.Statistic).Set(low)
	}
	if err == nil {
		return
	}
	for _, e := range flatten(err) {
		var skipped *analysis.SkippedError
		if errors.As(e, &skipped) {
			m.Skipped.WithLabelValues(skipped.Statistic).Inc()
		} else {
			m.Failures.Inc()
		}
	}
}

// flatten splits a joined error into its parts.
func flatten(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
