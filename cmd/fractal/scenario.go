package main

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ca-fractal/internal/analysis"
	"ca-fractal/internal/config"
	"ca-fractal/internal/core"
	"ca-fractal/internal/lattice"
)

// scenario is one headless run: a sim, its parameters and the analysis
// applied to every generation.
type scenario struct {
	Sim      string
	Params   map[string]string
	Seed     int64
	Steps    int
	TPS      int
	Topology string
	Radius   float64
	Config   *config.AnalysisConfig
}

// analysisFlags are shared by run and sweep.
type analysisFlags struct {
	configPath string
	stats      []string
	predicate  string
	topology   string
	radius     float64
}

func (f *analysisFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "YAML analysis configuration")
	fl.StringSliceVar(&f.stats, "stat", nil, "statistics to run (overrides the config file)")
	fl.StringVar(&f.predicate, "predicate", "", "cell predicate: all, occupied, empty or state=N")
	fl.StringVar(&f.topology, "topology", "", "neighbor topology (ring, moore, moore-bounded, vonneumann, vonneumann-bounded, jittered)")
	fl.Float64Var(&f.radius, "radius", 1.5, "neighbor radius for the jittered topology")
}

// load merges the config file with flag overrides.
func (f *analysisFlags) load(cmd *cobra.Command) (*config.AnalysisConfig, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("stat") {
		cfg.Statistics = append([]string(nil), f.stats...)
	}
	if cmd.Flags().Changed("predicate") {
		p := f.predicate
		cfg.Predicate = &p
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func simNames() []string { return core.SimNames() }

// build constructs the grid and session for sc.
func (sc scenario) build() (*lattice.SimGrid, *analysis.Session, error) {
	factory, ok := core.Sims()[sc.Sim]
	if !ok {
		return nil, nil, fmt.Errorf("unknown sim %q (available: %s)", sc.Sim, strings.Join(simNames(), ", "))
	}
	var opts []lattice.Option
	if sc.Topology != "" {
		topo, err := lattice.TopologyByName(sc.Topology, sc.Radius, sc.Seed)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, lattice.WithTopology(topo))
	}
	grid := lattice.NewSimGrid(factory(maps.Clone(sc.Params)), opts...)
	grid.Reset(sc.Seed)

	cfg := sc.Config
	if cfg == nil {
		cfg = config.Default()
	}
	session, err := analysis.New(grid, cfg.Options())
	if err != nil {
		return nil, nil, err
	}
	return grid, session, nil
}

// observer receives the outcome of every analyzed generation.
type observer func(generation int, results []analysis.Result, err error)

// run steps the scenario and analyzes generations 0 through Steps. Statistic
// errors are passed to each and never stop the run; only cancellation does.
func (sc scenario) run(ctx context.Context, logger *slog.Logger, each observer) ([]analysis.Result, error) {
	grid, session, err := sc.build()
	if err != nil {
		return nil, err
	}
	logger = logger.With("session", session.ID(), "sim", sc.Sim)
	logger.Info("scenario started", "steps", sc.Steps, "seed", sc.Seed, "topology", grid.Topology().Name())

	var pace *core.FixedStep
	if sc.TPS > 0 {
		pace = core.NewFixedStep(sc.TPS)
	}
	gen := grid.Generation()
	for {
		aerr := session.Analyze(gen)
		if aerr != nil {
			logger.Warn("analysis incomplete", "generation", gen, "err", aerr)
		}
		if each != nil {
			each(gen, session.Results(), aerr)
		}
		if gen >= sc.Steps {
			break
		}
		if err := ctx.Err(); err != nil {
			return session.Results(), err
		}
		if pace != nil {
			for !pace.ShouldStep() {
				select {
				case <-ctx.Done():
					return session.Results(), ctx.Err()
				case <-time.After(time.Millisecond):
				}
			}
		}
		gen = grid.Step()
	}
	logger.Info("scenario finished", "generation", gen)
	return session.Results(), nil
}

// formatResult renders one statistic's result for a progress line.
func formatResult(r analysis.Result) string {
	if !r.Valid {
		return r.Statistic + "=-"
	}
	switch r.Statistic {
	case "neighborhood":
		return fmt.Sprintf("neighborhood=%v", r.Histogram)
	case "topk":
		return fmt.Sprintf("topk=%v", r.Highlight)
	}
	var b strings.Builder
	if r.Insufficient {
		fmt.Fprintf(&b, "%s=insufficient n=%d", r.Statistic, r.Matching)
		return b.String()
	}
	fmt.Fprintf(&b, "%s=%.4f", r.Statistic, r.Dimension)
	if r.FitPoints > 0 {
		fmt.Fprintf(&b, "±%.4f r2=%.3f", r.StdErr, r.RSquared)
	}
	fmt.Fprintf(&b, " n=%d", r.Matching)
	if r.Degenerate {
		b.WriteString(" degenerate")
	}
	if r.LowConfidence {
		b.WriteString(" low-confidence")
	}
	return b.String()
}
