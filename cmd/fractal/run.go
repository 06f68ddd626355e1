package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"ca-fractal/internal/analysis"
	"ca-fractal/internal/metrics"
)

type runOptions struct {
	analysisFlags
	sim         string
	params      map[string]string
	steps       int
	seed        int64
	tps         int
	metricsAddr string
	quiet       bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and print its statistics every generation",
		Example: `  fractal run --sim elementary --param rule=90 --steps 200
  fractal run --sim life --stat correlation,neighborhood --metrics-addr :9090 --tps 30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.load(cmd)
			if err != nil {
				return err
			}
			sc := scenario{
				Sim:      o.sim,
				Params:   o.params,
				Seed:     o.seed,
				Steps:    o.steps,
				TPS:      o.tps,
				Topology: o.topology,
				Radius:   o.radius,
				Config:   cfg,
			}
			return o.execute(cmd.Context(), cmd, root, sc)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&o.sim, "sim", "elementary", "simulation to run")
	fl.StringToStringVar(&o.params, "param", nil, "simulation parameter as key=value (repeatable)")
	fl.IntVar(&o.steps, "steps", 100, "generations to step after the initial one")
	fl.Int64Var(&o.seed, "seed", 42, "seed for simulation reset")
	fl.IntVar(&o.tps, "tps", 0, "ticks per second; 0 runs as fast as possible")
	fl.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	fl.BoolVar(&o.quiet, "quiet", false, "only print the final generation")
	o.bind(cmd)
	return cmd
}

func (o *runOptions) execute(ctx context.Context, cmd *cobra.Command, root *rootOptions, sc scenario) error {
	logger := root.loggerOf()
	out := cmd.OutOrStdout()

	var m *metrics.Metrics
	if o.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		var err error
		if m, err = metrics.New(reg, fmt.Sprintf("%s-%d", sc.Sim, sc.Seed)); err != nil {
			return err
		}
		ln, err := net.Listen("tcp", o.metricsAddr)
		if err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		srv := &http.Server{Handler: metricsMux(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", "addr", ln.Addr().String())
	}

	var last string
	results, err := sc.run(ctx, logger, func(gen int, results []analysis.Result, aerr error) {
		if m != nil {
			m.Observe(gen, results, aerr)
		}
		last = progressLine(gen, results)
		if !o.quiet {
			fmt.Fprintln(out, last)
		}
	})
	if o.quiet && last != "" {
		fmt.Fprintln(out, last)
	}
	if err != nil && len(results) == 0 {
		return err
	}
	if errors.Is(err, context.Canceled) {
		logger.Info("run interrupted")
		return nil
	}
	return err
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	return mux
}

func progressLine(gen int, results []analysis.Result) string {
	parts := make([]string, 0, len(results)+1)
	parts = append(parts, fmt.Sprintf("gen=%d", gen))
	for _, r := range results {
		parts = append(parts, formatResult(r))
	}
	return strings.Join(parts, " ")
}
