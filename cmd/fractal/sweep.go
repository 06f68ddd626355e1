package main

import (
	"fmt"
	"maps"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ca-fractal/internal/analysis"
)

type sweepOptions struct {
	analysisFlags
	sim     string
	params  map[string]string
	rules   []int
	steps   int
	seed    int64
	workers int
}

// sweepRow is the final state of one scenario in a sweep.
type sweepRow struct {
	rule    int
	results []analysis.Result
}

func newSweepCmd(root *rootOptions) *cobra.Command {
	o := &sweepOptions{}
	cmd := &cobra.Command{
		Use:     "sweep",
		Short:   "Run one scenario per rule in parallel and print the final statistics",
		Example: `  fractal sweep --sim elementary --rules 30,90,110,150 --steps 256`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.load(cmd)
			if err != nil {
				return err
			}
			logger := root.loggerOf()
			rows := make([]sweepRow, len(o.rules))

			g, ctx := errgroup.WithContext(cmd.Context())
			if o.workers > 0 {
				g.SetLimit(o.workers)
			}
			for i, rule := range o.rules {
				params := maps.Clone(o.params)
				if params == nil {
					params = map[string]string{}
				}
				params["rule"] = strconv.Itoa(rule)
				sc := scenario{
					Sim:      o.sim,
					Params:   params,
					Seed:     o.seed,
					Steps:    o.steps,
					Topology: o.topology,
					Radius:   o.radius,
					Config:   cfg,
				}
				g.Go(func() error {
					results, err := sc.run(ctx, logger.With("rule", rule), nil)
					if err != nil {
						return fmt.Errorf("rule %d: %w", rule, err)
					}
					rows[i] = sweepRow{rule: rule, results: results}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			return writeSweepTable(cmd, rows)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&o.sim, "sim", "elementary", "simulation to sweep")
	fl.StringToStringVar(&o.params, "param", nil, "fixed simulation parameter as key=value (repeatable)")
	fl.IntSliceVar(&o.rules, "rules", []int{30, 90, 110, 150}, "rule numbers, one scenario each")
	fl.IntVar(&o.steps, "steps", 200, "generations to step per scenario")
	fl.Int64Var(&o.seed, "seed", 42, "seed shared by every scenario")
	fl.IntVar(&o.workers, "workers", 0, "maximum scenarios running at once; 0 means no limit")
	o.bind(cmd)
	return cmd
}

func writeSweepTable(cmd *cobra.Command, rows []sweepRow) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "RULE\tSTATISTIC\tGEN\tDIMENSION\tSTDERR\tR2\tMATCHING\tFLAGS\n")
	for _, row := range rows {
		for _, r := range row.results {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\t%d\t%s\n",
				row.rule, r.Statistic, r.Generation,
				number(r.Valid && !r.Insufficient, r.Dimension),
				number(r.FitPoints > 0, r.StdErr),
				number(r.FitPoints > 0, r.RSquared),
				r.Matching, flags(r))
		}
	}
	return tw.Flush()
}

func number(ok bool, v float64) string {
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func flags(r analysis.Result) string {
	switch {
	case !r.Valid:
		return "no-data"
	case r.Insufficient:
		return "insufficient"
	case r.Degenerate:
		return "degenerate"
	case r.LowConfidence:
		return "low-confidence"
	}
	return "-"
}
