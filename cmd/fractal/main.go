// Command fractal runs cellular automata headlessly and reports the spatial
// statistics of every generation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ca-fractal/internal/analysis"
	"ca-fractal/internal/logging"
	_ "ca-fractal/internal/sims/briansbrain"
	_ "ca-fractal/internal/sims/elementary"
	_ "ca-fractal/internal/sims/life"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	logLevel  string
	logFormat string
	logger    *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "fractal",
		Short:         "Measure fractal dimension and neighborhood statistics of cellular automata",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			l, err := logging.New(logging.Config{
				Level:   opts.logLevel,
				Format:  opts.logFormat,
				Output:  cmd.ErrOrStderr(),
				Service: "fractal",
			})
			if err != nil {
				return err
			}
			opts.logger = l
			analysis.SetLogger(l)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")

	root.AddCommand(newListCmd(), newRunCmd(opts), newSweepCmd(opts))
	return root
}

// loggerOf returns the configured logger, falling back to a discard logger
// when a subcommand runs without the root pre-run.
func (o *rootOptions) loggerOf() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.logger
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available simulations and statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "simulations:")
			for _, name := range simNames() {
				fmt.Fprintf(out, "  %s\n", name)
			}
			fmt.Fprintln(out, "statistics:")
			for _, name := range analysis.Names() {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}
}
