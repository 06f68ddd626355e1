//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"

	"ca-fractal/internal/analysis"
	"ca-fractal/internal/app"
	"ca-fractal/internal/config"
	"ca-fractal/internal/core"
	"ca-fractal/internal/lattice"
	"ca-fractal/internal/logging"
	_ "ca-fractal/internal/sims/briansbrain"
	_ "ca-fractal/internal/sims/elementary"
	_ "ca-fractal/internal/sims/life"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger, err := logging.New(logging.Config{Level: *logLevel, Output: os.Stderr, Service: "ca"})
	if err != nil {
		log.Fatal(err)
	}
	analysis.SetLogger(logger)

	factory, ok := core.Sims()[cfg.Sim]
	if !ok {
		log.Fatalf("unknown sim %q", cfg.Sim)
	}

	acfg := config.Default()
	if cfg.ConfigPath != "" {
		if acfg, err = config.Load(cfg.ConfigPath); err != nil {
			log.Fatal(err)
		}
	}
	if stats := cfg.Statistics(); stats != nil {
		acfg.Statistics = stats
	}
	if err := acfg.Validate(); err != nil {
		log.Fatal(err)
	}
	opts := acfg.Options()
	if !slices.Contains(opts.Statistics, "topk") {
		opts.Statistics = append(opts.Statistics, "topk")
	}

	var gridOpts []lattice.Option
	if cfg.Topology != "" {
		topo, err := lattice.TopologyByName(cfg.Topology, cfg.Radius, cfg.Seed)
		if err != nil {
			log.Fatal(err)
		}
		gridOpts = append(gridOpts, lattice.WithTopology(topo))
	}
	sim := factory(cfg.Params)
	grid := lattice.NewSimGrid(sim, gridOpts...)
	grid.Reset(cfg.Seed)

	session, err := analysis.New(grid, opts)
	if err != nil {
		log.Fatal(err)
	}
	game := app.New(app.NewController(grid, session, cfg.Seed), cfg.Scale, cfg.TPS, cfg.HUDWidth, logger)
	size := sim.Size()

	ebiten.SetWindowTitle("ca-fractal: " + sim.Name())
	ebiten.SetWindowSize(size.W*cfg.Scale+cfg.HUDWidth, size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
