package app

import (
	"flag"
	"fmt"
	"sort"
	"strings"
)

// Config represents the command-line parameters for the GUI.
type Config struct {
	Sim        string
	Scale      int
	TPS        int
	Seed       int64
	HUDWidth   int
	Topology   string
	Radius     float64
	ConfigPath string
	Stats      string
	Params     Params
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{Sim: "life", Scale: 3, TPS: 30, Seed: 42, HUDWidth: 260, Radius: 1.5, Params: Params{}}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
	fs.IntVar(&c.HUDWidth, "hud", c.HUDWidth, "analysis panel width in pixels (0 hides it)")
	fs.StringVar(&c.Topology, "topology", c.Topology, "neighbor topology override")
	fs.Float64Var(&c.Radius, "radius", c.Radius, "neighbor radius for the jittered topology")
	fs.StringVar(&c.ConfigPath, "config", c.ConfigPath, "YAML analysis configuration")
	fs.StringVar(&c.Stats, "stat", c.Stats, "comma-separated statistics (overrides the config file)")
	fs.Var(c.Params, "param", "simulation parameter as key=value (repeatable)")
}

// Statistics splits the -stat flag; nil when unset.
func (c *Config) Statistics() []string {
	if strings.TrimSpace(c.Stats) == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(c.Stats, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Params collects repeated key=value flags into the map handed to a sim
// factory.
type Params map[string]string

// String renders the params sorted by key.
func (p Params) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + p[k]
	}
	return strings.Join(parts, ",")
}

// Set parses one key=value pair.
func (p Params) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	p[k] = strings.TrimSpace(v)
	return nil
}
