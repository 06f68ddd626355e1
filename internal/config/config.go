// Package config loads analysis settings from YAML. Every field is a
// pointer so that a partial file only overrides what it names; the Get*
// accessors fill in defaults for the rest.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ca-fractal/internal/analysis"
	"ca-fractal/internal/spatial"
)

const maxFileSize = 1 << 20

// AnalysisConfig is the root of an analysis configuration file.
type AnalysisConfig struct {
	Statistics       []string `yaml:"statistics,omitempty"`
	Predicate        *string  `yaml:"predicate,omitempty"`
	State            *int     `yaml:"state,omitempty"`
	MaxHistory       *int     `yaml:"max_history,omitempty"`
	MaxSamples       *int     `yaml:"max_samples,omitempty"`
	TailTrim         *float64 `yaml:"tail_trim,omitempty"`
	MinFitPoints     *int     `yaml:"min_fit_points,omitempty"`
	TopK             *int     `yaml:"top_k,omitempty"`
	IncludeNeighbors *bool    `yaml:"include_neighbors,omitempty"`
	TsonisDimension  *float64 `yaml:"tsonis_dimension,omitempty"`
}

func ptr[T any](v T) *T { return &v }

// Default returns a configuration with every field set to its default.
func Default() *AnalysisConfig {
	d := analysis.DefaultOptions()
	return &AnalysisConfig{
		Statistics:       append([]string(nil), d.Statistics...),
		Predicate:        ptr("occupied"),
		State:            ptr(0),
		MaxHistory:       ptr(d.MaxHistory),
		MaxSamples:       ptr(d.MaxSamples),
		TailTrim:         ptr(d.TailTrim),
		MinFitPoints:     ptr(d.MinFitPoints),
		TopK:             ptr(d.TopK),
		IncludeNeighbors: ptr(false),
		TsonisDimension:  ptr(d.TsonisDimension),
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*AnalysisConfig, error) {
	clean := filepath.Clean(path)
	switch ext := filepath.Ext(clean); ext {
	case ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("config file must have .yaml or .yml extension, got %q", ext)
	}
	info, err := os.Stat(clean)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML. Unknown keys are rejected.
func Parse(data []byte) (*AnalysisConfig, error) {
	cfg := &AnalysisConfig{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that are set.
func (c *AnalysisConfig) Validate() error {
	for _, name := range c.Statistics {
		if _, err := analysis.Lookup(name); err != nil {
			return fmt.Errorf("statistics: %w", err)
		}
	}
	if c.Predicate != nil {
		if _, err := c.predicate(); err != nil {
			return fmt.Errorf("predicate: %w", err)
		}
	}
	if c.MaxHistory != nil && *c.MaxHistory < 1 {
		return fmt.Errorf("max_history must be at least 1, got %d", *c.MaxHistory)
	}
	if c.MaxSamples != nil && *c.MaxSamples < 1 {
		return fmt.Errorf("max_samples must be at least 1, got %d", *c.MaxSamples)
	}
	if c.TailTrim != nil && (*c.TailTrim < 0 || *c.TailTrim > 0.9) {
		return fmt.Errorf("tail_trim must be between 0 and 0.9, got %g", *c.TailTrim)
	}
	if c.MinFitPoints != nil && *c.MinFitPoints < 2 {
		return fmt.Errorf("min_fit_points must be at least 2, got %d", *c.MinFitPoints)
	}
	if c.TopK != nil && *c.TopK < 0 {
		return fmt.Errorf("top_k must be non-negative, got %d", *c.TopK)
	}
	if c.TsonisDimension != nil && (*c.TsonisDimension <= 0 || *c.TsonisDimension > 3) {
		return fmt.Errorf("tsonis_dimension must be in (0, 3], got %g", *c.TsonisDimension)
	}
	return nil
}

func (c *AnalysisConfig) predicate() (spatial.Predicate, error) {
	name := "occupied"
	if c.Predicate != nil {
		name = *c.Predicate
	}
	if name == "state" {
		return spatial.Predicate{Kind: spatial.ExactState, State: c.GetState()}, nil
	}
	return spatial.ParsePredicate(name)
}

// GetStatistics returns the statistics to run.
func (c *AnalysisConfig) GetStatistics() []string {
	if len(c.Statistics) == 0 {
		return append([]string(nil), analysis.DefaultStatistics...)
	}
	return append([]string(nil), c.Statistics...)
}

// GetPredicate returns the configured predicate, Occupied by default.
func (c *AnalysisConfig) GetPredicate() spatial.Predicate {
	p, err := c.predicate()
	if err != nil {
		return spatial.Occupied
	}
	return p
}

// GetState returns the state used by the "state" predicate.
func (c *AnalysisConfig) GetState() int {
	if c.State == nil {
		return 0
	}
	return *c.State
}

// GetMaxHistory returns max_history or 128.
func (c *AnalysisConfig) GetMaxHistory() int {
	if c.MaxHistory == nil {
		return 128
	}
	return *c.MaxHistory
}

// GetMaxSamples returns max_samples or 500.
func (c *AnalysisConfig) GetMaxSamples() int {
	if c.MaxSamples == nil {
		return 500
	}
	return *c.MaxSamples
}

// GetTailTrim returns tail_trim or 0.25.
func (c *AnalysisConfig) GetTailTrim() float64 {
	if c.TailTrim == nil {
		return 0.25
	}
	return *c.TailTrim
}

// GetMinFitPoints returns min_fit_points or 3.
func (c *AnalysisConfig) GetMinFitPoints() int {
	if c.MinFitPoints == nil {
		return 3
	}
	return *c.MinFitPoints
}

// GetTopK returns top_k or 10.
func (c *AnalysisConfig) GetTopK() int {
	if c.TopK == nil {
		return 10
	}
	return *c.TopK
}

// GetIncludeNeighbors returns include_neighbors or false.
func (c *AnalysisConfig) GetIncludeNeighbors() bool {
	if c.IncludeNeighbors == nil {
		return false
	}
	return *c.IncludeNeighbors
}

// GetTsonisDimension returns tsonis_dimension or 2.
func (c *AnalysisConfig) GetTsonisDimension() float64 {
	if c.TsonisDimension == nil {
		return 2
	}
	return *c.TsonisDimension
}

// Options converts the configuration into session options.
func (c *AnalysisConfig) Options() analysis.Options {
	return analysis.Options{
		Statistics:       c.GetStatistics(),
		Predicate:        c.GetPredicate(),
		MaxHistory:       c.GetMaxHistory(),
		MaxSamples:       c.GetMaxSamples(),
		TailTrim:         c.GetTailTrim(),
		MinFitPoints:     c.GetMinFitPoints(),
		TopK:             c.GetTopK(),
		IncludeNeighbors: c.GetIncludeNeighbors(),
		TsonisDimension:  c.GetTsonisDimension(),
	}
}

// Marshal renders the configuration as YAML.
func (c *AnalysisConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
