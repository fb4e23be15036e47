package config

import (
	"fmt"
	"math"
	"os"

	"github.com/go-logr/logr"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/predict"
	"github.com/san-kum/gravsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 1.0 / 60
	DefaultDuration = 30.0
	DefaultSeed     = 1
)

type Config struct {
	Integrator string         `yaml:"integrator"`
	Dt         float64        `yaml:"dt"`
	Duration   float64        `yaml:"duration"`
	Seed       uint64         `yaml:"seed"`
	Spread     float64        `yaml:"spread"`
	Params     dynamo.Params  `yaml:"params"`
	Predictor  predict.Config `yaml:"predictor"`
	Bodies     []BodyConfig   `yaml:"bodies"`
}

// BodyConfig places one body. Zero mass or radius means the kind's
// default; Random disables the orbital velocity.
type BodyConfig struct {
	Kind   physics.Kind `yaml:"kind"`
	X      float64      `yaml:"x"`
	Y      float64      `yaml:"y"`
	Mass   float64      `yaml:"mass,omitempty"`
	Radius float64      `yaml:"radius,omitempty"`
	Random bool         `yaml:"random,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: integrators.Default,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Seed:       DefaultSeed,
		Spread:     physics.DefaultVelocitySpread,
		Params:     dynamo.DefaultParams(),
		Predictor:  predict.DefaultConfig(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := integrators.New(c.Integrator); err != nil {
		return err
	}
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("dt %v: %w", c.Dt, dynamo.ErrParameterBounds)
	}
	if c.Duration < 0 || math.IsNaN(c.Duration) {
		return fmt.Errorf("duration %v: %w", c.Duration, dynamo.ErrParameterBounds)
	}
	if c.Spread < 0 || math.IsNaN(c.Spread) {
		return fmt.Errorf("spread %v: %w", c.Spread, dynamo.ErrParameterBounds)
	}
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if err := c.Predictor.Validate(); err != nil {
		return err
	}
	for i, b := range c.Bodies {
		if !b.Kind.Valid() {
			return fmt.Errorf("body %d: kind %q: %w", i, b.Kind, dynamo.ErrParameterBounds)
		}
		if b.Mass < 0 {
			return fmt.Errorf("body %d: %w", i, dynamo.ErrInvalidMass)
		}
		if b.Radius < 0 {
			return fmt.Errorf("body %d: %w", i, dynamo.ErrInvalidRadius)
		}
	}
	return nil
}

// Options converts the file settings into sandbox options.
func (c *Config) Options(log logr.Logger) sim.Options {
	return sim.Options{
		Params:     c.Params,
		Predictor:  c.Predictor,
		Integrator: c.Integrator,
		Spread:     c.Spread,
		Seed:       c.Seed,
		Logger:     log,
	}
}

// Spec resolves the kind defaults of a configured body.
func (b BodyConfig) Spec() sim.BodySpec {
	spec := sim.DefaultSpec(b.Kind)
	if b.Mass > 0 {
		spec.Mass = b.Mass
	}
	if b.Radius > 0 {
		spec.Radius = b.Radius
	}
	spec.Orbital = !b.Random
	return spec
}

// SeedBodies adds the configured bodies to s in order.
func (c *Config) SeedBodies(s *sim.Sandbox) error {
	for i, b := range c.Bodies {
		if _, err := s.AddBody(r2.Vec{X: b.X, Y: b.Y}, b.Spec()); err != nil {
			return fmt.Errorf("seed body %d: %w", i, err)
		}
	}
	return nil
}

// Build validates the config and returns a seeded sandbox.
func (c *Config) Build(log logr.Logger) (*sim.Sandbox, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	s, err := sim.New(c.Options(log))
	if err != nil {
		return nil, err
	}
	if err := c.SeedBodies(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Clone returns a copy that shares no slices with c.
func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = append([]BodyConfig(nil), c.Bodies...)
	return &out
}
