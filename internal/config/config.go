// Package config loads and saves run configurations: which model to
// build, how long and how finely to integrate, analyzer tuning, and
// magnitude overrides for parameters and initial stocks. Overrides keep
// the entity's declared unit, so a config file cannot change a model's
// dimensional structure.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/sysdyn/internal/models"
	"github.com/san-kum/sysdyn/internal/units"
)

const (
	DefaultModel    = "sir"
	DefaultDuration = 30.0
)

type Config struct {
	Model string `yaml:"model"`

	// Dt overrides the model's designed timestep magnitude; zero keeps
	// the model default. The time dimension always comes from the model.
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`

	Analysis AnalysisConfig `yaml:"analysis"`

	// Parameters and Stocks override magnitudes by entity name.
	Parameters map[string]float64 `yaml:"parameters"`
	Stocks     map[string]float64 `yaml:"stocks"`

	Output OutputConfig `yaml:"output"`
}

type AnalysisConfig struct {
	Skip      bool    `yaml:"skip"`
	Epsilon   float64 `yaml:"epsilon"`
	Threshold float64 `yaml:"threshold"`
	Workers   int     `yaml:"workers"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:    DefaultModel,
		Duration: DefaultDuration,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
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

// Timestep resolves the effective timestep for a built model: the
// config's magnitude if set, in the model's own time dimension.
// Clone deep-copies the config, including the override maps.
func (c *Config) Clone() *Config {
	out := *c
	if c.Parameters != nil {
		out.Parameters = make(map[string]float64, len(c.Parameters))
		for k, v := range c.Parameters {
			out.Parameters[k] = v
		}
	}
	if c.Stocks != nil {
		out.Stocks = make(map[string]float64, len(c.Stocks))
		for k, v := range c.Stocks {
			out.Stocks[k] = v
		}
	}
	return &out
}

func (c *Config) Timestep(m *models.Model) units.Quantity {
	if c.Dt <= 0 {
		return m.Timestep
	}
	return units.New(c.Dt, m.Timestep.Dim())
}

// Apply writes the parameter and stock overrides into a built model.
// Unknown names are an error: a typo in a sweep config should fail
// loudly, not silently run the base case.
func (c *Config) Apply(m *models.Model) error {
	for name, mag := range c.Parameters {
		p, ok := m.System.Param(name)
		if !ok {
			return fmt.Errorf("config: model %q has no parameter %q", m.Name, name)
		}
		m.System.SetValue(name, units.New(mag, p.Value().Dim()))
	}
	for name, mag := range c.Stocks {
		s, ok := m.System.Stock(name)
		if !ok {
			return fmt.Errorf("config: model %q has no stock %q", m.Name, name)
		}
		m.System.SetValue(name, units.New(mag, s.Unit()))
	}
	return nil
}
