// YAML config loader with CUE validation integration
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Utility model backends.
const (
	UtilityLinear = "linear"
	UtilityForest = "forest"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the root configuration of one simulation scenario.
type Config struct {
	Width           float64 `yaml:"width" json:"width"`
	Height          float64 `yaml:"height" json:"height"`
	Nodes           int     `yaml:"nodes" json:"nodes"`
	CommRange       float64 `yaml:"comm_range" json:"comm_range"`
	InitialEnergy   float64 `yaml:"initial_energy" json:"initial_energy"`
	Rounds          int     `yaml:"rounds" json:"rounds"`
	PacketsPerRound int     `yaml:"packets_per_round" json:"packets_per_round"`
	SinkID          int     `yaml:"sink_id" json:"sink_id"`
	AttackFraction  float64 `yaml:"attack_fraction" json:"attack_fraction"`
	Seed            int64   `yaml:"seed" json:"seed"`
	UtilityModel    string  `yaml:"utility_model" json:"utility_model"`
}

// Default returns the reference benchmark configuration.
func Default() Config {
	return Config{
		Width:           500,
		Height:          500,
		Nodes:           80,
		CommRange:       120,
		InitialEnergy:   2.0,
		Rounds:          200,
		PacketsPerRound: 20,
		SinkID:          0,
		AttackFraction:  0.1,
		Seed:            7,
		UtilityModel:    UtilityForest,
	}
}

// Load validates the YAML file at configPath against a CUE schema and decodes
// it over Default. An empty cueSchemaPath selects the embedded schema.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate performs the checks the simulation relies on.
func (c Config) Validate() error {
	switch {
	case c.Nodes < 1:
		return fmt.Errorf("%w: nodes must be >= 1, got %d", ErrInvalidConfig, c.Nodes)
	case c.SinkID != 0:
		return fmt.Errorf("%w: sink_id must be 0, got %d", ErrInvalidConfig, c.SinkID)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: area must be positive, got %gx%g", ErrInvalidConfig, c.Width, c.Height)
	case c.CommRange <= 0:
		return fmt.Errorf("%w: comm_range must be positive", ErrInvalidConfig)
	case c.InitialEnergy <= 0:
		return fmt.Errorf("%w: initial_energy must be positive", ErrInvalidConfig)
	case c.Rounds < 0 || c.PacketsPerRound < 0:
		return fmt.Errorf("%w: rounds and packets_per_round must be >= 0", ErrInvalidConfig)
	case c.AttackFraction < 0 || c.AttackFraction > 1:
		return fmt.Errorf("%w: attack_fraction must be in [0,1], got %g", ErrInvalidConfig, c.AttackFraction)
	}
	switch c.UtilityModel {
	case "", UtilityLinear, UtilityForest:
	default:
		return fmt.Errorf("%w: unknown utility_model %q", ErrInvalidConfig, c.UtilityModel)
	}
	return nil
}
