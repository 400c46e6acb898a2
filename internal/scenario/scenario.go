package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"wsnsim/internal/config"
)

// Scenario defines a parameter sweep: shared overrides plus one labeled run
// per point of the sweep.
type Scenario struct {
	Name        string    `yaml:"name,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Base        Overrides `yaml:"base,omitempty"`
	Runs        []Run     `yaml:"runs"`
}

// Run is one labeled point of a sweep.
type Run struct {
	Name      string    `yaml:"name"`
	Overrides Overrides `yaml:"overrides,omitempty"`
}

// Overrides replaces the configuration fields that are set.
type Overrides struct {
	Width           *float64 `yaml:"width,omitempty"`
	Height          *float64 `yaml:"height,omitempty"`
	Nodes           *int     `yaml:"nodes,omitempty"`
	CommRange       *float64 `yaml:"comm_range,omitempty"`
	InitialEnergy   *float64 `yaml:"initial_energy,omitempty"`
	Rounds          *int     `yaml:"rounds,omitempty"`
	PacketsPerRound *int     `yaml:"packets_per_round,omitempty"`
	AttackFraction  *float64 `yaml:"attack_fraction,omitempty"`
	Seed            *int64   `yaml:"seed,omitempty"`
	UtilityModel    *string  `yaml:"utility_model,omitempty"`
}

// Apply returns cfg with every set override replaced.
func (o Overrides) Apply(cfg config.Config) config.Config {
	if o.Width != nil {
		cfg.Width = *o.Width
	}
	if o.Height != nil {
		cfg.Height = *o.Height
	}
	if o.Nodes != nil {
		cfg.Nodes = *o.Nodes
	}
	if o.CommRange != nil {
		cfg.CommRange = *o.CommRange
	}
	if o.InitialEnergy != nil {
		cfg.InitialEnergy = *o.InitialEnergy
	}
	if o.Rounds != nil {
		cfg.Rounds = *o.Rounds
	}
	if o.PacketsPerRound != nil {
		cfg.PacketsPerRound = *o.PacketsPerRound
	}
	if o.AttackFraction != nil {
		cfg.AttackFraction = *o.AttackFraction
	}
	if o.Seed != nil {
		cfg.Seed = *o.Seed
	}
	if o.UtilityModel != nil {
		cfg.UtilityModel = *o.UtilityModel
	}
	return cfg
}

// Labeled is a resolved run configuration.
type Labeled struct {
	Name   string
	Config config.Config
}

// Load reads a YAML scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(b)
}

// Parse decodes a YAML scenario definition. Unknown fields are rejected.
func Parse(b []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(s.Runs) == 0 {
		return nil, fmt.Errorf("parse scenario: %q has no runs", s.Name)
	}
	return &s, nil
}

// Resolve returns the built-in scenario called name, or loads name as a file.
func Resolve(name string) (*Scenario, error) {
	if s, ok := BuiltIn()[name]; ok {
		return &s, nil
	}
	return Load(name)
}

// Configs applies the base overrides and then each run's overrides to base.
// Every resulting configuration is validated.
func (s Scenario) Configs(base config.Config) ([]Labeled, error) {
	shared := s.Base.Apply(base)
	out := make([]Labeled, 0, len(s.Runs))
	for i, r := range s.Runs {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("run-%d", i)
		}
		cfg := r.Overrides.Apply(shared)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("scenario %s run %s: %w", s.Name, name, err)
		}
		out = append(out, Labeled{Name: name, Config: cfg})
	}
	return out, nil
}
