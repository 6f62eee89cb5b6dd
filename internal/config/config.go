// YAML/JSON config loader with CUE validation integration
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults applied to absent document keys.
const (
	DefaultComponents      = 3
	DefaultSimulationSteps = 100
	DefaultMaintenanceCost = 1000.0
	DefaultFailureCost     = 5000.0
	DefaultInspectionCost  = 100.0
	DefaultThreshold       = 7
	DefaultProbability     = 0.15
	DefaultComponentCost   = 100.0

	// Bounds of a single run. The engine records one state per component per
	// step, so MaxStateCells caps components × steps.
	MaxSimulationSteps = 1_000_000
	MaxComponents      = 1_000
	MaxStateCells      = 10_000_000
)

//go:embed schema.cue
var defaultSchema string

// ComponentSpec is an explicit per-component override in the document.
type ComponentSpec struct {
	Name string  `yaml:"name" json:"name"`
	K    int     `yaml:"k" json:"k"`
	P    float64 `yaml:"p" json:"p"`
	Cost float64 `yaml:"cost" json:"cost"`
}

// Config is the input document of one simulation run.
type Config struct {
	C               int             `yaml:"C" json:"C"`
	SimulationSteps int             `yaml:"simulation_steps" json:"simulation_steps"`
	MaintenanceCost float64         `yaml:"maintenance_cost" json:"maintenance_cost"`
	FailureCost     float64         `yaml:"failure_cost" json:"failure_cost"`
	InspectionCost  float64         `yaml:"inspection_cost" json:"inspection_cost"`
	K               int             `yaml:"K" json:"K"`
	P               float64         `yaml:"P" json:"P"`
	ComponentParams []ComponentSpec `yaml:"component_params,omitempty" json:"component_params,omitempty"`
	// Seed of zero means the engine derives one from the clock.
	Seed int64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// Default returns a Config with every key at its default.
func Default() Config {
	return Config{
		C:               DefaultComponents,
		SimulationSteps: DefaultSimulationSteps,
		MaintenanceCost: DefaultMaintenanceCost,
		FailureCost:     DefaultFailureCost,
		InspectionCost:  DefaultInspectionCost,
		K:               DefaultThreshold,
		P:               DefaultProbability,
	}
}

// Parse validates data against the embedded CUE schema and decodes it over
// the defaults. JSON documents are decoded as JSON, anything else as YAML.
func Parse(data []byte) (*Config, error) {
	return ParseWithSchema(data, defaultSchema)
}

// ParseWithSchema is Parse with an explicit CUE schema source.
func ParseWithSchema(data []byte, schema string) (*Config, error) {
	if err := ValidateDocument(data, schema); err != nil {
		return nil, err
	}
	cfg := Default()
	unmarshal := yaml.Unmarshal
	if isJSON(data) {
		unmarshal = json.Unmarshal
	}
	if err := unmarshal(data, &cfg); err != nil {
		return nil, &ConfigurationError{Field: "document", Reason: "cannot decode", Err: err}
	}
	return &cfg, nil
}

// Load reads a config file and parses it. A non-empty cueSchemaPath replaces
// the embedded schema.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	schema := defaultSchema
	if cueSchemaPath != "" {
		b, err := os.ReadFile(cueSchemaPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read CUE schema: %w", err)
		}
		schema = string(b)
	}
	return ParseWithSchema(data, schema)
}

// Schema returns the embedded CUE schema source.
func Schema() string {
	return defaultSchema
}
