package cmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/workshop-sim/sim"
)

// Config represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Version   string                   `yaml:"version"`
	Scenarios map[string]sim.SimConfig `yaml:"scenarios"`
}

// loadDefaultsConfig parses defaults.yaml into a Config struct.
// Uses strict field checking: typos must cause errors.
func loadDefaultsConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading defaults file %s: %w", path, err)
	}
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing defaults file %s: %w", path, err)
	}
	return &cfg, nil
}

// GetScenario returns the named preset from the defaults file.
func GetScenario(name string, defaultsFilePath string) (sim.SimConfig, error) {
	cfg, err := loadDefaultsConfig(defaultsFilePath)
	if err != nil {
		return sim.SimConfig{}, err
	}
	sc, ok := cfg.Scenarios[name]
	if !ok {
		return sim.SimConfig{}, fmt.Errorf("scenario %q not found in %s; available: %v", name, defaultsFilePath, cfg.ScenarioNames())
	}
	return sc, nil
}

// ScenarioNames lists the presets in name order.
func (c *Config) ScenarioNames() []string {
	names := make([]string, 0, len(c.Scenarios))
	for name := range c.Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
