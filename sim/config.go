package sim

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid simulation config")

// SimConfig groups everything a workshop run needs before its clock starts.
type SimConfig struct {
	Horizon     int64      `yaml:"horizon"`      // minutes; the loop stops once the clock reaches it
	ArrivalRate float64    `yaml:"arrival_rate"` // expected arrivals per minute
	Categories  []Category `yaml:"categories"`   // vehicle classes, drawn uniformly on arrival
	Seed        int64      `yaml:"seed"`
}

// Validate checks that all fields in the config are usable.
func (c *SimConfig) Validate() error {
	if c.Horizon <= 0 {
		return fmt.Errorf("%w: horizon must be positive, got %d", ErrInvalidConfig, c.Horizon)
	}
	if !positiveFinite(c.ArrivalRate) {
		return fmt.Errorf("%w: arrival_rate must be positive, got %v", ErrInvalidConfig, c.ArrivalRate)
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("%w: at least one category required", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("%w: category[%d]: name is required", ErrInvalidConfig, i)
		}
		if seen[cat.Name] {
			return fmt.Errorf("%w: category %q defined twice", ErrInvalidConfig, cat.Name)
		}
		seen[cat.Name] = true
		if !positiveFinite(cat.Rate) {
			return fmt.Errorf("%w: category %q: rate must be positive, got %v", ErrInvalidConfig, cat.Name, cat.Rate)
		}
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// CategoriesFromRates builds a category list from a name → rate map, ordered
// by name so that runs from the same map are reproducible.
func CategoriesFromRates(rates map[string]float64) []Category {
	names := make([]string, 0, len(rates))
	for name := range rates {
		names = append(names, name)
	}
	sort.Strings(names)
	cats := make([]Category, 0, len(names))
	for _, name := range names {
		cats = append(cats, Category{Name: name, Rate: rates[name]})
	}
	return cats
}

// LoadScenarioFile reads a YAML scenario. Unknown fields are rejected.
// The returned config is not validated.
func LoadScenarioFile(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var cfg SimConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &cfg, nil
}
