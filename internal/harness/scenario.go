package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/placer/internal/classify"
	"github.com/roach88/placer/internal/config"
)

// Scenario defines a placement scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config overrides the default configuration. It is decoded with the
	// same strict rules as a YAML config file.
	Config yaml.Node `yaml:"config,omitempty"`

	// Records are ingested in order. Mutually exclusive with Generate.
	Records []map[string]any `yaml:"records,omitempty"`

	// Generate asks the seeded generator for records instead.
	Generate *GenerateSpec `yaml:"generate,omitempty"`

	// Assertions validate the final session state.
	Assertions []Assertion `yaml:"assertions"`
}

// GenerateSpec configures synthetic records.
type GenerateSpec struct {
	Seed  uint64 `yaml:"seed"`
	Count int    `yaml:"count"`
}

// Assertion validates part of the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "canonical": Raw resolves to Canonical
	// - "placement": Field is placed in Backend, optionally with Confidence
	// - "frequency_between": Field frequency lies within [Min, Max]
	// - "pattern": Field's dominant pattern is Pattern
	// - "unique": Field's uniqueness candidacy equals Unique
	Type string `yaml:"type"`

	Raw       string `yaml:"raw,omitempty"`
	Canonical string `yaml:"canonical,omitempty"`

	// Field is the canonical field name (all types except canonical).
	Field string `yaml:"field,omitempty"`

	Backend    string   `yaml:"backend,omitempty"`
	Confidence *float64 `yaml:"confidence,omitempty"`

	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`

	Pattern string `yaml:"pattern,omitempty"`
	Unique  *bool  `yaml:"unique,omitempty"`
}

// Assertion type constants.
const (
	AssertCanonical        = "canonical"
	AssertPlacement        = "placement"
	AssertFrequencyBetween = "frequency_between"
	AssertPattern          = "pattern"
	AssertUnique           = "unique"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// Settings returns the default configuration with the scenario's overrides.
func (s *Scenario) Settings() (config.Config, error) {
	if s.Config.Kind == 0 {
		return config.Default(), nil
	}
	data, err := yaml.Marshal(&s.Config)
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return config.ParseYAML(data)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case len(s.Records) > 0 && s.Generate != nil:
		return fmt.Errorf("records and generate are mutually exclusive")
	case len(s.Records) == 0 && s.Generate == nil:
		return fmt.Errorf("records or generate is required")
	case s.Generate != nil && s.Generate.Count <= 0:
		return fmt.Errorf("generate.count must be positive")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	if _, err := s.Settings(); err != nil {
		return err
	}
	return nil
}

var backends = map[string]bool{
	string(classify.BackendSQL):      true,
	string(classify.BackendDocument): true,
	string(classify.BackendBoth):     true,
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Type != AssertCanonical && a.Field == "" {
		return fmt.Errorf("assertions[%d]: field is required for %s", index, a.Type)
	}

	switch a.Type {
	case AssertCanonical:
		if a.Raw == "" || a.Canonical == "" {
			return fmt.Errorf("assertions[%d]: raw and canonical are required for canonical", index)
		}
	case AssertPlacement:
		if !backends[a.Backend] {
			return fmt.Errorf("assertions[%d]: backend must be sql, document or both, got %q", index, a.Backend)
		}
	case AssertFrequencyBetween:
		if a.Min == nil || a.Max == nil {
			return fmt.Errorf("assertions[%d]: min and max are required for frequency_between", index)
		}
		if *a.Min > *a.Max {
			return fmt.Errorf("assertions[%d]: min %v exceeds max %v", index, *a.Min, *a.Max)
		}
	case AssertPattern:
		if a.Pattern == "" {
			return fmt.Errorf("assertions[%d]: pattern is required for pattern", index)
		}
	case AssertUnique:
		if a.Unique == nil {
			return fmt.Errorf("assertions[%d]: unique is required for unique", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
