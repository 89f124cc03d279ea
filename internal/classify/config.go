package classify

import (
	"fmt"
	"math"
	"sort"
)

// Config holds the classifier thresholds.
type Config struct {
	// SQLFrequency is the minimum presence ratio for relational placement.
	SQLFrequency float64 `json:"sql_frequency" yaml:"sql_frequency"`

	// SQLTypeStability is the minimum dominant-type ratio for relational
	// placement. Fields below it are considered drifting.
	SQLTypeStability float64 `json:"sql_type_stability" yaml:"sql_type_stability"`

	// UniqueCardinality is the distinct-value ratio at which a field becomes a
	// uniqueness constraint candidate.
	UniqueCardinality float64 `json:"unique_cardinality" yaml:"unique_cardinality"`

	// SparseThreshold is the presence ratio below which a field is sparse.
	SparseThreshold float64 `json:"sparse_threshold" yaml:"sparse_threshold"`

	// MandatoryBoth lists join fields that must live in both backends.
	MandatoryBoth []string `json:"mandatory_both" yaml:"mandatory_both"`
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		SQLFrequency:      0.80,
		SQLTypeStability:  0.90,
		UniqueCardinality: 0.95,
		SparseThreshold:   0.30,
		MandatoryBoth:     []string{"username", "sys_ingested_at"},
	}
}

// Validate checks every threshold lies in [0, 1].
func (c Config) Validate() error {
	checks := []struct {
		name string
		v    float64
	}{
		{"sql_frequency", c.SQLFrequency},
		{"sql_type_stability", c.SQLTypeStability},
		{"unique_cardinality", c.UniqueCardinality},
		{"sparse_threshold", c.SparseThreshold},
	}
	for _, chk := range checks {
		if math.IsNaN(chk.v) || chk.v < 0 || chk.v > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %v", chk.name, chk.v)
		}
	}
	for i, f := range c.MandatoryBoth {
		if f == "" {
			return fmt.Errorf("mandatory_both[%d] is empty", i)
		}
	}
	return nil
}

// Thresholds is the numeric part of Config as reported in summaries.
type Thresholds struct {
	SQLFrequency      float64 `json:"sql_frequency"`
	SQLTypeStability  float64 `json:"sql_type_stability"`
	UniqueCardinality float64 `json:"unique_cardinality"`
	SparseThreshold   float64 `json:"sparse_threshold"`
}

// Thresholds returns the numeric thresholds in effect.
func (c Config) Thresholds() Thresholds {
	return Thresholds{
		SQLFrequency:      c.SQLFrequency,
		SQLTypeStability:  c.SQLTypeStability,
		UniqueCardinality: c.UniqueCardinality,
		SparseThreshold:   c.SparseThreshold,
	}
}

// JoinFields returns MandatoryBoth sorted and deduplicated.
func (c Config) JoinFields() []string {
	seen := make(map[string]bool, len(c.MandatoryBoth))
	out := make([]string, 0, len(c.MandatoryBoth))
	for _, f := range c.MandatoryBoth {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

func (c Config) isMandatory(field string) bool {
	for _, f := range c.MandatoryBoth {
		if f == field {
			return true
		}
	}
	return false
}
