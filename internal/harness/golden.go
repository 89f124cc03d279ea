package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/placer/internal/report"
)

// Snapshot is the golden form of a scenario outcome. It leaves out reasons
// and raw metrics so that wording changes do not churn golden files.
type Snapshot struct {
	ScenarioName string            `json:"scenario_name"`
	Records      int64             `json:"records"`
	Mapping      map[string]string `json:"mapping"`
	Placements   []PlacementLine   `json:"placements"`
}

// PlacementLine is one field's decision within a Snapshot.
type PlacementLine struct {
	Field      string  `json:"field"`
	Backend    string  `json:"backend"`
	Rule       string  `json:"rule"`
	Confidence float64 `json:"confidence"`
	Unique     bool    `json:"unique"`
}

// NewSnapshot builds the golden form of result.
func NewSnapshot(name string, result *Result) Snapshot {
	s := Snapshot{
		ScenarioName: name,
		Records:      result.Records,
		Mapping:      result.Mapping,
		Placements:   make([]PlacementLine, len(result.Placement.Decisions)),
	}
	for i, d := range result.Placement.Decisions {
		s.Placements[i] = PlacementLine{
			Field:      d.FieldName,
			Backend:    string(d.Backend),
			Rule:       string(d.Rule),
			Confidence: d.Confidence,
			Unique:     d.Metrics.IsUnique,
		}
	}
	return s
}

// MarshalSnapshot renders the golden bytes for result.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, NewSnapshot(name, result)); err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// GoldenPath returns the golden file for a scenario file: a sibling
// golden/ directory holding <name>.golden.
func GoldenPath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

// CompareGolden reports whether result matches the golden file at path.
func CompareGolden(path, name string, result *Result) (bool, error) {
	want, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read golden file: %w", err)
	}
	got, err := MarshalSnapshot(name, result)
	if err != nil {
		return false, err
	}
	return bytes.Equal(want, got), nil
}

// UpdateGolden writes result as the golden file at path.
func UpdateGolden(path, name string, result *Result) error {
	data, err := MarshalSnapshot(name, result)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write golden file: %w", err)
	}
	return nil
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	data, err := MarshalSnapshot(scenario.Name, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return result, nil
}
