package harness

import (
	"fmt"
	"math"

	"github.com/roach88/placer/internal/classify"
	"github.com/roach88/placer/internal/profile"
)

// tolerance absorbs float noise in ratio comparisons.
const tolerance = 1e-9

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion against result and returns the
// failure messages, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d] %v", i, err))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertCanonical:
		return assertCanonical(result, a)
	case AssertPlacement:
		return assertPlacement(result, a)
	case AssertFrequencyBetween:
		return assertFrequency(result, a)
	case AssertPattern:
		return assertPattern(result, a)
	case AssertUnique:
		return assertUnique(result, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func assertCanonical(result *Result, a Assertion) error {
	got, ok := result.Mapping[a.Raw]
	if !ok {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%s -> %s", a.Raw, a.Canonical), Actual: "raw name never seen"}
	}
	if got != a.Canonical {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%s -> %s", a.Raw, a.Canonical), Actual: fmt.Sprintf("%s -> %s", a.Raw, got)}
	}
	return nil
}

func assertPlacement(result *Result, a Assertion) error {
	d, ok := findDecision(result, a.Field)
	if !ok {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%s in %s", a.Field, a.Backend), Actual: "field not classified"}
	}
	if string(d.Backend) != a.Backend {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s in %s", a.Field, a.Backend),
			Actual:   fmt.Sprintf("%s (%s: %s)", d.Backend, d.Rule, d.Reason),
		}
	}
	if a.Confidence != nil && math.Abs(d.Confidence-*a.Confidence) > tolerance {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s confidence %.4f", a.Field, *a.Confidence),
			Actual:   fmt.Sprintf("%.4f", d.Confidence),
		}
	}
	return nil
}

func assertFrequency(result *Result, a Assertion) error {
	an, ok := findAnalysis(result, a.Field)
	if !ok {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%s frequency in [%v, %v]", a.Field, *a.Min, *a.Max), Actual: "field not observed"}
	}
	if an.Frequency < *a.Min-tolerance || an.Frequency > *a.Max+tolerance {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s frequency in [%v, %v]", a.Field, *a.Min, *a.Max),
			Actual:   fmt.Sprintf("%.4f", an.Frequency),
		}
	}
	return nil
}

func assertPattern(result *Result, a Assertion) error {
	an, ok := findAnalysis(result, a.Field)
	got := profile.PatternNone
	if ok {
		got = an.DominantPattern
	}
	if got != a.Pattern {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%s pattern %s", a.Field, a.Pattern), Actual: got}
	}
	return nil
}

func assertUnique(result *Result, a Assertion) error {
	d, ok := findDecision(result, a.Field)
	if !ok {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%s unique=%v", a.Field, *a.Unique), Actual: "field not classified"}
	}
	if d.Metrics.IsUnique != *a.Unique {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s unique=%v", a.Field, *a.Unique),
			Actual:   fmt.Sprintf("unique=%v (cardinality %.4f)", d.Metrics.IsUnique, d.Metrics.Cardinality),
		}
	}
	return nil
}

func findDecision(result *Result, field string) (classify.Decision, bool) {
	for _, d := range result.Placement.Decisions {
		if d.FieldName == field {
			return d, true
		}
	}
	return classify.Decision{}, false
}

func findAnalysis(result *Result, field string) (profile.FieldAnalysis, bool) {
	for _, a := range result.Analyses {
		if a.FieldName == field {
			return a, true
		}
	}
	return profile.FieldAnalysis{}, false
}
