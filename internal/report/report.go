package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/roach88/placer/internal/classify"
	"github.com/roach88/placer/internal/profile"
	"github.com/roach88/placer/internal/resolver"
)

// Placement is the decision set with its summary.
type Placement struct {
	Summary   classify.Summary    `json:"summary"`
	Decisions []classify.Decision `json:"decisions"`
}

// FromClassifier captures the classifier's current decision set.
func FromClassifier(c *classify.Classifier) Placement {
	return Placement{Summary: c.Summary(), Decisions: c.Decisions()}
}

// Report is the complete machine-readable output of an analysis run.
type Report struct {
	Seq       int64           `json:"seq"`
	Placement Placement       `json:"placement"`
	Profile   profile.Summary `json:"profile"`
	Resolver  resolver.Stats  `json:"resolver"`
	DDL       string          `json:"ddl,omitempty"`
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// groupOrder is the order backends appear in the text report.
var groupOrder = []classify.Backend{classify.BackendBoth, classify.BackendSQL, classify.BackendDocument}

// WriteText writes the placement report grouped by backend. Within a group
// fields are sorted by frequency, highest first, then by name. Empty groups
// are omitted.
func WriteText(w io.Writer, p Placement) error {
	ew := &errWriter{w: w}

	heading(ew, "FIELD PLACEMENT REPORT", "=")
	ew.printf("\n")
	ew.printf("Total fields: %d\n", p.Summary.TotalFields)
	ew.printf("  sql only:      %d\n", p.Summary.SQLOnly)
	ew.printf("  document only: %d\n", p.Summary.DocumentOnly)
	ew.printf("  both:          %d\n", p.Summary.Both)
	ew.printf("  unique:        %d\n", p.Summary.UniqueFields)
	ew.printf("\n")

	t := p.Summary.Thresholds
	ew.printf("Thresholds:\n")
	ew.printf("  sql_frequency:      %.2f\n", t.SQLFrequency)
	ew.printf("  sql_type_stability: %.2f\n", t.SQLTypeStability)
	ew.printf("  unique_cardinality: %.2f\n", t.UniqueCardinality)
	ew.printf("  sparse_threshold:   %.2f\n", t.SparseThreshold)

	for _, backend := range groupOrder {
		group := byFrequency(p.Decisions, backend)
		if len(group) == 0 {
			continue
		}

		ew.printf("\n")
		heading(ew, fmt.Sprintf("%s FIELDS (%d)", strings.ToUpper(string(backend)), len(group)), "-")
		for _, d := range group {
			m := d.Metrics
			ew.printf("\n%s\n", d.FieldName)
			ew.printf("  confidence: %.2f\n", d.Confidence)
			ew.printf("  reason:     %s\n", d.Reason)
			ew.printf("  metrics:    type=%s freq=%s type_stab=%s card=%.3f\n",
				m.DominantType, percent(m.Frequency), percent(m.TypeStability), m.Cardinality)
			if m.IsUnique {
				ew.printf("  UNIQUE constraint candidate\n")
			}
		}
	}
	return ew.err
}

func heading(ew *errWriter, title, rule string) {
	ew.printf("%s\n%s\n", title, strings.Repeat(rule, len(title)))
}

func byFrequency(decisions []classify.Decision, backend classify.Backend) []classify.Decision {
	var out []classify.Decision
	for _, d := range decisions {
		if d.Backend == backend {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Metrics.Frequency != out[j].Metrics.Frequency {
			return out[i].Metrics.Frequency > out[j].Metrics.Frequency
		}
		return out[i].FieldName < out[j].FieldName
	})
	return out
}

func percent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// WriteResolver writes what the resolver has learned, one canonical field
// per line with its raw spellings.
func WriteResolver(w io.Writer, stats resolver.Stats) error {
	ew := &errWriter{w: w}
	ew.printf("Canonical fields: %d\n", stats.CanonicalFields)
	ew.printf("Total variations: %d\n", stats.TotalVariations)

	names := make([]string, 0, len(stats.VariationDetails))
	for name := range stats.VariationDetails {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ew.printf("  %s: %s\n", name, strings.Join(stats.VariationDetails[name], ", "))
	}
	return ew.err
}

// errWriter keeps the first write error so rendering code can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
