package profile

import (
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/placer/internal/value"
)

// SnapshotError reports a profiler state that cannot be imported.
type SnapshotError struct {
	// Field is the offending field ("" for record-level problems).
	Field string

	// Reason describes the inconsistency.
	Reason string
}

// Error implements the error interface.
func (e *SnapshotError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("profile snapshot: field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("profile snapshot: %s", e.Reason)
}

// IsSnapshotError returns true if err is or wraps a SnapshotError.
func IsSnapshotError(err error) bool {
	var se *SnapshotError
	return errors.As(err, &se)
}

// State is the exportable form of a Profiler.
type State struct {
	TotalRecords int64                 `json:"total_records"`
	Fields       map[string]FieldState `json:"fields"`
}

// FieldState is the exportable form of one field profile. Histograms keep
// first-seen order so tie-breaking survives a round trip.
type FieldState struct {
	Occurrences      int64    `json:"occurrences"`
	TypeHistogram    []Count  `json:"type_histogram"`
	PatternHistogram []Count  `json:"pattern_histogram"`
	UniqueValues     []string `json:"unique_values"`
	IsNested         bool     `json:"is_nested"`
	IsArray          bool     `json:"is_array"`
}

// Export returns a deep copy of the profiler state.
func (p *Profiler) Export() State {
	st := State{
		TotalRecords: p.totalRecords,
		Fields:       make(map[string]FieldState, len(p.fields)),
	}
	for name, fp := range p.fields {
		uniques := make([]string, 0, len(fp.uniques))
		for u := range fp.uniques {
			uniques = append(uniques, u)
		}
		sort.Strings(uniques)

		st.Fields[name] = FieldState{
			Occurrences:      fp.occurrences,
			TypeHistogram:    fp.types.entries(),
			PatternHistogram: fp.patterns.entries(),
			UniqueValues:     uniques,
			IsNested:         fp.nested,
			IsArray:          fp.array,
		}
	}
	return st
}

var knownTypeTags = map[string]bool{
	string(value.TagNull):    true,
	string(value.TagBoolean): true,
	string(value.TagInteger): true,
	string(value.TagFloat):   true,
	string(value.TagString):  true,
	string(value.TagArray):   true,
	string(value.TagObject):  true,
}

var knownPatternTags = map[string]bool{
	PatternIPAddress:    true,
	PatternEmail:        true,
	PatternURL:          true,
	PatternUUID:         true,
	PatternISOTimestamp: true,
}

// Import replaces the profiler state with st. The unique limit of the
// receiving Profiler stays in force. On error the profiler is unchanged.
func (p *Profiler) Import(st State) error {
	if st.TotalRecords < 0 {
		return &SnapshotError{Reason: "negative total_records"}
	}

	fields := make(map[string]*fieldProfile, len(st.Fields))
	for name, fs := range st.Fields {
		fp, err := p.importField(name, fs, st.TotalRecords)
		if err != nil {
			return err
		}
		fields[name] = fp
	}

	p.totalRecords = st.TotalRecords
	p.fields = fields
	return nil
}

func (p *Profiler) importField(name string, fs FieldState, total int64) (*fieldProfile, error) {
	if fs.Occurrences < 0 || fs.Occurrences > total {
		return nil, &SnapshotError{Field: name, Reason: fmt.Sprintf("occurrences %d outside [0, %d]", fs.Occurrences, total)}
	}

	fp := newFieldProfile()
	fp.occurrences = fs.Occurrences
	fp.nested = fs.IsNested
	fp.array = fs.IsArray

	if err := loadHistogram(fp.types, fs.TypeHistogram, knownTypeTags); err != nil {
		return nil, &SnapshotError{Field: name, Reason: "type histogram: " + err.Error()}
	}
	if sum := fp.types.total(); sum != fs.Occurrences {
		return nil, &SnapshotError{Field: name, Reason: fmt.Sprintf("type histogram sums to %d, occurrences is %d", sum, fs.Occurrences)}
	}

	if err := loadHistogram(fp.patterns, fs.PatternHistogram, knownPatternTags); err != nil {
		return nil, &SnapshotError{Field: name, Reason: "pattern histogram: " + err.Error()}
	}
	if sum := fp.patterns.total(); sum > fs.Occurrences {
		return nil, &SnapshotError{Field: name, Reason: fmt.Sprintf("pattern histogram sums to %d, more than %d occurrences", sum, fs.Occurrences)}
	}

	if len(fs.UniqueValues) > p.uniqueLimit {
		return nil, &SnapshotError{Field: name, Reason: fmt.Sprintf("%d unique values exceed limit %d", len(fs.UniqueValues), p.uniqueLimit)}
	}
	for _, u := range fs.UniqueValues {
		fp.uniques[u] = struct{}{}
	}
	return fp, nil
}

func loadHistogram(c *counter, entries []Count, known map[string]bool) error {
	for _, e := range entries {
		if !known[e.Tag] {
			return fmt.Errorf("unknown tag %q", e.Tag)
		}
		if e.Count <= 0 {
			return fmt.Errorf("tag %q has non-positive count %d", e.Tag, e.Count)
		}
		if _, dup := c.counts[e.Tag]; dup {
			return fmt.Errorf("tag %q repeated", e.Tag)
		}
		c.order = append(c.order, e.Tag)
		c.counts[e.Tag] = e.Count
	}
	return nil
}
