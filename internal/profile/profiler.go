package profile

import (
	"sort"

	"github.com/roach88/placer/internal/value"
)

// DefaultUniqueLimit caps the distinct-value set kept per field.
const DefaultUniqueLimit = 10000

// TypeUnknown is the dominant type reported for a field never observed.
const TypeUnknown = "unknown"

// fieldProfile holds the running statistics of one canonical field.
type fieldProfile struct {
	occurrences int64
	types       *counter
	patterns    *counter
	uniques     map[string]struct{}
	nested      bool
	array       bool
}

func newFieldProfile() *fieldProfile {
	return &fieldProfile{
		types:    newCounter(),
		patterns: newCounter(),
		uniques:  make(map[string]struct{}),
	}
}

// Profiler accumulates field statistics across records.
type Profiler struct {
	totalRecords int64
	fields       map[string]*fieldProfile
	uniqueLimit  int
}

// Option configures a Profiler.
type Option func(*Profiler)

// WithUniqueLimit sets the per-field cap on tracked distinct values.
// Non-positive limits are ignored.
func WithUniqueLimit(n int) Option {
	return func(p *Profiler) {
		if n > 0 {
			p.uniqueLimit = n
		}
	}
}

// New creates an empty Profiler.
func New(opts ...Option) *Profiler {
	p := &Profiler{
		fields:      make(map[string]*fieldProfile),
		uniqueLimit: DefaultUniqueLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// UniqueLimit returns the configured distinct-value cap.
func (p *Profiler) UniqueLimit() int {
	return p.uniqueLimit
}

// TotalRecords returns the number of records observed.
func (p *Profiler) TotalRecords() int64 {
	return p.totalRecords
}

// Observe folds one normalized record into the statistics.
func (p *Profiler) Observe(rec value.Object) {
	p.totalRecords++
	for name, v := range rec {
		fp, ok := p.fields[name]
		if !ok {
			fp = newFieldProfile()
			p.fields[name] = fp
		}
		p.observeValue(fp, v)
	}
}

func (p *Profiler) observeValue(fp *fieldProfile, v value.Value) {
	fp.occurrences++
	fp.types.inc(string(value.Tag(v)))

	switch val := v.(type) {
	case value.Object:
		fp.nested = true
		return
	case value.Array:
		fp.array = true
		return
	case value.String:
		if tag := DetectPattern(string(val)); tag != PatternNone {
			fp.patterns.inc(tag)
		}
	}

	if len(fp.uniques) < p.uniqueLimit {
		fp.uniques[value.Stringify(v)] = struct{}{}
	}
}

// Fields returns every observed field name, sorted.
func (p *Profiler) Fields() []string {
	names := make([]string, 0, len(p.fields))
	for name := range p.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Frequency returns the fraction of records containing field.
func (p *Profiler) Frequency(field string) float64 {
	fp, ok := p.fields[field]
	if !ok || p.totalRecords == 0 {
		return 0
	}
	return float64(fp.occurrences) / float64(p.totalRecords)
}

// TypeStability returns the dominant type of field and the fraction of its
// values carrying that type.
func (p *Profiler) TypeStability(field string) (string, float64) {
	fp, ok := p.fields[field]
	if !ok || fp.occurrences == 0 {
		return TypeUnknown, 0
	}
	tag, count, found := fp.types.top()
	if !found {
		return TypeUnknown, 0
	}
	return tag, float64(count) / float64(fp.occurrences)
}

// Cardinality returns distinct values over occurrences, capped at 1.0.
// A saturated distinct-value set always reports exactly 1.0.
func (p *Profiler) Cardinality(field string) float64 {
	fp, ok := p.fields[field]
	if !ok || fp.occurrences == 0 {
		return 0
	}
	if p.saturated(fp) {
		return 1.0
	}
	ratio := float64(len(fp.uniques)) / float64(fp.occurrences)
	if ratio > 1.0 {
		return 1.0
	}
	return ratio
}

func (p *Profiler) saturated(fp *fieldProfile) bool {
	return len(fp.uniques) >= p.uniqueLimit
}

// DominantPattern returns the most frequent pattern tag of field, or
// PatternNone when no string value matched a known pattern.
func (p *Profiler) DominantPattern(field string) string {
	fp, ok := p.fields[field]
	if !ok {
		return PatternNone
	}
	tag, _, found := fp.patterns.top()
	if !found {
		return PatternNone
	}
	return tag
}

// IsNested reports whether field ever held an object.
func (p *Profiler) IsNested(field string) bool {
	fp, ok := p.fields[field]
	return ok && fp.nested
}

// IsArray reports whether field ever held an array.
func (p *Profiler) IsArray(field string) bool {
	fp, ok := p.fields[field]
	return ok && fp.array
}

// UniqueCount returns the size of the tracked distinct-value set.
func (p *Profiler) UniqueCount(field string) int {
	fp, ok := p.fields[field]
	if !ok {
		return 0
	}
	return len(fp.uniques)
}
