package profile

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/placer/internal/value"
)

func observeAll(p *Profiler, recs ...value.Object) {
	for _, rec := range recs {
		p.Observe(rec)
	}
}

func TestDetectPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"192.168.1.1", PatternIPAddress},
		{"999.1.1", PatternNone},
		{"alice@example.com", PatternEmail},
		{"alice@example", PatternNone},
		{"https://example.com/x", PatternURL},
		{"http://x", PatternURL},
		{"ftp://x", PatternNone},
		{"123E4567-E89B-12D3-A456-426614174000", PatternUUID},
		{"2024-01-15T10:30:00Z", PatternISOTimestamp},
		{"2024-01-15 10:30:00", PatternISOTimestamp},
		{"2024-01-15", PatternNone},
		{"", PatternNone},
		{"1.2.3.4\n", PatternIPAddress},
		{"alice@example.com\n", PatternEmail},
		{"123e4567-e89b-12d3-a456-426614174000\n", PatternUUID},
		{"1.2.3.4\n\n", PatternNone},
		{"1.2.3.4 ", PatternNone},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPattern(tt.in))
		})
	}
}

func TestObserveBasicMetrics(t *testing.T) {
	p := New()
	observeAll(p,
		value.Object{"name": value.String("a"), "age": value.Int(30)},
		value.Object{"name": value.String("b"), "age": value.String("31")},
		value.Object{"name": value.String("a")},
		value.Object{"other": value.Null{}},
	)

	assert.Equal(t, int64(4), p.TotalRecords())
	assert.Equal(t, []string{"age", "name", "other"}, p.Fields())

	assert.InDelta(t, 0.75, p.Frequency("name"), 1e-9)
	assert.InDelta(t, 0.5, p.Frequency("age"), 1e-9)

	dominant, stability := p.TypeStability("name")
	assert.Equal(t, "string", dominant)
	assert.InDelta(t, 1.0, stability, 1e-9)

	assert.InDelta(t, 2.0/3.0, p.Cardinality("name"), 1e-9)
	assert.Equal(t, 2, p.UniqueCount("name"))
}

func TestTypeStabilityTieUsesFirstSeen(t *testing.T) {
	p := New()
	observeAll(p,
		value.Object{"age": value.String("31")},
		value.Object{"age": value.Int(30)},
	)

	dominant, stability := p.TypeStability("age")
	assert.Equal(t, "string", dominant)
	assert.InDelta(t, 0.5, stability, 1e-9)

	q := New()
	observeAll(q,
		value.Object{"age": value.Int(30)},
		value.Object{"age": value.String("31")},
	)
	dominant, _ = q.TypeStability("age")
	assert.Equal(t, "integer", dominant)
}

func TestBooleansAreNotIntegers(t *testing.T) {
	p := New()
	observeAll(p,
		value.Object{"flag": value.Bool(true)},
		value.Object{"flag": value.Int(1)},
		value.Object{"flag": value.Float(1)},
	)

	a := p.Analysis("flag")
	assert.Equal(t, map[string]int64{"boolean": 1, "integer": 1, "float": 1}, a.TypeDistribution)
	assert.Equal(t, 3, a.UniqueValueCount)
	assert.Equal(t, "boolean", a.DominantType)
}

func TestHistogramSumsToOccurrences(t *testing.T) {
	p := New()
	values := []value.Value{
		value.Null{}, value.Bool(false), value.Int(1), value.Float(2.5),
		value.String("x"), value.Array{}, value.Object{},
	}
	for i := 0; i < 50; i++ {
		rec := value.Object{"mixed": values[i%len(values)]}
		if i%3 == 0 {
			rec["sometimes"] = value.Int(int64(i))
		}
		p.Observe(rec)
	}

	for name, fs := range p.Export().Fields {
		var sum int64
		for _, c := range fs.TypeHistogram {
			sum += c.Count
		}
		assert.Equal(t, fs.Occurrences, sum, name)
	}
}

func TestUniqueCapSaturates(t *testing.T) {
	const limit = 100
	p := New(WithUniqueLimit(limit))

	for i := 0; i < 250; i++ {
		p.Observe(value.Object{"id": value.Int(int64(i))})
	}

	assert.Equal(t, limit, p.UniqueCount("id"))
	assert.Equal(t, 1.0, p.Cardinality("id"))
	assert.True(t, p.Analysis("id").UniqueSaturated)
}

func TestSaturationReportsOneEvenWithRepeats(t *testing.T) {
	p := New(WithUniqueLimit(2))
	observeAll(p,
		value.Object{"f": value.String("a")},
		value.Object{"f": value.String("b")},
		value.Object{"f": value.String("a")},
		value.Object{"f": value.String("a")},
	)

	assert.Equal(t, 1.0, p.Cardinality("f"))
}

func TestCardinalityLowForEnum(t *testing.T) {
	p := New()
	for i := 0; i < 100; i++ {
		p.Observe(value.Object{"status": value.String([]string{"active", "inactive"}[i%2])})
	}
	assert.InDelta(t, 0.02, p.Cardinality("status"), 1e-9)
}

func TestStickyFlags(t *testing.T) {
	p := New()
	observeAll(p,
		value.Object{"meta": value.Object{"k": value.Int(1)}, "tags": value.Array{value.String("a")}},
		value.Object{"meta": value.String("flat"), "tags": value.String("flat")},
		value.Object{"meta": value.Int(3), "tags": value.Null{}},
	)

	assert.True(t, p.IsNested("meta"))
	assert.True(t, p.IsArray("tags"))
	assert.False(t, p.IsArray("meta"))
	assert.False(t, p.IsNested("tags"))
}

func TestCompositeValuesAreOpaque(t *testing.T) {
	p := New()
	p.Observe(value.Object{"meta": value.Object{"ip": value.String("10.0.0.1")}})

	assert.Equal(t, 0, p.UniqueCount("meta"))
	assert.Equal(t, PatternNone, p.DominantPattern("meta"))
	assert.Equal(t, []string{"meta"}, p.Fields())
}

func TestDominantPattern(t *testing.T) {
	p := New()
	observeAll(p,
		value.Object{"contact": value.String("a@example.com")},
		value.Object{"contact": value.String("https://example.com")},
		value.Object{"contact": value.String("b@example.com")},
		value.Object{"contact": value.String("plain")},
	)
	assert.Equal(t, PatternEmail, p.DominantPattern("contact"))

	q := New()
	observeAll(q,
		value.Object{"x": value.String("https://example.com")},
		value.Object{"x": value.String("a@example.com")},
	)
	assert.Equal(t, PatternURL, q.DominantPattern("x"))
}

func TestUnseenFieldDefaults(t *testing.T) {
	p := New()
	assert.Equal(t, 0.0, p.Frequency("ghost"))

	p.Observe(value.Object{"a": value.Int(1)})

	dominant, stability := p.TypeStability("ghost")
	assert.Equal(t, TypeUnknown, dominant)
	assert.Equal(t, 0.0, stability)
	assert.Equal(t, 0.0, p.Frequency("ghost"))
	assert.Equal(t, 0.0, p.Cardinality("ghost"))
	assert.Equal(t, PatternNone, p.DominantPattern("ghost"))

	a := p.Analysis("ghost")
	assert.Equal(t, int64(0), a.TotalOccurrences)
	assert.Empty(t, a.TypeDistribution)
}

func TestSummary(t *testing.T) {
	p := New()
	observeAll(p,
		value.Object{"b": value.Int(1), "meta": value.Object{}},
		value.Object{"a": value.Int(2), "tags": value.Array{}},
	)

	s := p.Summary()
	assert.Equal(t, int64(2), s.RecordsAnalyzed)
	assert.Equal(t, 4, s.FieldsDiscovered)
	assert.Equal(t, 1, s.NestedFields)
	assert.Equal(t, 1, s.ArrayFields)

	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.FieldName
	}
	assert.Equal(t, []string{"a", "b", "meta", "tags"}, names)
}

func TestIPFieldScenario(t *testing.T) {
	p := New()
	for i := 0; i < 1000; i++ {
		rec := value.Object{"username": value.String(fmt.Sprintf("user_%d", i))}
		if i < 950 {
			rec["ip_address"] = value.String(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
		}
		p.Observe(rec)
	}

	a := p.Analysis("ip_address")
	assert.InDelta(t, 0.95, a.Frequency, 1e-9)
	assert.Equal(t, "string", a.DominantType)
	assert.InDelta(t, 1.0, a.TypeStability, 1e-9)
	assert.Equal(t, PatternIPAddress, a.DominantPattern)
	require.Equal(t, int64(950), a.TotalOccurrences)
}

func TestWithUniqueLimitIgnoresNonPositive(t *testing.T) {
	assert.Equal(t, DefaultUniqueLimit, New(WithUniqueLimit(0)).UniqueLimit())
	assert.Equal(t, DefaultUniqueLimit, New(WithUniqueLimit(-5)).UniqueLimit())
	assert.Equal(t, 7, New(WithUniqueLimit(7)).UniqueLimit())
}
