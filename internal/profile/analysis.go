package profile

// FieldAnalysis is the derived metric snapshot of one field.
type FieldAnalysis struct {
	FieldName        string           `json:"field_name"`
	Frequency        float64          `json:"frequency"`
	TotalOccurrences int64            `json:"total_occurrences"`
	DominantType     string           `json:"dominant_type"`
	TypeStability    float64          `json:"type_stability"`
	TypeDistribution map[string]int64 `json:"type_distribution"`
	Cardinality      float64          `json:"cardinality"`
	UniqueValueCount int              `json:"unique_value_count"`
	UniqueSaturated  bool             `json:"unique_saturated"`
	IsNested         bool             `json:"is_nested"`
	IsArray          bool             `json:"is_array"`
	DominantPattern  string           `json:"dominant_pattern"`
}

// Analysis returns the metric snapshot of field. Unseen fields get neutral
// defaults.
func (p *Profiler) Analysis(field string) FieldAnalysis {
	dominant, stability := p.TypeStability(field)
	a := FieldAnalysis{
		FieldName:        field,
		Frequency:        p.Frequency(field),
		DominantType:     dominant,
		TypeStability:    stability,
		TypeDistribution: map[string]int64{},
		Cardinality:      p.Cardinality(field),
		UniqueValueCount: p.UniqueCount(field),
		IsNested:         p.IsNested(field),
		IsArray:          p.IsArray(field),
		DominantPattern:  p.DominantPattern(field),
	}
	if fp, ok := p.fields[field]; ok {
		a.TotalOccurrences = fp.occurrences
		a.TypeDistribution = fp.types.asMap()
		a.UniqueSaturated = p.saturated(fp)
	}
	return a
}

// Analyses returns the analysis of every observed field, sorted by name.
func (p *Profiler) Analyses() []FieldAnalysis {
	names := p.Fields()
	out := make([]FieldAnalysis, len(names))
	for i, name := range names {
		out[i] = p.Analysis(name)
	}
	return out
}

// Summary aggregates the profiler state.
type Summary struct {
	RecordsAnalyzed  int64           `json:"records_analyzed"`
	FieldsDiscovered int             `json:"fields_discovered"`
	NestedFields     int             `json:"nested_fields"`
	ArrayFields      int             `json:"array_fields"`
	Fields           []FieldAnalysis `json:"fields"`
}

// Summary returns the aggregate view of everything observed so far.
func (p *Profiler) Summary() Summary {
	s := Summary{
		RecordsAnalyzed:  p.totalRecords,
		FieldsDiscovered: len(p.fields),
		Fields:           p.Analyses(),
	}
	for _, fp := range p.fields {
		if fp.nested {
			s.NestedFields++
		}
		if fp.array {
			s.ArrayFields++
		}
	}
	return s
}
