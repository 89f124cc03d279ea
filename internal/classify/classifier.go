package classify

import (
	"fmt"
	"math"
	"sort"

	"github.com/roach88/placer/internal/profile"
	"github.com/roach88/placer/internal/value"
)

// Backend names a storage placement.
type Backend string

const (
	BackendSQL      Backend = "sql"
	BackendDocument Backend = "document"
	BackendBoth     Backend = "both"
)

// Rule identifies which cascade step produced a decision.
type Rule string

const (
	RuleMandatoryBoth Rule = "mandatory_both"
	RuleNested        Rule = "nested"
	RuleArray         Rule = "array"
	RuleSparse        Rule = "sparse"
	RuleTypeDrift     Rule = "type_drift"
	RuleStructured    Rule = "structured"
	RuleDefault       Rule = "default"
)

// Metrics is the copy of profile metrics a decision was based on.
type Metrics struct {
	Frequency     float64 `json:"frequency"`
	TypeStability float64 `json:"type_stability"`
	DominantType  string  `json:"dominant_type"`
	IsNested      bool    `json:"is_nested"`
	IsArray       bool    `json:"is_array"`
	Cardinality   float64 `json:"cardinality"`
	IsUnique      bool    `json:"is_unique"`
}

// Decision is the placement of one field.
type Decision struct {
	FieldName  string  `json:"field_name"`
	Backend    Backend `json:"backend"`
	Rule       Rule    `json:"rule"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
	Metrics    Metrics `json:"metrics"`
}

// Relational reports whether the field gets a relational column.
func (d Decision) Relational() bool {
	return d.Backend == BackendSQL || d.Backend == BackendBoth
}

// Document reports whether the field is kept in the document store.
func (d Decision) Document() bool {
	return d.Backend == BackendDocument || d.Backend == BackendBoth
}

var scalarTypes = map[string]bool{
	string(value.TagString):  true,
	string(value.TagInteger): true,
	string(value.TagFloat):   true,
	string(value.TagBoolean): true,
}

// Classify places one field. It is pure and total: every analysis yields a
// decision.
func (c Config) Classify(a profile.FieldAnalysis) Decision {
	unique := a.Cardinality >= c.UniqueCardinality && a.Frequency >= c.SQLFrequency

	d := Decision{
		FieldName: a.FieldName,
		Metrics: Metrics{
			Frequency:     a.Frequency,
			TypeStability: a.TypeStability,
			DominantType:  a.DominantType,
			IsNested:      a.IsNested,
			IsArray:       a.IsArray,
			Cardinality:   a.Cardinality,
		},
	}

	switch {
	case c.isMandatory(a.FieldName):
		d.Backend, d.Rule, d.Confidence = BackendBoth, RuleMandatoryBoth, 1.0
		d.Reason = "Mandatory join field - required in both backends"

	case a.IsNested:
		d.Backend, d.Rule, d.Confidence = BackendDocument, RuleNested, 1.0
		d.Reason = "Contains nested objects - document store keeps nesting intact"

	case a.IsArray:
		d.Backend, d.Rule, d.Confidence = BackendDocument, RuleArray, 1.0
		d.Reason = "Contains arrays - document store holds arrays natively"

	case a.Frequency < c.SparseThreshold:
		d.Backend, d.Rule, d.Confidence = BackendDocument, RuleSparse, 0.9
		d.Reason = fmt.Sprintf("Sparse field (only %s frequency) - document store handles optional fields better", percent(a.Frequency))

	case a.TypeStability < c.SQLTypeStability:
		d.Backend, d.Rule, d.Confidence = BackendDocument, RuleTypeDrift, 0.85
		d.Reason = fmt.Sprintf("Type instability (%s stable) - document store tolerates schema drift", percent(a.TypeStability))

	case a.Frequency >= c.SQLFrequency && a.TypeStability >= c.SQLTypeStability && scalarTypes[a.DominantType]:
		d.Backend, d.Rule = BackendSQL, RuleStructured
		d.Confidence = math.Min(a.Frequency, a.TypeStability)
		d.Reason = fmt.Sprintf("High frequency (%s), stable type (%s), structured", percent(a.Frequency), percent(a.TypeStability))

	default:
		d.Backend, d.Rule, d.Confidence = BackendDocument, RuleDefault, 0.6
		d.Reason = "Ambiguous pattern - document store provides flexibility"
	}

	d.Metrics.IsUnique = unique && d.Relational()
	return d
}

func percent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// Classifier runs the cascade over whole profile sets and keeps the most
// recent decision set for reporting.
type Classifier struct {
	config    Config
	decisions map[string]Decision
}

// New creates a Classifier. The config is validated.
func New(cfg Config) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid classifier config: %w", err)
	}
	return &Classifier{
		config:    cfg,
		decisions: make(map[string]Decision),
	}, nil
}

// ClassifyAll classifies analyses under c and returns a Classifier holding
// the result. Unlike New it does not validate c.
func (c Config) ClassifyAll(analyses []profile.FieldAnalysis) *Classifier {
	cl := &Classifier{config: c}
	cl.ClassifyAll(analyses)
	return cl
}

// Config returns the configuration in effect.
func (c *Classifier) Config() Config {
	return c.config
}

// ClassifyAll classifies every analysis, replacing any previous decision set.
func (c *Classifier) ClassifyAll(analyses []profile.FieldAnalysis) map[string]Decision {
	c.decisions = make(map[string]Decision, len(analyses))
	for _, a := range analyses {
		c.decisions[a.FieldName] = c.config.Classify(a)
	}

	out := make(map[string]Decision, len(c.decisions))
	for k, v := range c.decisions {
		out[k] = v
	}
	return out
}

// Decisions returns the current decision set sorted by field name.
func (c *Classifier) Decisions() []Decision {
	return c.filter(func(Decision) bool { return true })
}

// SQLFields returns decisions that get a relational column (sql or both).
func (c *Classifier) SQLFields() []Decision {
	return c.filter(Decision.Relational)
}

// DocumentFields returns decisions kept in the document store (document or both).
func (c *Classifier) DocumentFields() []Decision {
	return c.filter(Decision.Document)
}

// UniqueFields returns the names of uniqueness constraint candidates.
func (c *Classifier) UniqueFields() []string {
	var out []string
	for _, d := range c.SQLFields() {
		if d.Metrics.IsUnique {
			out = append(out, d.FieldName)
		}
	}
	return out
}

func (c *Classifier) filter(keep func(Decision) bool) []Decision {
	out := make([]Decision, 0, len(c.decisions))
	for _, d := range c.decisions {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FieldName < out[j].FieldName })
	return out
}

// Summary aggregates the current decision set.
type Summary struct {
	TotalFields  int        `json:"total_fields"`
	SQLOnly      int        `json:"sql_only"`
	DocumentOnly int        `json:"document_only"`
	Both         int        `json:"both"`
	UniqueFields int        `json:"unique_fields"`
	Thresholds   Thresholds `json:"thresholds"`
}

// Summary returns counts per backend and the thresholds in effect.
func (c *Classifier) Summary() Summary {
	s := Summary{
		TotalFields:  len(c.decisions),
		UniqueFields: len(c.UniqueFields()),
		Thresholds:   c.config.Thresholds(),
	}
	for _, d := range c.decisions {
		switch d.Backend {
		case BackendSQL:
			s.SQLOnly++
		case BackendDocument:
			s.DocumentOnly++
		case BackendBoth:
			s.Both++
		}
	}
	return s
}
