package harness

import (
	"github.com/roach88/placer/internal/profile"
	"github.com/roach88/placer/internal/report"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Records is the number of records ingested.
	Records int64 `json:"records"`

	// Mapping collects every raw name seen and its canonical name.
	Mapping map[string]string `json:"mapping"`

	Analyses  []profile.FieldAnalysis `json:"analyses"`
	Placement report.Placement        `json:"placement"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Errors:  []string{},
		Mapping: make(map[string]string),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
