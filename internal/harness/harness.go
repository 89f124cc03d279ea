package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/placer/internal/pipeline"
	"github.com/roach88/placer/internal/report"
	"github.com/roach88/placer/internal/source"
	"github.com/roach88/placer/internal/testutil"
	"github.com/roach88/placer/internal/value"
)

// ScenarioEpoch is the first ingestion timestamp stamped during a scenario.
var ScenarioEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Harness feeds one scenario through a fresh session.
type Harness struct {
	session *pipeline.Session
	clock   *testutil.SteppingClock
	result  *Result
	logger  *slog.Logger
}

// Run executes a scenario and returns the result. Assertion failures are
// reported in the result; the error is reserved for scenarios that cannot
// run at all.
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := scenario.Settings()
	if err != nil {
		return nil, err
	}

	h := &Harness{
		clock:  testutil.NewSteppingClock(ScenarioEpoch, time.Second),
		result: NewResult(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	opts := append(cfg.SessionOptions(h.clock.Now),
		pipeline.WithReclassifyEvery(0),
		pipeline.WithIDGenerator(testutil.NewSequentialIDs(scenario.Name)),
		pipeline.WithLogger(h.logger),
	)
	h.session, err = pipeline.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	records, err := scenarioRecords(scenario)
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		if err := h.ingest(rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}

	h.result.Records = h.session.Seq()
	h.result.Analyses = h.session.Analyses()
	h.result.Placement = report.FromClassifier(h.session.Classify())

	for _, errMsg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(errMsg)
	}
	return h.result, nil
}

func (h *Harness) ingest(rec value.Object) error {
	mapping, err := h.session.Ingest(rec)
	if err != nil {
		return err
	}
	for raw, canonical := range mapping {
		h.result.Mapping[raw] = canonical
	}
	return nil
}

func scenarioRecords(s *Scenario) ([]value.Object, error) {
	if s.Generate != nil {
		gen := source.NewGenerator(s.Generate.Seed, source.WithLimit(s.Generate.Count))
		return source.Collect(context.Background(), gen, 0)
	}

	out := make([]value.Object, len(s.Records))
	for i, raw := range s.Records {
		rec, err := value.RecordFromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("records[%d]: %w", i, err)
		}
		out[i] = rec
	}
	return out, nil
}
