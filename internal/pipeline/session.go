package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/placer/internal/classify"
	"github.com/roach88/placer/internal/profile"
	"github.com/roach88/placer/internal/resolver"
	"github.com/roach88/placer/internal/source"
	"github.com/roach88/placer/internal/value"
)

// IngestedAtField is the server-side ingestion timestamp stamped onto each
// record when stamping is enabled.
const IngestedAtField = "sys_ingested_at"

// DefaultReclassifyEvery is how often Run refreshes placement decisions.
const DefaultReclassifyEvery = 100

// Session is a single-writer ingestion session.
type Session struct {
	mu       sync.Mutex
	resolver *resolver.Resolver
	profiler *profile.Profiler
	clock    *Clock

	config          classify.Config
	resolverOpts    []resolver.Option
	uniqueLimit     int
	reclassifyEvery int
	stamp           func() time.Time
	onReclassify    func(seq int64, c *classify.Classifier)
	ids             IDGenerator
	logger          *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithClassifierConfig sets the classifier thresholds.
func WithClassifierConfig(cfg classify.Config) Option {
	return func(s *Session) {
		s.config = cfg
	}
}

// WithResolverOptions passes options to the session's resolver.
func WithResolverOptions(opts ...resolver.Option) Option {
	return func(s *Session) {
		s.resolverOpts = append(s.resolverOpts, opts...)
	}
}

// WithUniqueLimit sets the profiler's distinct-value cap.
func WithUniqueLimit(n int) Option {
	return func(s *Session) {
		s.uniqueLimit = n
	}
}

// WithReclassifyEvery sets how many records Run ingests between
// classifications. Zero disables periodic classification.
func WithReclassifyEvery(n int) Option {
	return func(s *Session) {
		if n >= 0 {
			s.reclassifyEvery = n
		}
	}
}

// WithIngestStamp stamps every ingested record with IngestedAtField using
// now, unless the record already carries one.
func WithIngestStamp(now func() time.Time) Option {
	return func(s *Session) {
		s.stamp = now
	}
}

// WithReclassifyHook is called after every periodic classification in Run.
func WithReclassifyHook(fn func(seq int64, c *classify.Classifier)) Option {
	return func(s *Session) {
		s.onReclassify = fn
	}
}

// WithIDGenerator sets the checkpoint id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Session) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a session with a fresh resolver and profiler.
func New(opts ...Option) (*Session, error) {
	s := &Session{
		config:          classify.DefaultConfig(),
		reclassifyEvery: DefaultReclassifyEvery,
		ids:             UUIDv7Generator{},
		logger:          slog.Default(),
		clock:           NewClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid classifier config: %w", err)
	}

	s.resolver = s.newResolver()
	s.profiler = s.newProfiler()
	return s, nil
}

func (s *Session) newResolver() *resolver.Resolver {
	opts := append([]resolver.Option{resolver.WithLogger(s.logger)}, s.resolverOpts...)
	return resolver.New(opts...)
}

func (s *Session) newProfiler() *profile.Profiler {
	return profile.New(profile.WithUniqueLimit(s.uniqueLimit))
}

// Ingest resolves rec and folds it into the profile. It returns the raw to
// canonical name mapping used for the record.
func (s *Session) Ingest(rec value.Object) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Reject before touching the resolver so a bad record leaves no trace.
	for key := range rec {
		if key == "" {
			return nil, &PipelineError{
				Code:    ErrCodeInputShape,
				Message: "record has an empty field name",
				Seq:     s.clock.Current(),
				Err:     resolver.ErrEmptyName,
			}
		}
	}

	normalized, mapping, err := s.resolver.ResolveRecord(rec)
	if err != nil {
		return nil, &PipelineError{Code: ErrCodeInputShape, Message: "resolve record", Seq: s.clock.Current(), Err: err}
	}
	if s.stamp != nil {
		if _, ok := normalized[IngestedAtField]; !ok {
			normalized[IngestedAtField] = value.String(s.stamp().UTC().Format(time.RFC3339Nano))
		}
	}

	s.profiler.Observe(normalized)
	s.clock.Next()
	return mapping, nil
}

// IngestJSON decodes data as one record and ingests it.
func (s *Session) IngestJSON(data []byte) (map[string]string, error) {
	rec, err := value.DecodeRecord(data)
	if err != nil {
		return nil, &PipelineError{Code: ErrCodeInputShape, Message: "decode record", Seq: s.Seq(), Err: err}
	}
	return s.Ingest(rec)
}

// IngestAny converts a generic Go mapping and ingests it.
func (s *Session) IngestAny(raw any) (map[string]string, error) {
	rec, err := value.RecordFromAny(raw)
	if err != nil {
		return nil, &PipelineError{Code: ErrCodeInputShape, Message: "convert record", Seq: s.Seq(), Err: err}
	}
	return s.Ingest(rec)
}

// RunStats reports what Run consumed.
type RunStats struct {
	Records           int64 `json:"records"`
	Reclassifications int   `json:"reclassifications"`
}

// Run drains src into the session until io.EOF, an error, or cancellation.
// Every ReclassifyEvery records it classifies and logs the placement summary.
func (s *Session) Run(ctx context.Context, src source.Source) (RunStats, error) {
	var stats RunStats
	s.logger.Info("ingestion starting", "seq", s.Seq())

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info("ingestion stopping: context cancelled", "records", stats.Records)
			return stats, err
		}

		rec, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				s.logger.Info("ingestion stopping: context cancelled", "records", stats.Records)
				return stats, err
			}
			if value.IsInputShapeError(err) {
				return stats, &PipelineError{Code: ErrCodeInputShape, Message: "source yielded a malformed record", Seq: s.Seq(), Err: err}
			}
			return stats, &PipelineError{Code: ErrCodeSourceFailed, Message: "read from source", Seq: s.Seq(), Err: err}
		}

		if _, err := s.Ingest(rec); err != nil {
			return stats, err
		}
		stats.Records++

		if s.reclassifyEvery > 0 && stats.Records%int64(s.reclassifyEvery) == 0 {
			s.reclassify()
			stats.Reclassifications++
		}
	}

	s.logger.Info("ingestion finished", "records", stats.Records, "seq", s.Seq())
	return stats, nil
}

func (s *Session) reclassify() {
	seq, c := s.classifyAt()
	sum := c.Summary()
	s.logger.Info("placement updated",
		"seq", seq,
		"fields", sum.TotalFields,
		"sql", sum.SQLOnly,
		"document", sum.DocumentOnly,
		"both", sum.Both,
		"unique", sum.UniqueFields)
	if s.onReclassify != nil {
		s.onReclassify(seq, c)
	}
}

// Classify runs the classifier over a consistent copy of the current
// profile. Ingestion may continue while it runs.
func (s *Session) Classify() *classify.Classifier {
	_, c := s.classifyAt()
	return c
}

func (s *Session) classifyAt() (int64, *classify.Classifier) {
	s.mu.Lock()
	seq := s.clock.Current()
	analyses := s.profiler.Analyses()
	s.mu.Unlock()

	return seq, s.config.ClassifyAll(analyses)
}

// Seq returns the number of records ingested so far.
func (s *Session) Seq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Current()
}

// Analyses returns a copy of every field analysis.
func (s *Session) Analyses() []profile.FieldAnalysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiler.Analyses()
}

// Summary returns the profiler summary.
func (s *Session) Summary() profile.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiler.Summary()
}

// ResolverStats returns what the resolver has learned.
func (s *Session) ResolverStats() resolver.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolver.Stats()
}

// Resolve returns the canonical name for raw, learning it if new.
func (s *Session) Resolve(raw string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolver.Resolve(raw)
}

// Config returns the classifier config in effect.
func (s *Session) Config() classify.Config {
	return s.config
}
