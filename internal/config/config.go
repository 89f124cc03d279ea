package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/placer/internal/classify"
	"github.com/roach88/placer/internal/pipeline"
	"github.com/roach88/placer/internal/profile"
	"github.com/roach88/placer/internal/resolver"
	"github.com/roach88/placer/internal/source"
)

//go:embed schema.cue
var schemaCUE string

// Config is the complete advisor configuration.
type Config struct {
	Classifier classify.Config `json:"classifier" yaml:"classifier"`
	Profiler   ProfilerConfig  `json:"profiler" yaml:"profiler"`
	Resolver   ResolverConfig  `json:"resolver" yaml:"resolver"`
	Pipeline   PipelineConfig  `json:"pipeline" yaml:"pipeline"`
	Source     SourceConfig    `json:"source" yaml:"source"`
	Store      StoreConfig     `json:"store" yaml:"store"`
}

// ProfilerConfig configures field profiling.
type ProfilerConfig struct {
	UniqueLimit int `json:"unique_limit" yaml:"unique_limit"`
}

// ResolverConfig configures name resolution. Synonyms are added after the
// built-in table unless ReplaceDefaults is set.
type ResolverConfig struct {
	ReplaceDefaults bool                    `json:"replace_defaults" yaml:"replace_defaults"`
	Synonyms        []resolver.SynonymGroup `json:"synonyms" yaml:"synonyms"`
}

// PipelineConfig configures the ingestion session.
type PipelineConfig struct {
	ReclassifyEvery int  `json:"reclassify_every" yaml:"reclassify_every"`
	StampIngestedAt bool `json:"stamp_ingested_at" yaml:"stamp_ingested_at"`
}

// SourceConfig configures the HTTP record source.
type SourceConfig struct {
	URL          string `json:"url" yaml:"url"`
	BatchSize    int    `json:"batch_size" yaml:"batch_size"`
	BatchDelayMS int    `json:"batch_delay_ms" yaml:"batch_delay_ms"`
	TimeoutMS    int    `json:"timeout_ms" yaml:"timeout_ms"`
	Total        int    `json:"total" yaml:"total"`
}

// StoreConfig configures the checkpoint store. An empty Path disables it.
type StoreConfig struct {
	Path string `json:"path" yaml:"path"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Classifier: classify.DefaultConfig(),
		Profiler:   ProfilerConfig{UniqueLimit: profile.DefaultUniqueLimit},
		Pipeline:   PipelineConfig{ReclassifyEvery: pipeline.DefaultReclassifyEvery},
		Source: SourceConfig{
			URL:          "http://localhost:8000",
			BatchSize:    source.DefaultBatchSize,
			BatchDelayMS: int(source.DefaultBatchDelay / time.Millisecond),
			TimeoutMS:    int(source.DefaultTimeout / time.Millisecond),
		},
	}
}

// ConfigError reports an unreadable or invalid configuration.
type ConfigError struct {
	// Path is the file the configuration came from, if any.
	Path string

	// Field is the offending key, if known.
	Field string

	// Message is a human-readable description.
	Message string

	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.Path != "" {
		b.WriteString(" " + e.Path)
	}
	if e.Field != "" {
		b.WriteString(": " + e.Field)
	}
	b.WriteString(": " + e.Message)
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError returns true if err is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Load reads a configuration file. The format follows the extension:
// .yaml and .yml are YAML, .cue is CUE. The result is validated.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &ConfigError{Path: path, Message: "read failed", Err: err}
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		cfg, err = ParseYAML(data)
	case ".cue":
		cfg, err = ParseCUE(data, path)
	default:
		return Config{}, &ConfigError{Path: path, Message: fmt.Sprintf("unsupported extension %q (want .yaml, .yml or .cue)", ext)}
	}
	if err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) && ce.Path == "" {
			ce.Path = path
		}
		return Config{}, err
	}
	return cfg, nil
}

// ParseYAML decodes and validates a YAML configuration over Default.
// Unknown keys are rejected. An empty document yields Default.
func ParseYAML(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &ConfigError{Message: "invalid YAML", Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseCUE unifies a CUE configuration with the embedded schema and decodes
// it over Default. filename is used in error positions.
func ParseCUE(data []byte, filename string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, &ConfigError{Message: "embedded schema", Err: err}
	}

	file := ctx.CompileBytes(data, cue.Filename(filename))
	if err := file.Err(); err != nil {
		return Config{}, cueError("invalid CUE", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(file)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, cueError("schema violation", err)
	}

	cfg := Default()
	if err := v.Decode(&cfg); err != nil {
		return Config{}, cueError("decode", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// cueError keeps the first CUE error and its path.
func cueError(msg string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ConfigError{Message: msg, Err: err}
	}
	first := errs[0]
	return &ConfigError{
		Field:   strings.Join(first.Path(), "."),
		Message: msg,
		Err:     first,
	}
}

// Validate checks cross-field constraints the decoders cannot express.
func (c Config) Validate() error {
	if err := c.Classifier.Validate(); err != nil {
		return &ConfigError{Field: "classifier", Message: "invalid thresholds", Err: err}
	}
	if c.Profiler.UniqueLimit <= 0 {
		return &ConfigError{Field: "profiler.unique_limit", Message: fmt.Sprintf("must be positive, got %d", c.Profiler.UniqueLimit)}
	}
	if c.Pipeline.ReclassifyEvery < 0 {
		return &ConfigError{Field: "pipeline.reclassify_every", Message: "must not be negative"}
	}
	for i, g := range c.Resolver.Synonyms {
		if strings.TrimSpace(g.Canonical) == "" {
			return &ConfigError{Field: fmt.Sprintf("resolver.synonyms[%d].canonical", i), Message: "is empty"}
		}
		for j, v := range g.Variants {
			if strings.TrimSpace(v) == "" {
				return &ConfigError{Field: fmt.Sprintf("resolver.synonyms[%d].variants[%d]", i, j), Message: "is empty"}
			}
		}
	}
	if c.Source.BatchSize <= 0 {
		return &ConfigError{Field: "source.batch_size", Message: "must be positive"}
	}
	if c.Source.BatchDelayMS < 0 || c.Source.TimeoutMS <= 0 || c.Source.Total < 0 {
		return &ConfigError{Field: "source", Message: "delays and counts must not be negative"}
	}
	return nil
}

// ResolverOptions converts the resolver section into resolver options.
func (c Config) ResolverOptions() []resolver.Option {
	opts := []resolver.Option{resolver.WithSynonyms(c.Resolver.Synonyms)}
	if c.Resolver.ReplaceDefaults {
		opts = append(opts, resolver.WithoutDefaultSynonyms())
	}
	return opts
}

// SessionOptions converts the configuration into pipeline options.
// now stamps records when stamping is enabled; nil means time.Now.
func (c Config) SessionOptions(now func() time.Time) []pipeline.Option {
	opts := []pipeline.Option{
		pipeline.WithClassifierConfig(c.Classifier),
		pipeline.WithUniqueLimit(c.Profiler.UniqueLimit),
		pipeline.WithReclassifyEvery(c.Pipeline.ReclassifyEvery),
		pipeline.WithResolverOptions(c.ResolverOptions()...),
	}
	if c.Pipeline.StampIngestedAt {
		if now == nil {
			now = time.Now
		}
		opts = append(opts, pipeline.WithIngestStamp(now))
	}
	return opts
}

// HTTPOptions converts the source section into HTTP source options.
func (c Config) HTTPOptions() []source.HTTPOption {
	return []source.HTTPOption{
		source.WithBatchSize(c.Source.BatchSize),
		source.WithBatchDelay(time.Duration(c.Source.BatchDelayMS) * time.Millisecond),
		source.WithTotal(c.Source.Total),
		source.WithHTTPClient(&http.Client{Timeout: time.Duration(c.Source.TimeoutMS) * time.Millisecond}),
	}
}
