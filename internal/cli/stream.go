package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/placer/internal/config"
	"github.com/roach88/placer/internal/source"
)

// StreamOptions holds flags for the stream command.
type StreamOptions struct {
	*AdvisorOptions
	URL        string
	BatchSize  int
	BatchDelay time.Duration
	Timeout    time.Duration
	Total      int
}

// NewStreamCommand creates the stream command.
func NewStreamCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StreamOptions{AdvisorOptions: &AdvisorOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Recommend placements for records streamed from an HTTP API",
		Long: `Pull records in batches from an HTTP record API and refresh the
placement recommendation as they arrive.

The API must answer GET {url}/ with one record and GET {url}/record/{n}
with a batch of n records, either as a JSON array or wrapped in
{"records": [...]}. Ctrl-C stops ingestion and reports what was seen.

Examples:
  placer stream --url http://localhost:8000 --total 5000
  placer stream --url http://localhost:8000 --db placer.db --resume
  placer stream --config placer.cue --batch-size 50 --batch-delay 250ms`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdvisor(cmd, opts.AdvisorOptions, func(cfg *config.Config) {
				opts.override(cmd, cfg)
			}, opts.open)
		},
	}

	addAdvisorFlags(cmd, opts.AdvisorOptions)
	cmd.Flags().StringVar(&opts.URL, "url", "", "base URL of the record API (overrides source.url)")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", source.DefaultBatchSize, "records requested per call")
	cmd.Flags().DurationVar(&opts.BatchDelay, "batch-delay", source.DefaultBatchDelay, "pause between batches")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", source.DefaultTimeout, "per-request timeout")
	cmd.Flags().IntVar(&opts.Total, "total", 0, "stop after this many records (0 streams until the API runs dry)")

	return cmd
}

// override applies explicitly set flags over the loaded configuration.
func (o *StreamOptions) override(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.Source.URL = o.URL
	}
	if flags.Changed("batch-size") {
		cfg.Source.BatchSize = o.BatchSize
	}
	if flags.Changed("batch-delay") {
		cfg.Source.BatchDelayMS = int(o.BatchDelay / time.Millisecond)
	}
	if flags.Changed("timeout") {
		cfg.Source.TimeoutMS = int(o.Timeout / time.Millisecond)
	}
	if flags.Changed("total") {
		cfg.Source.Total = o.Total
	}
}

func (o *StreamOptions) open(ctx context.Context, cfg config.Config, logger *slog.Logger) (source.Source, error) {
	if cfg.Source.URL == "" {
		return nil, fmt.Errorf("no source URL: set --url or source.url")
	}
	src := source.NewHTTPSource(cfg.Source.URL, append(cfg.HTTPOptions(), source.WithHTTPLogger(logger))...)

	logger.Info("checking record API", "url", cfg.Source.URL)
	if err := src.Ping(ctx); err != nil {
		src.Close()
		return nil, fmt.Errorf("record API at %s is not answering: %w", cfg.Source.URL, err)
	}
	return src, nil
}
