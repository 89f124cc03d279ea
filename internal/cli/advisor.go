package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/placer/internal/config"
	"github.com/roach88/placer/internal/pipeline"
	"github.com/roach88/placer/internal/report"
	"github.com/roach88/placer/internal/source"
	"github.com/roach88/placer/internal/store"
)

// AdvisorOptions holds flags shared by the commands that ingest records.
type AdvisorOptions struct {
	*RootOptions
	Database        string
	Resume          bool
	DDL             string // SQL dialect; empty disables DDL output
	Table           string
	Fields          bool
	ReclassifyEvery int
}

// AnalysisResult is the output of an ingesting command.
type AnalysisResult struct {
	report.Report

	// Records is the number of records consumed by this run. Seq also
	// counts records restored from a checkpoint.
	Records     int64  `json:"records"`
	Checkpoint  string `json:"checkpoint,omitempty"`
	Interrupted bool   `json:"interrupted,omitempty"`
}

// sourceOpener opens the record source once the configuration is final.
type sourceOpener func(ctx context.Context, cfg config.Config, logger *slog.Logger) (source.Source, error)

func addAdvisorFlags(cmd *cobra.Command, opts *AdvisorOptions) {
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database for checkpoints (overrides store.path)")
	cmd.Flags().BoolVar(&opts.Resume, "resume", false, "restore the latest checkpoint before ingesting")
	cmd.Flags().StringVar(&opts.DDL, "ddl", "", "print a suggested CREATE TABLE (postgres|sqlite)")
	cmd.Flags().StringVar(&opts.Table, "table", "records", "table name for --ddl")
	cmd.Flags().BoolVar(&opts.Fields, "fields", false, "print the per-field analysis table")
	cmd.Flags().IntVar(&opts.ReclassifyEvery, "reclassify-every", pipeline.DefaultReclassifyEvery, "records between placement updates (0 disables)")
}

// runAdvisor loads the configuration, applies override, drains the source
// opened by open into a session and reports the placement. With a database
// the final state is saved as a checkpoint.
func runAdvisor(cmd *cobra.Command, opts *AdvisorOptions, override func(*config.Config), open sourceOpener) error {
	out := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	cfg, err := opts.loadConfig()
	if err != nil {
		return out.fail(ExitCommandError, CodeConfig, "failed to load config", err)
	}
	if cmd.Flags().Changed("reclassify-every") {
		cfg.Pipeline.ReclassifyEvery = opts.ReclassifyEvery
	}
	if opts.Database != "" {
		cfg.Store.Path = opts.Database
	}
	if override != nil {
		override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return out.fail(ExitCommandError, CodeConfig, "invalid configuration", err)
	}
	if opts.Resume && cfg.Store.Path == "" {
		return out.fail(ExitCommandError, CodeConfig, "--resume requires --db or store.path", nil)
	}

	var dialect report.Dialect
	if opts.DDL != "" {
		if dialect, err = report.ParseDialect(opts.DDL); err != nil {
			return out.fail(ExitCommandError, CodeConfig, "invalid --ddl", err)
		}
	}

	session, err := pipeline.New(append(cfg.SessionOptions(nil), pipeline.WithLogger(logger))...)
	if err != nil {
		return out.fail(ExitCommandError, CodeConfig, "failed to create session", err)
	}

	ctx, stop := signalContext(cmd, logger)
	defer stop()

	var st *store.Store
	if cfg.Store.Path != "" {
		logger.Debug("opening database", "path", cfg.Store.Path)
		st, err = store.Open(cfg.Store.Path)
		if err != nil {
			return out.fail(ExitCommandError, CodeStore, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		if opts.Resume {
			if err := resume(ctx, st, session, logger); err != nil {
				return out.fail(ExitCommandError, CodeStore, "failed to resume", err)
			}
		}
	}

	src, err := open(ctx, cfg, logger)
	if err != nil {
		return out.fail(ExitCommandError, CodeSource, "failed to open source", err)
	}
	defer src.Close()

	stats, err := session.Run(ctx, src)
	interrupted := errors.Is(err, context.Canceled)
	switch {
	case interrupted:
		logger.Info("ingestion interrupted, reporting partial results", "records", stats.Records)
	case pipeline.IsInputShapeError(err):
		return out.fail(ExitFailure, CodeInput, "input rejected", err)
	case err != nil:
		return out.fail(ExitCommandError, CodeSource, "failed to read records", err)
	}

	classifier := session.Classify()
	result := AnalysisResult{
		Report: report.Report{
			Seq:       session.Seq(),
			Placement: report.FromClassifier(classifier),
			Profile:   session.Summary(),
			Resolver:  session.ResolverStats(),
		},
		Records:     stats.Records,
		Interrupted: interrupted,
	}

	if dialect != "" {
		ddl, err := report.SuggestDDL(opts.Table, result.Placement.Decisions, dialect)
		switch {
		case errors.Is(err, report.ErrNoColumns):
			logger.Warn("no relational fields, skipping DDL")
		case err != nil:
			return out.fail(ExitCommandError, CodeConfig, "failed to render DDL", err)
		default:
			result.DDL = ddl
		}
	}

	if st != nil {
		cp, err := session.Checkpoint()
		if err != nil {
			return out.fail(ExitCommandError, CodeStore, "failed to capture checkpoint", err)
		}
		// Saving must survive the interrupt that ended ingestion.
		if err := st.SaveCheckpoint(context.WithoutCancel(ctx), cp, result.Placement.Decisions); err != nil {
			return out.fail(ExitCommandError, CodeStore, "failed to save checkpoint", err)
		}
		logger.Info("checkpoint saved", "id", cp.ID, "seq", cp.Seq)
		result.Checkpoint = cp.ID
	}

	if opts.Format == "json" {
		return out.Success(result)
	}
	return writeAnalysisText(cmd.OutOrStdout(), result, opts)
}

// resume restores the newest checkpoint. An empty store is not an error.
func resume(ctx context.Context, st *store.Store, session *pipeline.Session, logger *slog.Logger) error {
	cp, err := st.LatestCheckpoint(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Info("no checkpoint to resume, starting fresh")
		return nil
	}
	if err != nil {
		return err
	}
	return session.Restore(cp)
}

func writeAnalysisText(w io.Writer, result AnalysisResult, opts *AdvisorOptions) error {
	if err := report.WriteText(w, result.Placement); err != nil {
		return err
	}
	if opts.Fields {
		fmt.Fprintln(w)
		if err := report.WriteAnalysisTable(w, result.Profile); err != nil {
			return err
		}
	}
	if opts.Verbose {
		fmt.Fprintln(w)
		if err := report.WriteResolver(w, result.Resolver); err != nil {
			return err
		}
	}
	if result.DDL != "" {
		fmt.Fprintf(w, "\nSuggested DDL (%s):\n\n%s", opts.DDL, result.DDL)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d ingested this run, %d total\n", result.Records, result.Seq)
	if result.Checkpoint != "" {
		fmt.Fprintf(w, "Checkpoint: %s\n", result.Checkpoint)
	}
	if result.Interrupted {
		fmt.Fprintln(w, "Interrupted: results are partial")
	}
	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM. The
// command's own context is the parent when set, so tests can cancel it.
func signalContext(cmd *cobra.Command, logger *slog.Logger) (context.Context, context.CancelFunc) {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
