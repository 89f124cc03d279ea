package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/placer/internal/config"
	"github.com/roach88/placer/internal/source"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AdvisorOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Recommend placements for records in a JSON file",
		Long: `Read records from a JSON file and recommend a placement per field.

The file may hold a JSON array of objects, an object with a "records"
array, a single object, or newline-delimited objects. Use "-" to read
standard input.

Exit codes:
  0 - Analysis complete
  1 - A record was rejected (not an object, empty field name)
  2 - Command error (unreadable file, bad config, database error)

Examples:
  placer analyze records.json
  placer analyze records.ndjson --ddl postgres --table events
  placer analyze records.json --db placer.db --resume
  cat records.json | placer analyze - --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return runAdvisor(cmd, opts, nil, func(ctx context.Context, cfg config.Config, logger *slog.Logger) (source.Source, error) {
				if path == "-" {
					logger.Debug("reading records", "file", "stdin")
					return source.NewReaderSource(cmd.InOrStdin()), nil
				}
				logger.Debug("reading records", "file", path)
				return source.OpenFile(path)
			})
		},
	}

	addAdvisorFlags(cmd, opts)
	return cmd
}
