package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/placer/internal/config"
	"github.com/roach88/placer/internal/source"
)

// DemoOptions holds flags for the demo command.
type DemoOptions struct {
	*AdvisorOptions
	Records int
	Seed    uint64
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DemoOptions{AdvisorOptions: &AdvisorOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the advisor over seeded synthetic records",
		Long: `Generate messy synthetic records (inconsistent field spellings, type
drift, nested metadata, sparse arrays) and recommend placements for them.

The same seed always produces the same records, so demo output is stable.

Examples:
  placer demo
  placer demo --records 5000 --seed 7 --fields
  placer demo --ddl sqlite --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Records <= 0 {
				return NewExitError(ExitCommandError, fmt.Sprintf("--records must be positive, got %d", opts.Records))
			}
			return runAdvisor(cmd, opts.AdvisorOptions, nil, func(ctx context.Context, cfg config.Config, logger *slog.Logger) (source.Source, error) {
				logger.Debug("generating records", "count", opts.Records, "seed", opts.Seed)
				return source.NewGenerator(opts.Seed, source.WithLimit(opts.Records)), nil
			})
		},
	}

	addAdvisorFlags(cmd, opts.AdvisorOptions)
	cmd.Flags().IntVar(&opts.Records, "records", 1000, "number of records to generate")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 42, "generator seed")

	return cmd
}
