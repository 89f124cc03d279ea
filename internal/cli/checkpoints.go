package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/placer/internal/classify"
	"github.com/roach88/placer/internal/report"
	"github.com/roach88/placer/internal/store"
)

// CheckpointsOptions holds flags for the checkpoints commands.
type CheckpointsOptions struct {
	*RootOptions
	Database string
	DDL      string
	Table    string
}

// CheckpointDetail is the output of checkpoints show.
type CheckpointDetail struct {
	ID        string              `json:"id"`
	Seq       int64               `json:"seq"`
	Digest    string              `json:"digest"`
	Fields    int                 `json:"fields"`
	Decisions []classify.Decision `json:"decisions"`
	DDL       string              `json:"ddl,omitempty"`
}

// latestID selects the newest checkpoint in checkpoints show.
const latestID = "latest"

// NewCheckpointsCommand creates the checkpoints command group.
func NewCheckpointsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckpointsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "checkpoints",
		Short: "Inspect saved checkpoints",
		Long: `List, show and delete checkpoints saved by analyze, stream and demo
with --db.

Examples:
  placer checkpoints list --db placer.db
  placer checkpoints show latest --db placer.db --ddl postgres
  placer checkpoints delete 01936f6e-... --db placer.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "SQLite database (overrides store.path)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List checkpoints, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, st *store.Store, out *OutputFormatter) error {
				return listCheckpoints(ctx, cmd.OutOrStdout(), st, out)
			})
		},
	}

	show := &cobra.Command{
		Use:   "show <id|latest>",
		Short: "Show the placement decisions stored with a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, st *store.Store, out *OutputFormatter) error {
				return showCheckpoint(ctx, cmd.OutOrStdout(), st, out, opts, args[0])
			})
		},
	}
	show.Flags().StringVar(&opts.DDL, "ddl", "", "print a suggested CREATE TABLE (postgres|sqlite)")
	show.Flags().StringVar(&opts.Table, "table", "records", "table name for --ddl")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a checkpoint and its decisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, st *store.Store, out *OutputFormatter) error {
				if err := st.DeleteCheckpoint(ctx, args[0]); err != nil {
					return out.fail(ExitCommandError, CodeStore, "failed to delete checkpoint", err)
				}
				if out.Format == "json" {
					return out.Success(map[string]string{"deleted": args[0]})
				}
				return out.Success(fmt.Sprintf("Deleted checkpoint %s", args[0]))
			})
		},
	}

	cmd.AddCommand(list, show, del)
	return cmd
}

// withStore opens the database named by --db or store.path and runs fn.
func withStore(cmd *cobra.Command, opts *CheckpointsOptions, fn func(context.Context, *store.Store, *OutputFormatter) error) error {
	out := opts.formatter(cmd)

	path := opts.Database
	if path == "" {
		cfg, err := opts.loadConfig()
		if err != nil {
			return out.fail(ExitCommandError, CodeConfig, "failed to load config", err)
		}
		path = cfg.Store.Path
	}
	if path == "" {
		return out.fail(ExitCommandError, CodeConfig, "no database: set --db or store.path", nil)
	}

	st, err := store.Open(path)
	if err != nil {
		return out.fail(ExitCommandError, CodeStore, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, st, out)
}

func listCheckpoints(ctx context.Context, w io.Writer, st *store.Store, out *OutputFormatter) error {
	infos, err := st.ListCheckpoints(ctx)
	if err != nil {
		return out.fail(ExitCommandError, CodeStore, "failed to list checkpoints", err)
	}
	if out.Format == "json" {
		return out.Success(infos)
	}
	if len(infos) == 0 {
		fmt.Fprintln(w, "No checkpoints found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSEQ\tFIELDS\tDECISIONS\tDIGEST")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", info.ID, info.Seq, info.Fields, info.Decisions, shortDigest(info.Digest))
	}
	return tw.Flush()
}

func showCheckpoint(ctx context.Context, w io.Writer, st *store.Store, out *OutputFormatter, opts *CheckpointsOptions, id string) error {
	var dialect report.Dialect
	if opts.DDL != "" {
		var err error
		if dialect, err = report.ParseDialect(opts.DDL); err != nil {
			return out.fail(ExitCommandError, CodeConfig, "invalid --ddl", err)
		}
	}

	load := func() (string, error) {
		if id != latestID {
			cp, err := st.LoadCheckpoint(ctx, id)
			return cp.ID, err
		}
		cp, err := st.LatestCheckpoint(ctx)
		return cp.ID, err
	}
	resolved, err := load()
	if errors.Is(err, sql.ErrNoRows) {
		return out.fail(ExitCommandError, CodeNotFound, fmt.Sprintf("checkpoint not found: %s", id), nil)
	}
	if err != nil {
		return out.fail(ExitCommandError, CodeStore, "failed to load checkpoint", err)
	}

	// The stored field count is only in the listing.
	infos, err := st.ListCheckpoints(ctx)
	if err != nil {
		return out.fail(ExitCommandError, CodeStore, "failed to list checkpoints", err)
	}
	detail := CheckpointDetail{ID: resolved}
	for _, info := range infos {
		if info.ID == resolved {
			detail.Seq, detail.Digest, detail.Fields = info.Seq, info.Digest, info.Fields
		}
	}

	if detail.Decisions, err = st.Decisions(ctx, resolved); err != nil {
		return out.fail(ExitCommandError, CodeStore, "failed to load decisions", err)
	}

	if dialect != "" {
		ddl, err := report.SuggestDDL(opts.Table, detail.Decisions, dialect)
		if err != nil && !errors.Is(err, report.ErrNoColumns) {
			return out.fail(ExitCommandError, CodeConfig, "failed to render DDL", err)
		}
		detail.DDL = ddl
	}

	if out.Format == "json" {
		return out.Success(detail)
	}
	return writeCheckpointText(w, detail, opts.DDL)
}

func writeCheckpointText(w io.Writer, d CheckpointDetail, dialect string) error {
	fmt.Fprintf(w, "Checkpoint %s\n", d.ID)
	fmt.Fprintf(w, "  seq:    %d\n", d.Seq)
	fmt.Fprintf(w, "  digest: %s\n", d.Digest)
	fmt.Fprintf(w, "  fields: %d\n\n", d.Fields)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tBACKEND\tRULE\tCONFIDENCE\tUNIQUE")
	for _, dec := range d.Decisions {
		unique := ""
		if dec.Metrics.IsUnique {
			unique = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n", dec.FieldName, dec.Backend, dec.Rule, dec.Confidence, unique)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if d.DDL != "" {
		fmt.Fprintf(w, "\nSuggested DDL (%s):\n\n%s", dialect, d.DDL)
	}
	return nil
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
