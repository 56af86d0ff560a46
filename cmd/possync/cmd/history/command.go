// Package history implements the history command.
package history

import (
	"github.com/spf13/cobra"

	"github.com/5sensprod/possync/internal/cmd/application"
	"github.com/5sensprod/possync/internal/cmd/cmdutil"
	"github.com/5sensprod/possync/internal/cmd/output"
	"github.com/5sensprod/possync/pkg/errors"
	possync "github.com/5sensprod/possync/pkg/sync"
)

// NewCommand creates the history command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var limit int
	var operation string

	cmd := &cobra.Command{
		Use:     "history [RUN]",
		GroupID: "history",
		Short:   "List recorded runs",
		Long: `History lists the runs recorded in the run ledger (history_db),
newest first. Given a run id, it prints that run with its counters.`,
		Example: `  possync history
  possync history --operation sync --limit 5
  possync history 0b0c6f1e-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := app.History()
			if err != nil {
				return err
			}
			if ledger == nil {
				return &errors.ConfigError{Component: "history", Message: "history_db is not configured"}
			}

			if len(args) == 1 {
				run, err := ledger.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return cmdutil.Print(cmd, app, output.RunsToTableData([]*possync.Run{run}))
			}

			runs, err := ledger.List(cmd.Context(), operation, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				cmdutil.Alerts(cmd).Info("no runs recorded")
				return nil
			}
			return cmdutil.Print(cmd, app, output.RunsToTableData(runs))
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")
	cmd.Flags().StringVar(&operation, "operation", "", "Only list runs of this operation")
	return cmd
}
