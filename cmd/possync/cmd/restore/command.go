// Package restore implements the restore command.
package restore

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/5sensprod/possync/internal/cmd/application"
	"github.com/5sensprod/possync/internal/cmd/cmdutil"
)

// NewCommand creates the restore command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:     "restore BACKUP TARGET",
		GroupID: "maintenance",
		Short:   "Restore a store from one of its backups",
		Long: `Restore copies a backup over a store file. The current file is
backed up first, so the restore can be undone the same way.

With --list, prints the backups of TARGET, newest first.`,
		Example: `  possync restore --list data/products.db
  possync restore data/backups/products.db.20240601-143005.000.bak data/products.db --execute`,
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List the backups of TARGET")
	runFlags := cmdutil.AddRunFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		engine, err := app.Engine(app.Paths().SyncConfig(), runFlags.Options()...)
		if err != nil {
			return err
		}

		if list {
			backups, err := engine.Backups(args[0])
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				cmdutil.Alerts(cmd).Info("no backups of %s", args[0])
				return nil
			}
			for _, b := range backups {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), b); err != nil {
					return err
				}
			}
			return nil
		}

		res, err := engine.Restore(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return cmdutil.PrintResult(cmd, app, res)
	}

	return cmd
}
