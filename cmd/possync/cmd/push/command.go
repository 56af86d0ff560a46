// Package push implements the push command.
package push

import (
	"github.com/spf13/cobra"

	"github.com/5sensprod/possync/internal/cmd/application"
	"github.com/5sensprod/possync/internal/cmd/cmdutil"
)

// NewCommand creates the push command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var local string

	cmd := &cobra.Command{
		Use:     "push",
		GroupID: "remote",
		Short:   "Send pending products to the remote catalog",
		Long: `Push sends every local product flagged pending_sync to the configured
WooCommerce store, creating it or updating it by woo_id. Pushed products
get their woo_id and last_sync set and the flag cleared. Products that
fail stay pending and are listed in the report.

Requests are paced by woo_rate_per_minute.`,
		Example: `  possync push             # List pending products
  possync push --execute   # Send them`,
		Args: cobra.NoArgs,
	}

	cmd.Flags().StringVar(&local, "local", "", "Local product store (config: local_path)")
	runFlags := cmdutil.AddRunFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg := app.Paths().SyncConfig()
		cfg.LocalPath = cmdutil.Or(local, cfg.LocalPath)
		if err := cmdutil.Require("local", cfg.LocalPath); err != nil {
			return err
		}
		remote, err := app.Remote()
		if err != nil {
			return err
		}
		engine, err := app.Engine(cfg, runFlags.Options()...)
		if err != nil {
			return err
		}
		res, err := engine.Push(cmd.Context(), remote)
		if err != nil {
			return err
		}
		return cmdutil.PrintResult(cmd, app, res)
	}

	return cmd
}
