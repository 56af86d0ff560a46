// Package pull implements the pull command.
package pull

import (
	"github.com/spf13/cobra"

	"github.com/5sensprod/possync/internal/cmd/application"
	"github.com/5sensprod/possync/internal/cmd/cmdutil"
)

// NewCommand creates the pull command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:     "pull",
		GroupID: "remote",
		Short:   "Fetch the remote catalog into a snapshot file",
		Long: `Pull lists every product of the configured WooCommerce store and
writes them as a line-delimited JSON snapshot that sync can use as its
source. An existing snapshot is backed up before it is replaced.`,
		Example: `  possync pull --out data/source.db --execute
  possync sync --source data/source.db`,
		Args: cobra.NoArgs,
	}

	cmd.Flags().StringVar(&out, "out", "", "Snapshot file to write (config: source_path)")
	runFlags := cmdutil.AddRunFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg := app.Paths().SyncConfig()
		target := cmdutil.Or(out, cfg.SourcePath)
		if err := cmdutil.Require("out", target); err != nil {
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
		res, err := engine.Pull(cmd.Context(), remote, target)
		if err != nil {
			return err
		}
		return cmdutil.PrintResult(cmd, app, res)
	}

	return cmd
}
