// Package dedupe implements the dedupe command.
package dedupe

import (
	"github.com/spf13/cobra"

	"github.com/5sensprod/possync/internal/cmd/application"
	"github.com/5sensprod/possync/internal/cmd/cmdutil"
	"github.com/5sensprod/possync/internal/cmd/output"
)

// NewCommand creates the dedupe command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var local string
	var details bool

	cmd := &cobra.Command{
		Use:     "dedupe",
		GroupID: "core",
		Short:   "Resolve duplicate products in the local store",
		Long: `Dedupe groups local products sharing an identity code (gencode,
barcode, EAN, UPC or a barcode meta entry) or a SKU and keeps one record
per group. Records with sales win, then records with stock, then the
highest quality score; ties keep the earlier record.`,
		Example: `  possync dedupe                       # Preview
  possync dedupe --scope sku --execute # Remove SKU duplicates`,
		Args: cobra.NoArgs,
	}

	cmd.Flags().StringVar(&local, "local", "", "Local product store (config: local_path)")
	cmd.Flags().BoolVar(&details, "details", false, "List every duplicate group")
	runFlags := cmdutil.AddRunFlags(cmd)
	scopeFlags := cmdutil.AddScopeFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg := app.Paths().SyncConfig()
		cfg.LocalPath = cmdutil.Or(local, cfg.LocalPath)
		if err := cmdutil.Require("local", cfg.LocalPath); err != nil {
			return err
		}
		scope, err := scopeFlags.Options()
		if err != nil {
			return err
		}

		engine, err := app.Engine(cfg, append(runFlags.Options(), scope...)...)
		if err != nil {
			return err
		}
		res, err := engine.Dedupe(cmd.Context())
		if err != nil {
			return err
		}
		if details && len(res.Decisions) > 0 {
			if err := cmdutil.Print(cmd, app, output.DecisionsToTableData(res.Decisions)); err != nil {
				return err
			}
		}
		return cmdutil.PrintResult(cmd, app, res)
	}

	return cmd
}
