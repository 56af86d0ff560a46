// Package diff implements the diff command.
package diff

import (
	"github.com/spf13/cobra"

	"github.com/5sensprod/possync/internal/cmd/application"
	"github.com/5sensprod/possync/internal/cmd/cmdutil"
	"github.com/5sensprod/possync/internal/cmd/output"
	"github.com/5sensprod/possync/pkg/differ"
	possync "github.com/5sensprod/possync/pkg/sync"
)

// NewCommand creates the diff command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var local, source, absence string
	var fields []string
	var nameFallback bool

	cmd := &cobra.Command{
		Use:     "diff",
		GroupID: "core",
		Short:   "Compare the local store with a source snapshot",
		Long: `Diff pairs local and source records the way sync does and prints
every field that differs, every source record missing locally and every
local record missing from the source. It never writes anything.`,
		Example: `  possync diff --source data/source.db
  possync diff --source data/source.db --fields price,stock --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.Paths().SyncConfig()
			cfg.LocalPath = cmdutil.Or(local, cfg.LocalPath)
			cfg.SourcePath = cmdutil.Or(source, cfg.SourcePath)
			if err := cmdutil.Require("local", cfg.LocalPath); err != nil {
				return err
			}
			if err := cmdutil.Require("source", cfg.SourcePath); err != nil {
				return err
			}
			policy, err := differ.ParseAbsencePolicy(absence)
			if err != nil {
				return err
			}

			opts := []possync.Option{possync.WithAbsencePolicy(policy), possync.WithNameFallback(nameFallback)}
			if len(fields) > 0 {
				opts = append(opts, possync.WithFields(fields...))
			}
			engine, err := app.Engine(cfg, opts...)
			if err != nil {
				return err
			}
			cs, err := engine.Compare(cmd.Context())
			if err != nil {
				return err
			}

			if !cs.HasChanges() {
				cmdutil.Alerts(cmd).Success("no differences")
				return nil
			}
			return cmdutil.Print(cmd, app, output.ChangesetToTableData(cs))
		},
	}

	cmd.Flags().StringVar(&local, "local", "", "Local product store (config: local_path)")
	cmd.Flags().StringVar(&source, "source", "", "Source-of-truth snapshot (config: source_path)")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "Fields to compare")
	cmd.Flags().StringVar(&absence, "absent", differ.AbsentAsDefault.String(), "How a field missing on one side compares: default, unknown")
	cmd.Flags().BoolVar(&nameFallback, "match-names", false, "Also pair records by normalized name")

	return cmd
}
