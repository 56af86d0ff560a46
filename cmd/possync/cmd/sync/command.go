// Package sync implements the sync command.
package sync

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/5sensprod/possync/internal/cmd/application"
	"github.com/5sensprod/possync/internal/cmd/cmdutil"
	"github.com/5sensprod/possync/internal/cmd/output"
	"github.com/5sensprod/possync/pkg/differ"
	"github.com/5sensprod/possync/pkg/errors"
	possync "github.com/5sensprod/possync/pkg/sync"
)

// Flags holds the sync command flags.
type Flags struct {
	Local        string
	Source       string
	Fields       []string
	Strategy     string
	Absence      string
	Reset        bool
	NameFallback bool
	Details      bool

	run   *cmdutil.RunFlags
	scope *cmdutil.ScopeFlags
}

// NewCommand creates the sync command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "sync",
		GroupID: "core",
		Short:   "Reconcile the local product store against a source snapshot",
		Long: `Sync loads the local product store and a source-of-truth snapshot,
pairs records across both (id, identity code, SKU), and makes the local
store agree with the source:

• Field differences are corrected, the source value wins
• Corrected records with a woo_id are flagged pending_sync
• Source records missing locally are added
• Duplicates in the result are resolved by sales, stock and quality score

Nothing is written unless --execute is given. Every run that decides
something writes a JSON report; an execute run backs up the store first
and restores it if anything fails.`,
		Example: `  possync sync --source data/source.db                 # Preview
  possync sync --source data/source.db --execute       # Apply
  possync sync --strategy updates-only --execute       # Corrections only
  possync sync --fields price,stock --execute          # Limit compared fields
  possync sync --reset --execute                       # Rebuild local from source`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, flags)
		},
	}

	cmd.Flags().StringVar(&flags.Local, "local", "", "Local product store (config: local_path)")
	cmd.Flags().StringVar(&flags.Source, "source", "", "Source-of-truth snapshot (config: source_path)")
	cmd.Flags().StringSliceVar(&flags.Fields, "fields", nil,
		"Fields to compare (default: "+strings.Join(differ.DefaultFields, ",")+")")
	cmd.Flags().StringVar(&flags.Strategy, "strategy", string(differ.ApplyAll),
		"Apply strategy: all, additive, updates-only, additions-only")
	cmd.Flags().StringVar(&flags.Absence, "absent", differ.AbsentAsDefault.String(),
		"How a field missing on one side compares: default, unknown")
	cmd.Flags().BoolVar(&flags.Reset, "reset", false, "Replace the local store with the source")
	cmd.Flags().BoolVar(&flags.NameFallback, "match-names", false, "Also pair records by normalized name")
	cmd.Flags().BoolVar(&flags.Details, "details", false, "List every field change")
	flags.run = cmdutil.AddRunFlags(cmd)
	flags.scope = cmdutil.AddScopeFlags(cmd)

	return cmd
}

// Options converts the flags into engine options.
func (f *Flags) Options() ([]possync.Option, error) {
	strategy, err := differ.ParseStrategy(f.Strategy)
	if err != nil {
		return nil, err
	}
	absence, err := differ.ParseAbsencePolicy(f.Absence)
	if err != nil {
		return nil, err
	}
	scope, err := f.scope.Options()
	if err != nil {
		return nil, err
	}

	opts := append(f.run.Options(), scope...)
	opts = append(opts,
		possync.WithStrategy(strategy),
		possync.WithAbsencePolicy(absence),
		possync.WithReset(f.Reset),
		possync.WithNameFallback(f.NameFallback),
	)
	if len(f.Fields) > 0 {
		opts = append(opts, possync.WithFields(f.Fields...))
	}
	return opts, nil
}

func run(cmd *cobra.Command, app application.Application, flags *Flags) error {
	cfg := app.Paths().SyncConfig()
	cfg.LocalPath = cmdutil.Or(flags.Local, cfg.LocalPath)
	cfg.SourcePath = cmdutil.Or(flags.Source, cfg.SourcePath)
	if err := cmdutil.Require("source", cfg.SourcePath); err != nil {
		return err
	}
	if err := cmdutil.Require("local", cfg.LocalPath); err != nil {
		return err
	}
	opts, err := flags.Options()
	if err != nil {
		return err
	}

	engine, err := app.Engine(cfg, opts...)
	if err != nil {
		return err
	}
	res, err := engine.Sync(cmd.Context())
	if err != nil {
		if errors.IsEmptyCollection(err) {
			cmdutil.Alerts(cmd).Error(err, "nothing to reconcile")
		}
		return err
	}

	if flags.Details && res.Changeset != nil && res.Changeset.HasChanges() {
		if err := cmdutil.Print(cmd, app, output.ChangesetToTableData(res.Changeset)); err != nil {
			return err
		}
	}
	if flags.Details && len(res.Decisions) > 0 {
		if err := cmdutil.Print(cmd, app, output.DecisionsToTableData(res.Decisions)); err != nil {
			return err
		}
	}
	return cmdutil.PrintResult(cmd, app, res)
}
