// Package cmdutil provides shared flags and helpers for possync commands.
package cmdutil

import (
	"github.com/spf13/cobra"

	"github.com/5sensprod/possync/pkg/errors"
	"github.com/5sensprod/possync/pkg/resolver"
	possync "github.com/5sensprod/possync/pkg/sync"
)

// RunFlags selects between a dry run and an execute run.
type RunFlags struct {
	DryRun  bool
	Test    bool
	Execute bool
}

// AddRunFlags adds --dry-run, --test and --execute to a command. Runs are
// dry unless --execute is given.
func AddRunFlags(cmd *cobra.Command) *RunFlags {
	flags := &RunFlags{}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false,
		"Decide and report without writing (default)")
	cmd.Flags().BoolVar(&flags.Test, "test", false,
		"Alias for --dry-run")
	cmd.Flags().BoolVar(&flags.Execute, "execute", false,
		"Apply the decisions (backup first)")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "execute")
	cmd.MarkFlagsMutuallyExclusive("test", "execute")

	return flags
}

// Options returns the engine option for the selected mode.
func (f *RunFlags) Options() []possync.Option {
	return []possync.Option{possync.WithDryRun(!f.Execute)}
}

// ScopeFlags selects the duplicate key scope.
type ScopeFlags struct {
	Scope string
}

// AddScopeFlags adds --scope to a command.
func AddScopeFlags(cmd *cobra.Command) *ScopeFlags {
	flags := &ScopeFlags{}
	cmd.Flags().StringVar(&flags.Scope, "scope", string(resolver.ScopeAll),
		"Duplicate key scope: identity, sku, all, none")
	return flags
}

// Options validates the scope and returns the engine option.
func (f *ScopeFlags) Options() ([]possync.Option, error) {
	scope, err := resolver.ParseScope(f.Scope)
	if err != nil {
		return nil, err
	}
	return []possync.Option{possync.WithScope(scope)}, nil
}

// Require returns a validation error naming flag when value is empty.
func Require(flag, value string) error {
	if value == "" {
		return &errors.ValidationError{Field: flag, Message: "is required (flag or configuration)"}
	}
	return nil
}

// Or returns value, or fallback when value is empty.
func Or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
