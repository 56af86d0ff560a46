package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/5sensprod/possync/cmd/possync/cmd/categories"
	"github.com/5sensprod/possync/cmd/possync/cmd/dedupe"
	"github.com/5sensprod/possync/cmd/possync/cmd/diff"
	"github.com/5sensprod/possync/cmd/possync/cmd/history"
	"github.com/5sensprod/possync/cmd/possync/cmd/pull"
	"github.com/5sensprod/possync/cmd/possync/cmd/push"
	"github.com/5sensprod/possync/cmd/possync/cmd/repair"
	"github.com/5sensprod/possync/cmd/possync/cmd/report"
	"github.com/5sensprod/possync/cmd/possync/cmd/restore"
	synccmd "github.com/5sensprod/possync/cmd/possync/cmd/sync"
	"github.com/5sensprod/possync/pkg/constants"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(synccmd.NewCommand(a))
	rootCmd.AddCommand(diff.NewCommand(a))
	rootCmd.AddCommand(dedupe.NewCommand(a))
	rootCmd.AddCommand(categories.NewCommand(a))

	// Maintenance commands
	rootCmd.AddCommand(repair.NewCommand(a))
	rootCmd.AddCommand(restore.NewCommand(a))

	// Remote catalog commands
	rootCmd.AddCommand(pull.NewCommand(a))
	rootCmd.AddCommand(push.NewCommand(a))

	// History commands
	rootCmd.AddCommand(report.NewCommand(a))
	rootCmd.AddCommand(history.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.NewVersionCommand())
	rootCmd.AddCommand(a.NewManCommand())
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(),
				"possync %s\n  commit:   %s\n  built:    %s\n  built by: %s\n  go:       %s %s/%s\n",
				a.version, a.commit, a.date, a.builtBy, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return err
		},
	}
}

// NewManCommand creates the man command, which writes man pages.
func (a *App) NewManCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "man DIR",
		Short:  "Generate man pages",
		Long:   `Generate man pages for possync and every subcommand into DIR.`,
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(args[0], constants.DirPermissions); err != nil {
				return err
			}
			header := &doc.GenManHeader{
				Title:   "POSSYNC",
				Section: "1",
				Source:  "possync " + a.version,
				Manual:  "possync Manual",
			}
			return doc.GenManTree(cmd.Root(), header, args[0])
		},
	}
}
