// Package report implements the report command.
package report

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/5sensprod/possync/internal/cmd/application"
	"github.com/5sensprod/possync/internal/cmd/cmdutil"
	"github.com/5sensprod/possync/internal/cmd/output"
	pkgreport "github.com/5sensprod/possync/pkg/report"
)

// NewCommand creates the report command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report",
		GroupID: "history",
		Short:   "Inspect run reports",
	}
	cmd.AddCommand(newShowCommand(app), newListCommand(app))
	return cmd
}

func newShowCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE",
		Short: "Print a report",
		Long: `Show prints a report file. Use --format markdown for a document
suitable for sharing, or json to get the file back as written.`,
		Example: `  possync report show reports/sync-report-20240601-143005.json
  possync report show reports/sync-report-20240601-143005.json --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := pkgreport.Read(afero.NewOsFs(), args[0])
			if err != nil {
				return err
			}
			if err := cmdutil.Print(cmd, app, output.ReportToTableData(r)); err != nil {
				return err
			}
			status := cmdutil.Alerts(cmd)
			for _, w := range r.Warnings {
				status.Warning("%s", w)
			}
			if n := len(r.Details); n > 0 {
				status.Info("%d detail entries", n)
			}
			return nil
		},
	}
}

func newListCommand(app application.Application) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List report files, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir = cmdutil.Or(dir, app.Paths().ReportDir)
			files, err := pkgreport.NewWriter(dir).List()
			if err != nil {
				return err
			}
			for _, f := range files {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), f); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Report directory (config: report_dir)")
	return cmd
}
