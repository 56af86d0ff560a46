package cmdutil

import (
	"github.com/spf13/cobra"

	"github.com/5sensprod/possync/internal/cmd/alerts"
	"github.com/5sensprod/possync/internal/cmd/application"
	"github.com/5sensprod/possync/internal/cmd/output"
	possync "github.com/5sensprod/possync/pkg/sync"
)

// Alerts returns a stderr status writer honoring --quiet and --no-color.
func Alerts(cmd *cobra.Command) *alerts.Writer {
	noColor, _ := cmd.Flags().GetBool("no-color")
	quiet, _ := cmd.Flags().GetBool("quiet")
	return alerts.NewWriter(cmd.ErrOrStderr(), noColor, quiet)
}

// Print writes data to stdout in the selected format.
func Print(cmd *cobra.Command, app application.Application, data any) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	return output.NewFormatter(output.DetectFormat(string(format))).Format(cmd.OutOrStdout(), data)
}

// PrintResult writes a run's counters to stdout and its status to stderr.
func PrintResult(cmd *cobra.Command, app application.Application, res *possync.Result) error {
	status := Alerts(cmd)
	for _, w := range res.Warnings {
		status.Warning("%s", w)
	}

	if err := Print(cmd, app, output.ResultToTableData(res)); err != nil {
		return err
	}

	switch {
	case res.Written:
		status.Success("%s", res.Summary())
		if res.BackupPath != "" {
			status.Info("backup: %s", res.BackupPath)
		}
	case res.DryRun:
		status.Info("%s, nothing written (use --execute to apply)", res.Summary())
	default:
		status.Success("%s", res.Summary())
	}
	if res.ReportPath != "" {
		status.Info("report: %s", res.ReportPath)
	}
	return nil
}
