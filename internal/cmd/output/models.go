package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/5sensprod/possync/pkg/constants"
	"github.com/5sensprod/possync/pkg/differ"
	"github.com/5sensprod/possync/pkg/report"
	"github.com/5sensprod/possync/pkg/resolver"
	possync "github.com/5sensprod/possync/pkg/sync"
)

// ResultView is the machine-readable shape of a run result.
type ResultView struct {
	RunID      string              `json:"run_id"`
	Operation  string              `json:"operation"`
	State      string              `json:"state"`
	DryRun     bool                `json:"dry_run"`
	Stats      report.Stats        `json:"stats"`
	Decisions  []resolver.Decision `json:"decisions,omitempty"`
	Warnings   []string            `json:"warnings,omitempty"`
	Written    bool                `json:"written"`
	BackupPath string              `json:"backup_path,omitempty"`
	ReportPath string              `json:"report_path,omitempty"`
}

// NewResultView flattens a result.
func NewResultView(res *possync.Result) ResultView {
	return ResultView{
		RunID:      res.RunID,
		Operation:  res.Operation,
		State:      string(res.State),
		DryRun:     res.DryRun,
		Stats:      res.Stats,
		Decisions:  res.Decisions,
		Warnings:   res.Warnings,
		Written:    res.Written,
		BackupPath: res.BackupPath,
		ReportPath: res.ReportPath,
	}
}

// ResultToTableData lists the counters of a run.
func ResultToTableData(res *possync.Result) Data {
	rows := make([][]string, 0, len(res.Stats))
	for _, k := range res.Stats.Keys() {
		rows = append(rows, []string{k, strconv.Itoa(res.Stats[k])})
	}
	mode := report.ModeExecute
	if res.DryRun {
		mode = report.ModeDryRun
	}
	return Data{
		Title:           fmt.Sprintf("%s (%s): %s", res.Operation, mode, res.State),
		Headers:         []string{"Counter", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
		Source:          NewResultView(res),
	}
}

// DecisionsToTableData lists duplicate decisions, one row per group.
func DecisionsToTableData(decisions []resolver.Decision) Data {
	rows := make([][]string, 0, len(decisions))
	for _, d := range decisions {
		removed := make([]string, 0, len(d.Remove))
		for _, r := range d.Remove {
			removed = append(removed, r.ID)
		}
		rows = append(rows, []string{d.Key, d.Keep.ID, strings.Join(removed, ", "), string(d.Criterion), d.Reason})
	}
	return Data{
		Title:   "Duplicate groups",
		Headers: []string{"Key", "Keep", "Remove", "Criterion", "Reason"},
		Rows:    rows,
		Source:  decisions,
	}
}

// ChangeView is one row of a changeset listing.
type ChangeView struct {
	Type   differ.ChangeType `json:"type"`
	ID     string            `json:"id"`
	Name   string            `json:"name,omitempty"`
	By     string            `json:"matched_by,omitempty"`
	Field  string            `json:"field,omitempty"`
	Local  any               `json:"local_value,omitempty"`
	Source any               `json:"source_value,omitempty"`
}

// ChangesetViews flattens a changeset into rows.
func ChangesetViews(cs *differ.Changeset) []ChangeView {
	var out []ChangeView
	for _, u := range cs.Updated {
		for _, d := range u.Changes {
			out = append(out, ChangeView{
				Type: differ.ChangeTypeUpdate, ID: u.ID, Name: u.Local.Name, By: string(u.By),
				Field: d.Field, Local: d.LocalValue, Source: d.RemoteValue,
			})
		}
	}
	for _, p := range cs.Added {
		out = append(out, ChangeView{Type: differ.ChangeTypeAdd, ID: p.Key(), Name: p.Name})
	}
	for _, p := range cs.Removed {
		out = append(out, ChangeView{Type: differ.ChangeTypeRemove, ID: p.Key(), Name: p.Name})
	}
	return out
}

// ChangesetToTableData renders a changeset as a comparison table.
func ChangesetToTableData(cs *differ.Changeset) Data {
	views := ChangesetViews(cs)
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{string(v.Type), v.ID, v.Name, v.Field, valueString(v.Local), valueString(v.Source)})
	}
	return Data{
		Title:   cs.String(),
		Headers: []string{"Change", "ID", "Name", "Field", "Local", "Source"},
		Rows:    rows,
		Source:  views,
	}
}

// ReportToTableData lists the counters of a report file.
func ReportToTableData(r *report.Report) Data {
	rows := make([][]string, 0, len(r.Stats)+1)
	for _, k := range r.Stats.Keys() {
		rows = append(rows, []string{k, strconv.Itoa(r.Stats[k])})
	}
	backup := r.Backup()
	if backup == "" {
		backup = "none"
	}
	rows = append(rows, []string{"backup_file", backup})
	return Data{
		Title:           fmt.Sprintf("%s report, %s", r.Operation, r.Timestamp.Format(constants.TimeFormatHuman)),
		Headers:         []string{"Counter", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
		Source:          r,
	}
}

// RunView is the machine-readable shape of a ledger entry.
type RunView struct {
	ID         string       `json:"id"`
	Operation  string       `json:"operation"`
	Mode       string       `json:"mode"`
	State      string       `json:"state"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	Stats      report.Stats `json:"stats"`
	ReportPath string       `json:"report_path,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// RunsToTableData lists ledger entries.
func RunsToTableData(runs []*possync.Run) Data {
	views := make([]RunView, 0, len(runs))
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		v := RunView{
			ID: r.ID, Operation: r.Operation, Mode: r.Mode, State: string(r.State),
			StartedAt: r.StartedAt, Stats: r.Stats, ReportPath: r.ReportPath, Error: r.Error,
		}
		duration := ""
		if !r.FinishedAt.IsZero() {
			finished := r.FinishedAt
			v.FinishedAt = &finished
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		views = append(views, v)
		rows = append(rows, []string{
			r.ID, r.Operation, r.Mode, string(r.State),
			r.StartedAt.Local().Format(constants.TimeFormatHuman), duration, r.Error,
		})
	}
	return Data{
		Headers: []string{"Run", "Operation", "Mode", "State", "Started", "Duration", "Error"},
		Rows:    rows,
		Source:  views,
	}
}

func valueString(v any) string {
	if v == nil {
		return ""
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprintf("%v", v)
}
