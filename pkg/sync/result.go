package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/5sensprod/possync/pkg/differ"
	"github.com/5sensprod/possync/pkg/report"
	"github.com/5sensprod/possync/pkg/resolver"
)

// State is a step of the run state machine.
type State string

// States, in the order a run moves through them.
const (
	StateIdle           State = "idle"
	StateLoaded         State = "loaded"
	StateMatched        State = "matched"
	StateDecided        State = "decided"
	StateDryRunReported State = "dry_run_reported"
	StateApplying       State = "applying"
	StateBackedUp       State = "backed_up"
	StateWritten        State = "written"
	StateReported       State = "reported"
	StateFailed         State = "failed"
)

// Result represents the complete result of a run.
type Result struct {
	RunID     string
	Operation string
	State     State
	DryRun    bool

	Stats     report.Stats
	Changeset *differ.Changeset   // sync only
	Decisions []resolver.Decision // duplicate decisions
	Warnings  []string

	Written    bool   // whether the store was rewritten
	BackupPath string // backup taken before the write
	ReportPath string // report file, empty when nothing was decided
}

// HasChanges returns true if the run decided anything.
func (r *Result) HasChanges() bool {
	if r.Changeset != nil && r.Changeset.HasChanges() {
		return true
	}
	return len(r.Decisions) > 0
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	var parts []string
	for _, k := range r.Stats.Keys() {
		if v := r.Stats[k]; v != 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", k, v))
		}
	}
	summary := r.Operation + ": "
	if len(parts) == 0 {
		summary += "no changes detected"
	} else {
		summary += strings.Join(parts, ", ")
	}
	if r.DryRun {
		summary += " (dry run)"
	}
	return summary
}

// Run is the ledger entry for one completed or failed run.
type Run struct {
	ID         string
	Operation  string
	Mode       string
	State      State
	StartedAt  time.Time
	FinishedAt time.Time
	Stats      report.Stats
	BackupPath string
	ReportPath string
	Error      string
}

// Recorder persists run entries.
type Recorder interface {
	Record(ctx context.Context, run *Run) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, run *Run) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, run *Run) error {
	return f(ctx, run)
}
