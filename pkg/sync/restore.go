package sync

import (
	"context"

	"github.com/spf13/afero"

	"github.com/5sensprod/possync/pkg/errors"
	"github.com/5sensprod/possync/pkg/logging"
	"github.com/5sensprod/possync/pkg/report"
)

// Restore copies backupPath over target. The current target is backed up
// first, so a restore can itself be undone.
func (e *Engine) Restore(ctx context.Context, backupPath, target string) (*Result, error) {
	r := e.begin(ctx, report.OperationRestore)
	if backupPath == "" || target == "" {
		return e.finish(r, &errors.ValidationError{Field: "backup", Message: "backup and target paths are required"})
	}
	ok, err := afero.Exists(e.opts.Fs, backupPath)
	if err != nil {
		return e.finish(r, errors.WrapIO("stat", backupPath, err))
	}
	if !ok {
		return e.finish(r, errors.NewNotFoundError("backup", backupPath))
	}
	r.to(StateLoaded)
	r.detail(map[string]any{"type": "restore", "backup": backupPath, "target": target})
	r.to(StateDecided)

	if e.opts.DryRun {
		if err := r.writeReport(); err != nil {
			return e.finish(r, err)
		}
		r.to(StateDryRunReported)
		return e.finish(r, nil)
	}

	if err := r.check(); err != nil {
		return e.finish(r, err)
	}
	r.to(StateApplying)
	current, err := e.products.Backup(target)
	if err != nil {
		return e.finish(r, err)
	}
	r.result.BackupPath = current
	r.to(StateBackedUp)

	if err := e.products.RestoreFromBackup(backupPath, target); err != nil {
		return e.finish(r, err)
	}
	r.result.Written = true
	r.to(StateWritten)
	logging.FromContext(r.ctx).Info().
		Str("backup", backupPath).
		Str("target", target).
		Msg("Store restored")

	if err := r.writeReport(); err != nil {
		return e.finish(r, err)
	}
	r.to(StateReported)
	return e.finish(r, nil)
}

// Backups lists the backups of path, newest first.
func (e *Engine) Backups(path string) ([]string, error) {
	return e.products.Backups(path)
}
