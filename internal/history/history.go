// Package history keeps a ledger of engine runs in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/5sensprod/possync/pkg/errors"
	"github.com/5sensprod/possync/pkg/report"
	possync "github.com/5sensprod/possync/pkg/sync"
)

// DefaultLimit bounds List when no limit is given.
const DefaultLimit = 20

// timestamps are stored fixed-width so they sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS runs(
  id          TEXT PRIMARY KEY,
  operation   TEXT NOT NULL,
  mode        TEXT NOT NULL,
  state       TEXT NOT NULL,
  started_at  TEXT NOT NULL,
  finished_at TEXT,
  stats_json  TEXT NOT NULL DEFAULT '{}',
  backup_path TEXT NOT NULL DEFAULT '',
  report_path TEXT NOT NULL DEFAULT '',
  error       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_operation  ON runs(operation);
`

// Ledger records runs. It implements the engine's Recorder.
type Ledger struct{ db *sqlx.DB }

var _ possync.Recorder = (*Ledger)(nil)

type runRow struct {
	ID         string         `db:"id"`
	Operation  string         `db:"operation"`
	Mode       string         `db:"mode"`
	State      string         `db:"state"`
	StartedAt  string         `db:"started_at"`
	FinishedAt sql.NullString `db:"finished_at"`
	StatsJSON  string         `db:"stats_json"`
	BackupPath string         `db:"backup_path"`
	ReportPath string         `db:"report_path"`
	Error      string         `db:"error"`
}

// Open opens (creating if needed) the ledger at dsn. Use ":memory:" for a
// throwaway ledger.
func Open(dsn string) (*Ledger, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.WrapIO("open", dsn, err)
	}
	if dsn == ":memory:" {
		// each pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("open", dsn, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.WrapResource("migrate", "history", dsn, err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record inserts or replaces a run entry.
func (l *Ledger) Record(ctx context.Context, run *possync.Run) error {
	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return errors.WrapResource("encode", "run", run.ID, err)
	}
	var finished sql.NullString
	if !run.FinishedAt.IsZero() {
		finished = sql.NullString{String: run.FinishedAt.UTC().Format(timeLayout), Valid: true}
	}

	_, err = l.db.ExecContext(ctx, `
	  INSERT INTO runs
	    (id, operation, mode, state, started_at, finished_at, stats_json, backup_path, report_path, error)
	  VALUES
	    (?,  ?,         ?,    ?,     ?,          ?,           ?,          ?,           ?,           ?)
	  ON CONFLICT(id) DO UPDATE SET
	    state = excluded.state,
	    finished_at = excluded.finished_at,
	    stats_json = excluded.stats_json,
	    backup_path = excluded.backup_path,
	    report_path = excluded.report_path,
	    error = excluded.error
	`, run.ID, run.Operation, run.Mode, string(run.State),
		run.StartedAt.UTC().Format(timeLayout), finished, string(stats),
		run.BackupPath, run.ReportPath, run.Error)
	return errors.WrapResource("record", "run", run.ID, err)
}

// List returns the most recent runs, newest first. A non-empty operation
// filters by operation.
func (l *Ledger) List(ctx context.Context, operation string, limit int) ([]*possync.Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var rows []runRow
	var err error
	if operation == "" {
		err = l.db.SelectContext(ctx, &rows, `
			SELECT * FROM runs ORDER BY started_at DESC, id DESC LIMIT ?
		`, limit)
	} else {
		err = l.db.SelectContext(ctx, &rows, `
			SELECT * FROM runs WHERE operation = ? ORDER BY started_at DESC, id DESC LIMIT ?
		`, operation, limit)
	}
	if err != nil {
		return nil, errors.WrapResource("list", "runs", "", err)
	}

	out := make([]*possync.Run, 0, len(rows))
	for i := range rows {
		run, err := rows[i].toRun()
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}

// Get returns one run by id.
func (l *Ledger) Get(ctx context.Context, id string) (*possync.Run, error) {
	var row runRow
	err := l.db.GetContext(ctx, &row, `SELECT * FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("run", id)
	}
	if err != nil {
		return nil, errors.WrapResource("get", "run", id, err)
	}
	return row.toRun()
}

func (r *runRow) toRun() (*possync.Run, error) {
	run := &possync.Run{
		ID:         r.ID,
		Operation:  r.Operation,
		Mode:       r.Mode,
		State:      possync.State(r.State),
		BackupPath: r.BackupPath,
		ReportPath: r.ReportPath,
		Error:      r.Error,
		Stats:      report.Stats{},
	}
	var err error
	if run.StartedAt, err = time.Parse(timeLayout, r.StartedAt); err != nil {
		return nil, errors.WrapParse("time", "runs.started_at", 0, err)
	}
	if r.FinishedAt.Valid {
		if run.FinishedAt, err = time.Parse(timeLayout, r.FinishedAt.String); err != nil {
			return nil, errors.WrapParse("time", "runs.finished_at", 0, err)
		}
	}
	if err := json.Unmarshal([]byte(r.StatsJSON), &run.Stats); err != nil {
		return nil, errors.WrapParse("json", "runs.stats_json", 0, err)
	}
	return run, nil
}
