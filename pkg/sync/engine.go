package sync

import (
	"context"
	"strings"

	"github.com/5sensprod/possync/pkg/differ"
	"github.com/5sensprod/possync/pkg/errors"
	"github.com/5sensprod/possync/pkg/logging"
	"github.com/5sensprod/possync/pkg/records"
	"github.com/5sensprod/possync/pkg/report"
	"github.com/5sensprod/possync/pkg/resolver"
	"github.com/5sensprod/possync/pkg/scorer"
	"github.com/5sensprod/possync/pkg/store"
)

// Engine runs reconciliation operations over one configuration.
type Engine struct {
	cfg        Config
	opts       *Options
	products   *store.Store[records.Product]
	categories *store.Store[records.Category]
	entities   *store.Store[records.Entity]
	reports    *report.Writer
	differ     *differ.Differ
	resolver   *resolver.Resolver
}

// New creates an Engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	o := Defaults().Apply(opts...)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	o.Scope, _ = resolver.ParseScope(string(o.Scope))
	o.Strategy, _ = differ.ParseStrategy(string(o.Strategy))

	storeOpts := []store.Option{
		store.WithFs(o.Fs),
		store.WithBackupDir(cfg.BackupDir),
		store.WithClock(o.Clock),
	}
	return &Engine{
		cfg:        cfg,
		opts:       o,
		products:   store.New[records.Product](storeOpts...),
		categories: store.New[records.Category](storeOpts...),
		entities:   store.New[records.Entity](storeOpts...),
		reports:    report.NewWriter(cfg.ReportDir, report.WithFs(o.Fs)),
		differ:     differ.New(differ.WithAbsencePolicy(o.Absence)),
		resolver:   resolver.New(o.Scorer),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Options returns the engine options.
func (e *Engine) Options() Options {
	return *e.opts
}

// run tracks one operation through the state machine.
type run struct {
	e      *Engine
	ctx    context.Context
	result *Result
	report *report.Report
	run    *Run
}

func (e *Engine) begin(ctx context.Context, operation string) *run {
	if ctx == nil {
		ctx = context.Background()
	}
	id := e.opts.NewRunID()
	ctx = logging.WithRun(ctx, id)
	ctx = logging.WithOperation(ctx, operation)

	now := e.opts.Clock()
	stats := make(report.Stats)
	rep := report.New(operation, now)
	rep.Mode = e.opts.Mode()
	rep.RunID = id
	rep.Stats = stats

	logging.FromContext(ctx).Info().
		Str("mode", e.opts.Mode()).
		Msg("Run started")

	return &run{
		e:   e,
		ctx: ctx,
		result: &Result{
			RunID:     id,
			Operation: operation,
			State:     StateIdle,
			DryRun:    e.opts.DryRun,
			Stats:     stats,
		},
		report: rep,
		run: &Run{
			ID:        id,
			Operation: operation,
			Mode:      e.opts.Mode(),
			StartedAt: now,
			Stats:     stats,
		},
	}
}

func (r *run) to(s State) {
	r.result.State = s
	logging.FromContext(r.ctx).Debug().Str("phase", string(s)).Msg("Run phase")
}

// check returns an error once the context is done.
func (r *run) check() error {
	if err := r.ctx.Err(); err != nil {
		return errors.Join(errors.ErrCanceled, err)
	}
	return nil
}

func (r *run) warn(format string, args ...any) {
	r.report.Warn(format, args...)
	msg := r.report.Warnings[len(r.report.Warnings)-1]
	r.result.Warnings = append(r.result.Warnings, msg)
	logging.FromContext(r.ctx).Warn().Msg(msg)
}

func (r *run) detail(v any) {
	r.report.Detail(v)
}

// decided reports whether the run has anything worth a report.
func (r *run) decided(changed bool) bool {
	return changed || len(r.report.Details) > 0 || len(r.report.Warnings) > 0
}

func (r *run) writeReport() error {
	r.report.SetBackup(r.result.BackupPath)
	path, err := r.e.reports.Write(r.report)
	if err != nil {
		return err
	}
	r.result.ReportPath = path
	logging.FromContext(r.ctx).Info().Str("report", path).Msg("Report written")
	return nil
}

// finish records the run and returns its result.
func (e *Engine) finish(r *run, err error) (*Result, error) {
	log := logging.FromContext(r.ctx)
	if err != nil {
		r.to(StateFailed)
		log.Error().Err(err).Msg("Run failed")
	} else {
		log.Info().Str("state", string(r.result.State)).Msg(r.result.Summary())
	}

	if e.opts.Recorder != nil {
		entry := r.run
		entry.State = r.result.State
		entry.FinishedAt = e.opts.Clock()
		entry.BackupPath = r.result.BackupPath
		entry.ReportPath = r.result.ReportPath
		if err != nil {
			entry.Error = err.Error()
		}
		if rerr := e.opts.Recorder.Record(context.WithoutCancel(r.ctx), entry); rerr != nil {
			log.Warn().Err(rerr).Msg("Could not record run")
		}
	}
	return r.result, err
}

// conclude ends the decided phase: a dry run only reports, an execute run
// with changes commits them, an execute run without changes reports
// whatever it found and leaves the store alone.
func conclude[T any](r *run, s *store.Store[T], path string, items []*T, changed bool) error {
	if r.e.opts.DryRun || !changed {
		if r.decided(changed) {
			if err := r.writeReport(); err != nil {
				return err
			}
		}
		if r.e.opts.DryRun {
			r.to(StateDryRunReported)
		} else {
			r.to(StateReported)
		}
		return nil
	}
	return commit(r, s, path, items)
}

// commit backs up path, writes items once and writes the report. Any
// failure after the backup restores the store before returning.
func commit[T any](r *run, s *store.Store[T], path string, items []*T) error {
	log := logging.FromContext(logging.WithStore(r.ctx, path))

	if err := r.check(); err != nil {
		return err
	}
	r.to(StateApplying)

	backup, err := s.Backup(path)
	if err != nil {
		return err
	}
	r.result.BackupPath = backup
	r.to(StateBackedUp)

	if err := s.Write(path, items); err != nil {
		return rollback(r, s, path, err)
	}
	r.result.Written = true
	r.to(StateWritten)
	log.Info().Int("records", len(items)).Msg("Store written")

	if err := r.writeReport(); err != nil {
		return rollback(r, s, path, err)
	}
	r.to(StateReported)
	return nil
}

func rollback[T any](r *run, s *store.Store[T], path string, cause error) error {
	var restoreErr error
	switch {
	case r.result.BackupPath != "":
		restoreErr = s.RestoreFromBackup(r.result.BackupPath, path)
	case r.result.Written:
		restoreErr = s.Fs().Remove(path)
	}
	r.result.Written = false
	if restoreErr != nil {
		return errors.Join(cause, restoreErr)
	}
	return cause
}

// load reads a required collection. Zero records is a hard stop.
func load[T any](r *run, s *store.Store[T], name, path string) (*store.LoadResult[T], error) {
	if strings.TrimSpace(path) == "" {
		return nil, &errors.ValidationError{Field: name + "_path", Message: "path is required"}
	}
	if err := r.check(); err != nil {
		return nil, err
	}
	res, err := s.Load(path)
	if err != nil {
		return nil, err
	}
	if res.Empty() {
		return nil, errors.NewEmptyCollectionError(name, path)
	}
	logging.FromContext(r.ctx).Info().
		Str("collection", name).
		Int("records", len(res.Records)).
		Int("skipped", res.Skipped).
		Msg("Collection loaded")
	return res, nil
}

// loadIndex reads an optional reference collection. An unset path or an
// empty collection yields a nil index, which disables checks against it.
func loadIndex[T any, PT interface {
	*T
	Key() string
}](r *run, s *store.Store[T], name, path string) (records.Index, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	res, err := s.Load(path)
	if err != nil {
		return nil, err
	}
	if res.Empty() {
		r.warn("%s collection %s is empty, references to it are not checked", name, path)
		return nil, nil
	}
	return indexOf[T, PT](res.Records), nil
}

func indexOf[T any, PT interface {
	*T
	Key() string
}](items []*T) records.Index {
	ix := make(records.Index, len(items))
	for _, rec := range items {
		if k := PT(rec).Key(); k != "" {
			ix[k] = struct{}{}
		}
	}
	return ix
}

// scoringIndex reads a reference collection for scoring. Unlike loadIndex
// it stays silent when the collection is missing or empty.
func scoringIndex[T any, PT interface {
	*T
	Key() string
}](r *run, s *store.Store[T], name, path string) (records.Index, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	res, err := s.Load(path)
	if err != nil {
		return nil, err
	}
	if res.Empty() {
		logging.FromContext(r.ctx).Debug().Str("collection", name).Str("path", path).Msg("No reference index for scoring")
		return nil, nil
	}
	return indexOf[T, PT](res.Records), nil
}

// resolverFor returns the resolver for a run. When category, brand or
// supplier stores are configured, their ids back the scorer's resolved
// reference criteria.
func (e *Engine) resolverFor(r *run) (*resolver.Resolver, error) {
	cats, err := scoringIndex[records.Category](r, e.categories, "categories", e.cfg.CategoriesPath)
	if err != nil {
		return nil, err
	}
	brands, err := scoringIndex[records.Entity](r, e.entities, "brands", e.cfg.BrandsPath)
	if err != nil {
		return nil, err
	}
	suppliers, err := scoringIndex[records.Entity](r, e.entities, "suppliers", e.cfg.SuppliersPath)
	if err != nil {
		return nil, err
	}
	if cats == nil && brands == nil && suppliers == nil {
		return e.resolver, nil
	}

	base := e.opts.Scorer
	if base == nil {
		base = scorer.New()
	}
	return resolver.New(base.With(
		scorer.WithCategories(cats),
		scorer.WithBrands(brands),
		scorer.WithSuppliers(suppliers),
	)), nil
}
