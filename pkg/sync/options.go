// Package sync drives reconciliation runs: it loads collections through the
// record store, matches and diffs them, resolves duplicates, and writes the
// outcome back once, behind a backup, with a report.
package sync

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/5sensprod/possync/pkg/differ"
	"github.com/5sensprod/possync/pkg/errors"
	"github.com/5sensprod/possync/pkg/resolver"
	"github.com/5sensprod/possync/pkg/scorer"
)

// Config names the files a run works on.
type Config struct {
	LocalPath      string // local product store
	SourcePath     string // source-of-truth snapshot
	CategoriesPath string
	BrandsPath     string
	SuppliersPath  string
	BackupDir      string // empty means <store dir>/backups
	ReportDir      string
}

// Options controls a run.
type Options struct {
	// Mode
	DryRun bool // decide and report, never write
	Reset  bool // clear the local collection before applying the source

	// Decisions
	Scope        resolver.Scope
	Fields       []string // empty means differ.DefaultFields
	Strategy     differ.ApplyStrategy
	Absence      differ.AbsencePolicy
	NameFallback bool

	// Dependencies
	Fs       afero.Fs
	Clock    func() time.Time
	NewRunID func() string
	Scorer   *scorer.Scorer
	Recorder Recorder
}

// Option is a function that configures run Options.
type Option func(*Options)

// Defaults returns the default options. Runs are dry by default.
func Defaults() *Options {
	return &Options{
		DryRun:   true,
		Scope:    resolver.ScopeAll,
		Strategy: differ.ApplyAll,
		Absence:  differ.AbsentAsDefault,
		Fs:       afero.NewOsFs(),
		Clock:    time.Now,
		NewRunID: uuid.NewString,
	}
}

// Apply applies the given options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Mode returns "dry-run" or "execute".
func (o *Options) Mode() string {
	if o.DryRun {
		return "dry-run"
	}
	return "execute"
}

// Validate checks that the options are usable. Paths are checked by each
// operation.
func (o *Options) Validate() error {
	if _, err := resolver.ParseScope(string(o.Scope)); err != nil {
		return err
	}
	strategy, err := differ.ParseStrategy(string(o.Strategy))
	if err != nil {
		return err
	}
	if o.Reset && strategy != differ.ApplyAll {
		return &errors.ValidationError{
			Field:   "Reset",
			Value:   o.Strategy,
			Message: "reset replaces the local store and requires strategy all",
		}
	}
	for _, f := range o.Fields {
		if strings.TrimSpace(f) == "" {
			return &errors.ValidationError{
				Field:   "Fields",
				Value:   o.Fields,
				Message: "field names must not be empty",
			}
		}
	}
	return nil
}

// WithDryRun configures dry run mode.
func WithDryRun(dryRun bool) Option {
	return func(opts *Options) {
		opts.DryRun = dryRun
	}
}

// WithReset clears the local collection before the source is applied.
func WithReset(reset bool) Option {
	return func(opts *Options) {
		opts.Reset = reset
	}
}

// WithScope selects the duplicate grouping dimension.
func WithScope(scope resolver.Scope) Option {
	return func(opts *Options) {
		opts.Scope = scope
	}
}

// WithFields restricts the compared fields.
func WithFields(fields ...string) Option {
	return func(opts *Options) {
		opts.Fields = fields
	}
}

// WithStrategy configures which changes are applied.
func WithStrategy(strategy differ.ApplyStrategy) Option {
	return func(opts *Options) {
		opts.Strategy = strategy
	}
}

// WithAbsencePolicy configures how missing fields compare.
func WithAbsencePolicy(p differ.AbsencePolicy) Option {
	return func(opts *Options) {
		opts.Absence = p
	}
}

// WithNameFallback lets the matcher pair records on normalized name.
func WithNameFallback(enabled bool) Option {
	return func(opts *Options) {
		opts.NameFallback = enabled
	}
}

// WithFs sets the filesystem every store and report goes through.
func WithFs(fs afero.Fs) Option {
	return func(opts *Options) {
		if fs != nil {
			opts.Fs = fs
		}
	}
}

// WithClock sets the time source for backups, reports and last_sync.
func WithClock(clock func() time.Time) Option {
	return func(opts *Options) {
		if clock != nil {
			opts.Clock = clock
		}
	}
}

// WithRunIDs sets the run id generator.
func WithRunIDs(fn func() string) Option {
	return func(opts *Options) {
		if fn != nil {
			opts.NewRunID = fn
		}
	}
}

// WithScorer sets the scorer used to rank duplicates.
func WithScorer(s *scorer.Scorer) Option {
	return func(opts *Options) {
		opts.Scorer = s
	}
}

// WithRecorder appends every completed run to a ledger.
func WithRecorder(r Recorder) Option {
	return func(opts *Options) {
		opts.Recorder = r
	}
}
