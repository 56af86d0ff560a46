// Package application defines what subcommands need from the CLI
// application, so commands can be built and tested against a mock.
package application

import (
	"context"

	"github.com/rs/zerolog"

	possync "github.com/5sensprod/possync/pkg/sync"
)

// Paths are the configured default file locations. Command flags
// override them per run.
type Paths struct {
	Local      string
	Source     string
	Categories string
	Brands     string
	Suppliers  string
	BackupDir  string
	ReportDir  string
}

// SyncConfig builds the engine configuration for these paths.
func (p Paths) SyncConfig() possync.Config {
	return possync.Config{
		LocalPath:      p.Local,
		SourcePath:     p.Source,
		CategoriesPath: p.Categories,
		BrandsPath:     p.Brands,
		SuppliersPath:  p.Suppliers,
		BackupDir:      p.BackupDir,
		ReportDir:      p.ReportDir,
	}
}

// Ledger is the run history.
type Ledger interface {
	possync.Recorder
	List(ctx context.Context, operation string, limit int) ([]*possync.Run, error)
	Get(ctx context.Context, id string) (*possync.Run, error)
}

// Application is the interface commands use to reach shared state.
type Application interface {
	// Logger returns the configured logger.
	Logger() *zerolog.Logger
	// OutputFormat returns the --format value, possibly empty.
	OutputFormat() string
	// Paths returns the configured default paths.
	Paths() Paths
	// Engine creates an engine for cfg. The application adds its own
	// options (scorer, recorder) before opts.
	Engine(cfg possync.Config, opts ...possync.Option) (*possync.Engine, error)
	// Remote returns the configured remote catalog.
	Remote() (possync.Remote, error)
	// History returns the run ledger, or nil when none is configured.
	History() (Ledger, error)

	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
