// Package app provides the application context and dependency management
// for the possync CLI: configuration, logging, the run ledger and the
// remote catalog client, shared by every subcommand.
package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/5sensprod/possync/internal/cmd/application"
	"github.com/5sensprod/possync/internal/history"
	"github.com/5sensprod/possync/internal/pattern"
	"github.com/5sensprod/possync/internal/remote/woocommerce"
	"github.com/5sensprod/possync/pkg/constants"
	"github.com/5sensprod/possync/pkg/errors"
	"github.com/5sensprod/possync/pkg/scorer"
	possync "github.com/5sensprod/possync/pkg/sync"
)

// App represents the possync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Run ledger (lazy-initialized, singleton)
	mu     sync.Mutex
	ledger *history.Ledger
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the selected output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Paths returns the configured default paths.
func (a *App) Paths() application.Paths {
	return a.config.Paths()
}

// Engine creates an engine with the configured scorer and, when a ledger
// is configured, a recorder.
func (a *App) Engine(cfg possync.Config, opts ...possync.Option) (*possync.Engine, error) {
	sc, err := a.scorer()
	if err != nil {
		return nil, err
	}
	base := []possync.Option{possync.WithScorer(sc)}

	ledger, err := a.History()
	if err != nil {
		a.logger.Warn().Err(err).Msg("Run history unavailable, runs will not be recorded")
	} else if ledger != nil {
		base = append(base, possync.WithRecorder(ledger))
	}

	return possync.New(cfg, append(base, opts...)...)
}

func (a *App) scorer() (*scorer.Scorer, error) {
	var opts []scorer.Option
	if len(a.config.PlaceholderNames) > 0 {
		p, err := pattern.NewPlaceholders(a.config.PlaceholderNames)
		if err != nil {
			return nil, errors.WrapValidation("placeholder_names", err)
		}
		opts = append(opts, scorer.WithPlaceholderNames(p))
	}
	if len(a.config.PlaceholderSKUs) > 0 {
		p, err := pattern.NewPlaceholders(a.config.PlaceholderSKUs)
		if err != nil {
			return nil, errors.WrapValidation("placeholder_skus", err)
		}
		opts = append(opts, scorer.WithPlaceholderSKUs(p))
	}
	return scorer.New(opts...), nil
}

// Remote returns a client for the configured WooCommerce store.
func (a *App) Remote() (possync.Remote, error) {
	if a.config.WooURL == "" {
		return nil, &errors.ConfigError{Component: "remote", Message: "woo_url is not configured (set POSSYNC_WOO_URL)"}
	}
	client, err := woocommerce.New(woocommerce.Config{
		URL:            a.config.WooURL,
		ConsumerKey:    a.config.WooConsumerKey,
		ConsumerSecret: a.config.WooConsumerSecret,
		RatePerMinute:  a.config.WooRatePerMinute,
		Timeout:        a.config.WooTimeout,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// History opens the run ledger on first use. It returns nil without error
// when history_db is empty.
func (a *App) History() (application.Ledger, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ledger != nil {
		return a.ledger, nil
	}
	dsn := a.config.HistoryDB
	if dsn == "" {
		return nil, nil
	}
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("mkdir", filepath.Dir(dsn), err)
		}
	}
	ledger, err := history.Open(dsn)
	if err != nil {
		return nil, err
	}
	a.ledger = ledger
	return ledger, nil
}

// Shutdown releases the ledger.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ledger == nil {
		return nil
	}
	err := a.ledger.Close()
	a.ledger = nil
	return err
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
