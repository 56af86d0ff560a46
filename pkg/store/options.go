package store

import (
	"time"

	"github.com/spf13/afero"
)

// Options configures a Store.
type Options struct {
	Fs        afero.Fs
	BackupDir string // empty means "<dir of file>/backups"
	Clock     func() time.Time
}

// Option is a function that configures store Options.
type Option func(*Options)

// Defaults returns the default store options: the OS filesystem and the
// wall clock.
func Defaults() *Options {
	return &Options{
		Fs:    afero.NewOsFs(),
		Clock: time.Now,
	}
}

// Apply applies the given options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFs sets the filesystem.
func WithFs(fs afero.Fs) Option {
	return func(o *Options) {
		if fs != nil {
			o.Fs = fs
		}
	}
}

// WithBackupDir sets the directory backups are written to.
func WithBackupDir(dir string) Option {
	return func(o *Options) {
		o.BackupDir = dir
	}
}

// WithClock sets the time source used to stamp backups.
func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		if clock != nil {
			o.Clock = clock
		}
	}
}
