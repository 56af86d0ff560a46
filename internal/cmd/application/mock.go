package application

import (
	"github.com/rs/zerolog"

	"github.com/5sensprod/possync/pkg/logging"
	possync "github.com/5sensprod/possync/pkg/sync"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    PathsFunc: func() application.Paths {
//	        return application.Paths{Local: "/data/products.db"}
//	    },
//	}
//	cmd := dedupe.NewCommand(mock)
type Mock struct {
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	PathsFunc        func() Paths
	EngineFunc       func(cfg possync.Config, opts ...possync.Option) (*possync.Engine, error)
	RemoteFunc       func() (possync.Remote, error)
	HistoryFunc      func() (Ledger, error)
	VersionFunc      func() string
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	return logging.NewNopLogger()
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Paths returns paths using the mock function or zero paths.
func (m *Mock) Paths() Paths {
	if m.PathsFunc != nil {
		return m.PathsFunc()
	}
	return Paths{}
}

// Engine creates an engine using the mock function or possync.New.
func (m *Mock) Engine(cfg possync.Config, opts ...possync.Option) (*possync.Engine, error) {
	if m.EngineFunc != nil {
		return m.EngineFunc(cfg, opts...)
	}
	return possync.New(cfg, opts...)
}

// Remote returns the remote using the mock function or nil.
func (m *Mock) Remote() (possync.Remote, error) {
	if m.RemoteFunc != nil {
		return m.RemoteFunc()
	}
	return nil, nil
}

// History returns the ledger using the mock function or nil.
func (m *Mock) History() (Ledger, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc()
	}
	return nil, nil
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }

var _ Application = (*Mock)(nil)
