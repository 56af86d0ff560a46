package app

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/5sensprod/possync/pkg/errors"
	possync "github.com/5sensprod/possync/pkg/sync"
)

func newTestApp(t *testing.T, config *Config) *App {
	t.Helper()
	testChdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	app, err := New("1.0.0", "abc123", "2024-01-01", "test", WithConfig(config))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })
	return app
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app := newTestApp(t, &Config{LogFormat: "json"})

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.OutputFormat() != "" {
		t.Errorf("OutputFormat() = %q, want empty", app.OutputFormat())
	}
}

// TestApp_History_Singleton verifies History() opens the ledger once.
func TestApp_History_Singleton(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "state", "history.sqlite")
	app := newTestApp(t, &Config{HistoryDB: dsn})

	l1, err := app.History()
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	l2, err := app.History()
	if err != nil {
		t.Fatalf("History() failed on second call: %v", err)
	}
	if l1 != l2 {
		t.Error("History() returned different instances")
	}

	if err := app.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() failed: %v", err)
	}
}

// TestApp_History_Disabled verifies an empty history_db disables the ledger.
func TestApp_History_Disabled(t *testing.T) {
	app := newTestApp(t, &Config{})

	ledger, err := app.History()
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	if ledger != nil {
		t.Error("History() returned a ledger without history_db")
	}
}

// TestApp_Remote verifies the remote needs a URL.
func TestApp_Remote(t *testing.T) {
	app := newTestApp(t, &Config{})

	_, err := app.Remote()
	var cfgErr *errors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Remote() error = %v, want *errors.ConfigError", err)
	}

	app.config.WooURL = "https://shop.example.com"
	remote, err := app.Remote()
	if err != nil {
		t.Fatalf("Remote() failed: %v", err)
	}
	if remote.Name() != "woocommerce" {
		t.Errorf("Name() = %q, want woocommerce", remote.Name())
	}
}

// TestApp_Engine verifies engine construction from config.
func TestApp_Engine(t *testing.T) {
	app := newTestApp(t, &Config{PlaceholderNames: []string{"sans nom"}})

	engine, err := app.Engine(possync.Config{LocalPath: "products.db"})
	if err != nil {
		t.Fatalf("Engine() failed: %v", err)
	}
	if engine == nil {
		t.Fatal("Engine() returned nil")
	}
}

// TestApp_VersionCommand verifies the version output.
func TestApp_VersionCommand(t *testing.T) {
	app := newTestApp(t, &Config{LogOutput: "discard"})

	root := app.createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !strings.Contains(out.String(), "possync 1.0.0") || !strings.Contains(out.String(), "abc123") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

// TestApp_Commands verifies every command is registered in a group.
func TestApp_Commands(t *testing.T) {
	app := newTestApp(t, &Config{})
	root := app.createRootCommand()

	want := []string{"sync", "diff", "dedupe", "categories", "repair", "restore", "pull", "push", "report", "history", "version", "man"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Errorf("command %q not registered", name)
		}
	}
}
