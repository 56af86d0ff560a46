package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/5sensprod/possync/pkg/constants"
	"github.com/5sensprod/possync/pkg/errors"
)

// TestLoadConfig verifies defaults when no config file exists.
func TestLoadConfig(t *testing.T) {
	testChdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.LocalPath != constants.DefaultProductsPath {
		t.Errorf("LocalPath = %q, want %q", config.LocalPath, constants.DefaultProductsPath)
	}
	if config.CategoriesPath != constants.DefaultCategoriesPath {
		t.Errorf("CategoriesPath = %q, want %q", config.CategoriesPath, constants.DefaultCategoriesPath)
	}
	if config.WooRatePerMinute != constants.DefaultRatePerMinute {
		t.Errorf("WooRatePerMinute = %d, want %d", config.WooRatePerMinute, constants.DefaultRatePerMinute)
	}
	if config.LogFormat != "auto" {
		t.Errorf("LogFormat = %q, want auto", config.LogFormat)
	}
	if config.ConfigFile != "" {
		t.Errorf("ConfigFile = %q, want empty", config.ConfigFile)
	}
}

// TestConfig_EnvironmentVariables verifies POSSYNC_* variables are read.
func TestConfig_EnvironmentVariables(t *testing.T) {
	testChdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("POSSYNC_SOURCE_PATH", "/srv/pos/source.db")
	t.Setenv("POSSYNC_VERBOSE", "true")
	t.Setenv("POSSYNC_FORMAT", "json")
	t.Setenv("POSSYNC_WOO_TIMEOUT", "5s")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.SourcePath != "/srv/pos/source.db" {
		t.Errorf("SourcePath = %q, want /srv/pos/source.db", config.SourcePath)
	}
	if !config.Verbose {
		t.Error("POSSYNC_VERBOSE not loaded")
	}
	if config.Format != "json" {
		t.Errorf("Format = %q, want json", config.Format)
	}
	if config.WooTimeout != 5*time.Second {
		t.Errorf("WooTimeout = %v, want 5s", config.WooTimeout)
	}
}

// TestConfig_File verifies an explicit config file is read.
func TestConfig_File(t *testing.T) {
	testChdir(t, t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "possync.yaml")
	content := `local_path: /srv/pos/products.db
woo_url: https://shop.example.com
placeholder_names:
  - produit sans nom
  - test
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.LocalPath != "/srv/pos/products.db" {
		t.Errorf("LocalPath = %q", config.LocalPath)
	}
	if config.WooURL != "https://shop.example.com" {
		t.Errorf("WooURL = %q", config.WooURL)
	}
	if len(config.PlaceholderNames) != 2 {
		t.Errorf("PlaceholderNames = %v, want 2 entries", config.PlaceholderNames)
	}
	if config.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", config.ConfigFile, path)
	}
}

// TestConfig_MissingExplicitFile verifies a named but absent file is an error.
func TestConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("LoadConfig() succeeded for a missing file")
	}
	var cfgErr *errors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error = %T, want *errors.ConfigError", err)
	}
}

// TestConfig_UpdateFromFlags verifies flags win over loaded values.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Format: "yaml", LogLevel: "info"}

	config.UpdateFromFlags(true, false, true, "json", "")
	if !config.Verbose || !config.NoColor {
		t.Error("boolean flags not applied")
	}
	if config.Format != "json" {
		t.Errorf("Format = %q, want json", config.Format)
	}
	if config.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info (empty flag keeps value)", config.LogLevel)
	}
}

// TestConfig_Paths verifies the path mapping.
func TestConfig_Paths(t *testing.T) {
	config := &Config{LocalPath: "a.db", SourcePath: "b.db", ReportDir: "out"}
	paths := config.Paths()
	if paths.Local != "a.db" || paths.Source != "b.db" || paths.ReportDir != "out" {
		t.Errorf("Paths() = %+v", paths)
	}
	if cfg := paths.SyncConfig(); cfg.LocalPath != "a.db" || cfg.SourcePath != "b.db" {
		t.Errorf("SyncConfig() = %+v", cfg)
	}
}

// testChdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func testChdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			panic("testChdir: restoring working directory: " + err.Error())
		}
	})
}
