package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/5sensprod/possync/internal/cmd/application"
	"github.com/5sensprod/possync/pkg/constants"
	"github.com/5sensprod/possync/pkg/errors"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "POSSYNC"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Store paths
	LocalPath      string
	SourcePath     string
	CategoriesPath string
	BrandsPath     string
	SuppliersPath  string
	BackupDir      string
	ReportDir      string
	HistoryDB      string

	// Remote catalog
	WooURL            string
	WooConsumerKey    string
	WooConsumerSecret string
	WooRatePerMinute  int
	WooTimeout        time.Duration

	// Quality scoring
	PlaceholderNames []string
	PlaceholderSKUs  []string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (POSSYNC_*)
// 3. .env files
// 4. Config file (.possync.yaml in the working directory or home)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".possync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, &errors.ConfigError{Component: "config", Message: "cannot read config file", Err: err}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		LocalPath:      v.GetString("local_path"),
		SourcePath:     v.GetString("source_path"),
		CategoriesPath: v.GetString("categories_path"),
		BrandsPath:     v.GetString("brands_path"),
		SuppliersPath:  v.GetString("suppliers_path"),
		BackupDir:      v.GetString("backup_dir"),
		ReportDir:      v.GetString("report_dir"),
		HistoryDB:      v.GetString("history_db"),

		WooURL:            v.GetString("woo_url"),
		WooConsumerKey:    v.GetString("woo_consumer_key"),
		WooConsumerSecret: v.GetString("woo_consumer_secret"),
		WooRatePerMinute:  v.GetInt("woo_rate_per_minute"),
		WooTimeout:        v.GetDuration("woo_timeout"),

		PlaceholderNames: v.GetStringSlice("placeholder_names"),
		PlaceholderSKUs:  v.GetStringSlice("placeholder_skus"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("local_path", constants.DefaultProductsPath)
	v.SetDefault("categories_path", constants.DefaultCategoriesPath)
	v.SetDefault("report_dir", constants.DefaultReportDir)
	v.SetDefault("history_db", constants.DefaultHistoryDB)
	v.SetDefault("woo_rate_per_minute", constants.DefaultRatePerMinute)
	v.SetDefault("woo_timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// Paths returns the configured default paths.
func (c *Config) Paths() application.Paths {
	return application.Paths{
		Local:      c.LocalPath,
		Source:     c.SourcePath,
		Categories: c.CategoriesPath,
		Brands:     c.BrandsPath,
		Suppliers:  c.SuppliersPath,
		BackupDir:  c.BackupDir,
		ReportDir:  c.ReportDir,
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env; real environment variables win over both.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
