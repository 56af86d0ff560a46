package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/5sensprod/possync/pkg/logging"
)

// NewLogger creates a configured logger based on the application
// configuration and installs it as the package default.
// Log level precedence (highest to lowest):
//  1. --log-level flag or POSSYNC_LOG_LEVEL
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for error)
//  4. Default (warn; progress lines go through the status writer)
func NewLogger(config *Config) zerolog.Logger {
	level := determineLogLevel(config)

	logConfig := &logging.Config{
		Level:      level,
		Format:     config.LogFormat,
		Output:     config.LogOutput,
		TimeFormat: "kitchen",
		NoColor:    config.NoColor,
		AddCaller:  level == "debug" || level == "trace",
	}

	logger := logging.NewLoggerFromConfig(logConfig)
	logging.SetDefault(logger)
	return logger
}

// determineLogLevel determines the log level using clear precedence rules.
func determineLogLevel(config *Config) string {
	if config.LogLevel != "" {
		validated := validateLogLevel(config.LogLevel)
		if validated != config.LogLevel {
			fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using %q\n", config.LogLevel, validated)
		}
		return validated
	}

	if config.Verbose && config.Quiet {
		fmt.Fprintf(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "error"
	}

	if config.Verbose {
		return "debug"
	}
	if config.Quiet {
		return "error"
	}
	return "warn"
}

// validateLogLevel validates a log level string and returns a valid level.
// If the input is invalid, returns "warn".
func validateLogLevel(level string) string {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return level
	}
	return "warn"
}
