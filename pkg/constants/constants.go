// Package constants provides shared constants used throughout possync.
// This includes file permissions, timestamp layouts, default paths and the
// limits used when talking to the remote catalog.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Format constants
const (
	// TimeFormatISO8601 is the layout used for report timestamps
	TimeFormatISO8601 = time.RFC3339

	// TimeFormatBackup is the layout appended to backup file names.
	// Millisecond precision keeps two saves within the same second apart.
	TimeFormatBackup = "20060102-150405.000"

	// TimeFormatFilename is the layout used in report file names
	TimeFormatFilename = "20060102-150405"

	// TimeFormatHuman is a human-readable time layout for CLI tables
	TimeFormatHuman = "Jan 2, 2006 at 3:04pm"
)

// File name constants
const (
	// BackupExtension is appended to every backup copy
	BackupExtension = ".bak"

	// ReportSuffix is inserted between the operation name and the timestamp
	ReportSuffix = "-report-"

	// TempSuffix marks the in-progress file written before rename
	TempSuffix = ".tmp"
)

// Default paths, relative to the working directory unless configured
const (
	DefaultProductsPath   = "data/products.db"
	DefaultCategoriesPath = "data/categories.db"
	DefaultReportDir      = "reports"
	DefaultHistoryDB      = "data/possync-history.sqlite"
)

// Remote catalog constants
const (
	// DefaultHTTPTimeout is the timeout for a single remote catalog request
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRatePerMinute is the default request budget against the remote catalog
	DefaultRatePerMinute = 60

	// RemotePageSize is the page size used when listing remote products
	RemotePageSize = 100

	// MaxRemotePages bounds pagination in case the remote never returns an empty page
	MaxRemotePages = 1000
)
