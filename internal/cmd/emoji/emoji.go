// Package emoji provides symbol constants for CLI output.
package emoji

// Status symbols used in stderr progress lines.
const (
	// Success marks a completed operation.
	Success = "✓"

	// Error marks a failed operation.
	Error = "✗"

	// Warning marks a non-fatal issue.
	Warning = "!"

	// Info marks an informational line.
	Info = "i"

	// DryRun marks output of a run that wrote nothing.
	DryRun = "~"
)
