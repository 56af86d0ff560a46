// Package report builds the JSON report written after every run that
// produced a decision, and renders it for humans.
//
// The on-disk shape is fixed: timestamp, stats, details and backup_file.
// Counter names vary per operation.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"

	"github.com/5sensprod/possync/internal/utils/ptr"
	"github.com/5sensprod/possync/pkg/constants"
	"github.com/5sensprod/possync/pkg/errors"
)

// Operation names used as report file prefixes.
const (
	OperationSync      = "sync"
	OperationDedupe    = "dedupe"
	OperationHierarchy = "hierarchy"
	OperationRepair    = "repair"
	OperationPush      = "push"
	OperationPull      = "pull"
	OperationRestore   = "restore"
)

// Modes.
const (
	ModeDryRun  = "dry-run"
	ModeExecute = "execute"
)

// Stats holds the operation counters.
type Stats map[string]int

// Keys returns the counter names in sorted order.
func (s Stats) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Report is one run's outcome.
type Report struct {
	Timestamp  time.Time `json:"timestamp"`
	Operation  string    `json:"operation,omitempty"`
	Mode       string    `json:"mode,omitempty"`
	RunID      string    `json:"run_id,omitempty"`
	Stats      Stats     `json:"stats"`
	Details    []any     `json:"details"`
	Warnings   []string  `json:"warnings,omitempty"`
	BackupFile *string   `json:"backup_file"`
}

// New creates an empty report.
func New(operation string, at time.Time) *Report {
	return &Report{
		Timestamp: at,
		Operation: operation,
		Stats:     make(Stats),
		Details:   []any{},
	}
}

// Set assigns a counter.
func (r *Report) Set(key string, n int) *Report {
	r.Stats[key] = n
	return r
}

// Add increments a counter.
func (r *Report) Add(key string, n int) *Report {
	r.Stats[key] += n
	return r
}

// Detail appends a detail entry.
func (r *Report) Detail(v any) *Report {
	r.Details = append(r.Details, v)
	return r
}

// Warn appends a warning line.
func (r *Report) Warn(format string, args ...any) *Report {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
	return r
}

// SetBackup records the backup file. An empty path keeps backup_file null.
func (r *Report) SetBackup(path string) *Report {
	r.BackupFile = ptr.String(path)
	return r
}

// Backup returns the backup path or "".
func (r *Report) Backup() string {
	if r.BackupFile == nil {
		return ""
	}
	return *r.BackupFile
}

// FileName returns "<operation>-report-<timestamp>.json".
func (r *Report) FileName() string {
	op := r.Operation
	if op == "" {
		op = "run"
	}
	return op + constants.ReportSuffix + r.Timestamp.Format(constants.TimeFormatFilename) + ".json"
}

// Writer persists reports into a directory.
type Writer struct {
	fs  afero.Fs
	dir string
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithFs sets the filesystem reports are written to.
func WithFs(fs afero.Fs) WriterOption {
	return func(w *Writer) {
		if fs != nil {
			w.fs = fs
		}
	}
}

// NewWriter creates a Writer for dir.
func NewWriter(dir string, opts ...WriterOption) *Writer {
	if dir == "" {
		dir = constants.DefaultReportDir
	}
	w := &Writer{fs: afero.NewOsFs(), dir: dir}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the report directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write encodes r as indented JSON and returns the file path. A report
// written within the same second as an earlier one gets a numeric suffix.
func (w *Writer) Write(r *Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", errors.WrapResource("encode", "report", r.Operation, err)
	}
	if err := w.fs.MkdirAll(w.dir, constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", w.dir, err)
	}

	path := filepath.Join(w.dir, r.FileName())
	ext := filepath.Ext(path)
	stem := path[:len(path)-len(ext)]
	for n := 1; ; n++ {
		if ok, _ := afero.Exists(w.fs, path); !ok {
			break
		}
		path = fmt.Sprintf("%s-%d%s", stem, n, ext)
	}

	if err := afero.WriteFile(w.fs, path, append(data, '\n'), constants.FilePermissions); err != nil {
		return "", errors.WrapIO("write", path, err)
	}
	return path, nil
}

// List returns report files in the directory, newest first.
func (w *Writer) List() ([]string, error) {
	entries, err := afero.ReadDir(w.fs, w.dir)
	if err != nil {
		if ok, _ := afero.DirExists(w.fs, w.dir); !ok {
			return nil, nil
		}
		return nil, errors.WrapIO("read", w.dir, err)
	}
	var files []os.FileInfo
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			files = append(files, e)
		}
	}
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime().Equal(files[j].ModTime()) {
			return files[i].ModTime().After(files[j].ModTime())
		}
		return files[i].Name() > files[j].Name()
	})
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = filepath.Join(w.dir, f.Name())
	}
	return out, nil
}

// Read decodes a report file.
func Read(fs afero.Fs, path string) (*Report, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.WrapParse("json", path, 0, err)
	}
	if r.Stats == nil {
		r.Stats = make(Stats)
	}
	return &r, nil
}
