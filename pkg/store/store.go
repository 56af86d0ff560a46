// Package store reads and writes collections of records persisted as one
// JSON object per line.
//
// Loading is forgiving: a malformed line is skipped and counted, a missing
// or empty file yields an empty collection with a diagnostic. Saving is
// strict: the existing file is copied to a timestamped backup first, and a
// failed backup blocks the write. The new content is written to a temp file
// and renamed into place; if anything fails after the backup, the backup is
// restored before the error is returned.
package store

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"

	"github.com/5sensprod/possync/pkg/constants"
	"github.com/5sensprod/possync/pkg/errors"
	"github.com/5sensprod/possync/pkg/logging"
)

// Diagnostic is a non-fatal observation made while loading.
type Diagnostic struct {
	Line    int    `json:"line,omitempty"` // 0 for file-level diagnostics
	Message string `json:"message"`
}

// String returns the diagnostic as text.
func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s", d.Line, d.Message)
	}
	return d.Message
}

// LoadResult is the outcome of loading one file.
type LoadResult[T any] struct {
	Path        string
	Records     []*T
	Lines       int // non-blank lines read
	Skipped     int // lines that failed to decode
	Diagnostics []Diagnostic
}

// Empty reports whether no record was loaded.
func (r *LoadResult[T]) Empty() bool {
	return r == nil || len(r.Records) == 0
}

// Store persists records of type T. T must decode from and encode to a
// single JSON object.
type Store[T any] struct {
	fs        afero.Fs
	backupDir string
	opts      *Options
}

// New creates a store.
func New[T any](opts ...Option) *Store[T] {
	o := Defaults().Apply(opts...)
	return &Store[T]{fs: o.Fs, backupDir: o.BackupDir, opts: o}
}

// Fs returns the filesystem the store works on.
func (s *Store[T]) Fs() afero.Fs {
	return s.fs
}

// Load reads every record of the file at path.
func (s *Store[T]) Load(path string) (*LoadResult[T], error) {
	result := &LoadResult[T]{Path: path, Records: []*T{}}

	f, err := s.fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{Message: "file not found: " + path})
			return result, nil
		}
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := bufio.NewReader(f)
	lineNo := 0
	for {
		line, readErr := reader.ReadBytes('\n')
		if len(line) > 0 {
			lineNo++
			s.decodeLine(result, lineNo, line)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, errors.WrapIO("read", path, readErr)
		}
	}

	if result.Lines == 0 {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{Message: "file is empty: " + path})
	}
	if result.Skipped > 0 {
		logging.Warn().
			Str("path", path).
			Int("skipped", result.Skipped).
			Msg("Skipped malformed lines")
	}

	return result, nil
}

func (s *Store[T]) decodeLine(result *LoadResult[T], lineNo int, line []byte) {
	line = bytes.TrimSpace(line)
	if lineNo == 1 {
		line = bytes.TrimPrefix(line, []byte("\xef\xbb\xbf"))
	}
	if len(line) == 0 {
		return
	}
	result.Lines++

	rec := new(T)
	if err := json.Unmarshal(line, rec); err != nil {
		result.Skipped++
		perr := errors.NewParseError("ndjson", result.Path, lineNo, err)
		result.Diagnostics = append(result.Diagnostics, Diagnostic{Line: lineNo, Message: perr.Message})
		return
	}
	result.Records = append(result.Records, rec)
}

// Save backs up the current file at path, then replaces it with records.
// It returns the backup path, empty when there was no file to back up.
func (s *Store[T]) Save(path string, records []*T) (string, error) {
	backup, err := s.Backup(path)
	if err != nil {
		return "", err
	}

	if err := s.write(path, records); err != nil {
		if backup != "" {
			if rerr := s.RestoreFromBackup(backup, path); rerr != nil {
				return backup, errors.Join(err, rerr)
			}
		}
		return backup, err
	}

	logging.Debug().
		Str("path", path).
		Str("backup", backup).
		Int("records", len(records)).
		Msg("Saved records")

	return backup, nil
}

// Write replaces the file at path without taking a backup. Use it only
// for files that are not stores of record (snapshots, exports).
func (s *Store[T]) Write(path string, records []*T) error {
	return s.write(path, records)
}

func (s *Store[T]) write(path string, records []*T) error {
	var buf bytes.Buffer
	for i, rec := range records {
		if rec == nil {
			continue
		}
		line, err := json.Marshal(rec)
		if err != nil {
			return errors.WrapResource("encode", "record", fmt.Sprint(i), err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return s.replace(path, buf.Bytes())
}

// replace writes data to a temp file next to path and renames it over path.
func (s *Store[T]) replace(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, filepath.Base(path)+".*"+constants.TempSuffix)
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpPath)
		return errors.WrapIO("write", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpPath)
		return errors.WrapIO("close", tmpPath, err)
	}
	if err := s.fs.Rename(tmpPath, path); err != nil {
		_ = s.fs.Remove(tmpPath)
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

// Backup copies the file at path into the backup directory under a
// timestamped name. It returns "" without error when path does not exist.
// Every call produces a new file.
func (s *Store[T]) Backup(path string) (string, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.NewBackupError("backup", path, "", err)
	}

	dir := s.BackupDir(path)
	if err := s.fs.MkdirAll(dir, constants.DirPermissions); err != nil {
		return "", errors.NewBackupError("backup", path, dir, err)
	}

	name := s.backupName(dir, path)
	if err := afero.WriteFile(s.fs, name, data, constants.FilePermissions); err != nil {
		_ = s.fs.Remove(name)
		return "", errors.NewBackupError("backup", path, name, err)
	}

	logging.Info().Str("path", path).Str("backup", name).Msg("Backup created")
	return name, nil
}

// BackupDir returns the directory backups of path are written to.
func (s *Store[T]) BackupDir(path string) string {
	if s.backupDir != "" {
		return s.backupDir
	}
	return filepath.Join(filepath.Dir(path), "backups")
}

func (s *Store[T]) backupName(dir, path string) string {
	stamp := s.opts.Clock().Format(constants.TimeFormatBackup)
	base := filepath.Join(dir, fmt.Sprintf("%s.%s", filepath.Base(path), stamp))
	name := base + constants.BackupExtension
	for n := 1; ; n++ {
		if ok, _ := afero.Exists(s.fs, name); !ok {
			return name
		}
		name = fmt.Sprintf("%s-%d%s", base, n, constants.BackupExtension)
	}
}

// RestoreFromBackup copies backupPath over targetPath.
func (s *Store[T]) RestoreFromBackup(backupPath, targetPath string) error {
	data, err := afero.ReadFile(s.fs, backupPath)
	if err != nil {
		return errors.NewBackupError("restore", targetPath, backupPath, err)
	}
	if err := s.replace(targetPath, data); err != nil {
		return errors.NewBackupError("restore", targetPath, backupPath, err)
	}
	logging.Warn().Str("path", targetPath).Str("backup", backupPath).Msg("Restored from backup")
	return nil
}

// Backups lists the backups of path, newest first.
func (s *Store[T]) Backups(path string) ([]string, error) {
	dir := s.BackupDir(path)
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapIO("read", dir, err)
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) || !strings.HasSuffix(e.Name(), constants.BackupExtension) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}
