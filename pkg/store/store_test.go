package store_test

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5sensprod/possync/pkg/errors"
	"github.com/5sensprod/possync/pkg/records"
	"github.com/5sensprod/possync/pkg/store"
)

var fixedNow = time.Date(2024, 6, 1, 14, 30, 5, 123_000_000, time.UTC)

func newStore(fs afero.Fs) *store.Store[records.Product] {
	return store.New[records.Product](
		store.WithFs(fs),
		store.WithBackupDir("/data/backups"),
		store.WithClock(func() time.Time { return fixedNow }),
	)
}

// failingFs fails selected operations of an otherwise working filesystem.
type failingFs struct {
	afero.Fs
	failRename    bool
	failOpen      bool
	failBackupDir string
}

func (f *failingFs) Open(name string) (afero.File, error) {
	if f.failOpen {
		return nil, os.ErrPermission
	}
	return f.Fs.Open(name)
}

func (f *failingFs) Rename(oldname, newname string) error {
	if f.failRename {
		return fmt.Errorf("injected rename failure")
	}
	return f.Fs.Rename(oldname, newname)
}

func (f *failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if f.failBackupDir != "" && strings.HasPrefix(name, f.failBackupDir) {
		return nil, fmt.Errorf("injected backup failure")
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestLoadSkipsMalformedLine(t *testing.T) {
	fs := afero.NewMemMapFs()
	var lines []string
	for i := 1; i <= 10; i++ {
		if i == 4 {
			lines = append(lines, `{"_id":"p4","name":"trunc`)
			continue
		}
		lines = append(lines, fmt.Sprintf(`{"_id":"p%d","name":"Product %d"}`, i, i))
	}
	require.NoError(t, afero.WriteFile(fs, "/data/products.db", []byte(strings.Join(lines, "\n")+"\n\n"), 0o644))

	result, err := newStore(fs).Load("/data/products.db")
	require.NoError(t, err)

	assert.Len(t, result.Records, 9)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 10, result.Lines)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, 4, result.Diagnostics[0].Line)
	assert.Equal(t, "p5", result.Records[3].ID)
}

func TestLoadMissingAndEmptyFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newStore(fs)

	result, err := s.Load("/data/missing.db")
	require.NoError(t, err)
	assert.True(t, result.Empty())
	require.Len(t, result.Diagnostics, 1)
	assert.Contains(t, result.Diagnostics[0].String(), "file not found")

	require.NoError(t, afero.WriteFile(fs, "/data/empty.db", []byte("\n  \n"), 0o644))
	result, err = s.Load("/data/empty.db")
	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.Contains(t, result.Diagnostics[0].Message, "file is empty")
}

func TestLoadUnreadableFile(t *testing.T) {
	fs := &failingFs{Fs: afero.NewMemMapFs(), failOpen: true}

	_, err := newStore(fs).Load("/data/products.db")
	var ioErr *errors.IOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newStore(fs)
	woo := int64(301)
	want := []*records.Product{
		{
			ID:       "p1",
			Name:     "Capodastre",
			SKU:      "CAPO-1",
			Price:    14.9,
			Stock:    3,
			MetaData: []records.MetaData{{Key: "barcode", Value: "3000000000000"}, {Key: "color", Value: "black"}},
			WooID:    &woo,
		},
		{ID: "p2", Name: "Corde", SKU: "STR-9", Categories: []string{"c1"}},
	}

	_, err := s.Save("/data/products.db", want)
	require.NoError(t, err)

	got, err := s.Load("/data/products.db")
	require.NoError(t, err)
	require.Zero(t, got.Skipped)

	if diff := cmp.Diff(want, got.Records, cmpopts.IgnoreUnexported(records.Product{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveCreatesBackupEveryTime(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newStore(fs)
	path := "/data/products.db"

	backup, err := s.Save(path, []*records.Product{{ID: "a"}})
	require.NoError(t, err)
	assert.Empty(t, backup, "nothing to back up on first save")

	first, err := s.Save(path, []*records.Product{{ID: "b"}})
	require.NoError(t, err)
	assert.Equal(t, "/data/backups/products.db.20240601-143005.123.bak", first)

	second, err := s.Save(path, []*records.Product{{ID: "c"}})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	data, err := afero.ReadFile(fs, first)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"a"}`, strings.TrimSpace(string(data)))

	backups, err := s.Backups(path)
	require.NoError(t, err)
	assert.Len(t, backups, 2)
}

func TestSaveFailureLeavesStoreUnchanged(t *testing.T) {
	mem := afero.NewMemMapFs()
	original := "{\"_id\":\"a\",\"stock\":5}\n"
	require.NoError(t, afero.WriteFile(mem, "/data/products.db", []byte(original), 0o644))

	fs := &failingFs{Fs: mem, failRename: true}
	backup, err := newStore(fs).Save("/data/products.db", []*records.Product{{ID: "a", Stock: 8}})
	require.Error(t, err)
	assert.NotEmpty(t, backup)

	var ioErr *errors.IOError
	assert.True(t, errors.As(err, &ioErr))

	data, err := afero.ReadFile(mem, "/data/products.db")
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestFailedBackupBlocksWrite(t *testing.T) {
	mem := afero.NewMemMapFs()
	original := "{\"_id\":\"a\"}\n"
	require.NoError(t, afero.WriteFile(mem, "/data/products.db", []byte(original), 0o644))

	fs := &failingFs{Fs: mem, failBackupDir: "/data/backups"}
	_, err := newStore(fs).Save("/data/products.db", []*records.Product{{ID: "z"}})
	require.Error(t, err)
	assert.True(t, errors.IsBackupFailure(err))

	data, err := afero.ReadFile(mem, "/data/products.db")
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestRestoreFromBackup(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newStore(fs)
	require.NoError(t, afero.WriteFile(fs, "/data/backups/products.db.x.bak", []byte("old\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/data/products.db", []byte("new\n"), 0o644))

	require.NoError(t, s.RestoreFromBackup("/data/backups/products.db.x.bak", "/data/products.db"))
	data, err := afero.ReadFile(fs, "/data/products.db")
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(data))

	err = s.RestoreFromBackup("/data/backups/none.bak", "/data/products.db")
	assert.True(t, errors.IsBackupFailure(err))
}

func TestDefaultBackupDir(t *testing.T) {
	s := store.New[records.Category]()
	assert.Equal(t, "data/backups", s.BackupDir("data/categories.db"))
}
