package sync_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5sensprod/possync/pkg/differ"
	"github.com/5sensprod/possync/pkg/errors"
	"github.com/5sensprod/possync/pkg/logging"
	"github.com/5sensprod/possync/pkg/records"
	"github.com/5sensprod/possync/pkg/report"
	"github.com/5sensprod/possync/pkg/resolver"
	"github.com/5sensprod/possync/pkg/sync"
)

const (
	localPath  = "/data/products.db"
	sourcePath = "/data/source.db"
	catsPath   = "/data/categories.db"
	reportDir  = "/reports"
)

var now = time.Date(2024, 6, 1, 14, 30, 5, 0, time.UTC)

// faultyFs fails selected operations of an otherwise working filesystem.
type faultyFs struct {
	afero.Fs
	renameFailures int
	failPrefix     string
}

func (f *faultyFs) Rename(oldname, newname string) error {
	if f.renameFailures > 0 {
		f.renameFailures--
		return fmt.Errorf("injected rename failure")
	}
	return f.Fs.Rename(oldname, newname)
}

func (f *faultyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if f.failPrefix != "" && strings.HasPrefix(name, f.failPrefix) {
		return nil, fmt.Errorf("injected write failure")
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func writeLines(t *testing.T, fs afero.Fs, path string, lines ...string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func readProducts(t *testing.T, fs afero.Fs, path string) []*records.Product {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	var out []*records.Product
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var p records.Product
		require.NoError(t, json.Unmarshal([]byte(line), &p))
		out = append(out, &p)
	}
	return out
}

func newEngine(t *testing.T, fs afero.Fs, opts ...sync.Option) *sync.Engine {
	t.Helper()
	logging.DisableLoggingForTest(t)
	n := 0
	base := []sync.Option{
		sync.WithFs(fs),
		sync.WithClock(func() time.Time { return now }),
		sync.WithRunIDs(func() string { n++; return fmt.Sprintf("run-%d", n) }),
	}
	e, err := sync.New(sync.Config{
		LocalPath:      localPath,
		SourcePath:     sourcePath,
		CategoriesPath: catsPath,
		ReportDir:      reportDir,
	}, append(base, opts...)...)
	require.NoError(t, err)
	return e
}

func seedStockChange(t *testing.T, fs afero.Fs) {
	writeLines(t, fs, localPath,
		`{"_id":"p1","name":"Capo","sku":"C1","stock":5,"woo_id":77}`,
		`{"_id":"p2","name":"Pied","sku":"P1","stock":1}`,
	)
	writeLines(t, fs, sourcePath,
		`{"_id":"p1","name":"Capo","sku":"C1","stock":8}`,
		`{"_id":"p2","name":"Pied","sku":"P1","stock":1}`,
	)
}

func TestSyncDryRunNeverWrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedStockChange(t, fs)
	before, _ := afero.ReadFile(fs, localPath)

	res, err := newEngine(t, fs).Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, sync.StateDryRunReported, res.State)
	assert.True(t, res.DryRun)
	assert.False(t, res.Written)
	assert.Equal(t, 1, res.Stats[sync.StatCorrectionsFound])
	require.Len(t, res.Changeset.Updated, 1)
	assert.Equal(t, differ.Diff{Field: "stock", LocalValue: 5, RemoteValue: 8}, res.Changeset.Updated[0].Changes[0])

	after, _ := afero.ReadFile(fs, localPath)
	assert.Equal(t, before, after)

	require.NotEmpty(t, res.ReportPath)
	rep, err := report.Read(fs, res.ReportPath)
	require.NoError(t, err)
	assert.Nil(t, rep.BackupFile)
	assert.Equal(t, report.ModeDryRun, rep.Mode)
	assert.Equal(t, 2, rep.Stats[sync.StatMatched])
}

func TestSyncExecuteThenIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedStockChange(t, fs)
	e := newEngine(t, fs, sync.WithDryRun(false))

	res, err := e.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sync.StateReported, res.State)
	assert.True(t, res.Written)
	require.NotEmpty(t, res.BackupPath)

	ok, _ := afero.Exists(fs, res.BackupPath)
	assert.True(t, ok)

	products := readProducts(t, fs, localPath)
	require.Len(t, products, 2)
	assert.Equal(t, 8, products[0].Stock)
	assert.True(t, products[0].PendingSync)
	assert.False(t, products[1].PendingSync)

	rep, err := report.Read(fs, res.ReportPath)
	require.NoError(t, err)
	assert.Equal(t, res.BackupPath, rep.Backup())

	again, err := e.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Stats[sync.StatCorrectionsFound])
	assert.Empty(t, again.Decisions)
	assert.False(t, again.Written)
	assert.Empty(t, again.ReportPath)
	assert.Empty(t, again.BackupPath)
}

func TestSyncAddsAndResolves(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeLines(t, fs, localPath,
		`{"_id":"a","name":"Capo","sku":"ABC123","status":"draft"}`,
		`{"_id":"b","name":"Capo","sku":"ABC123","status":"published"}`,
	)
	writeLines(t, fs, sourcePath, `{"_id":"n","name":"Sangle","sku":"S1"}`)

	res, err := newEngine(t, fs, sync.WithDryRun(false), sync.WithScope(resolver.ScopeSKU)).Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats[sync.StatRecordsAdded])
	assert.Equal(t, 1, res.Stats[sync.StatDuplicatesResolved])
	assert.Equal(t, 1, res.Stats[sync.StatRecordsRemoved])

	ids := []string{}
	for _, p := range readProducts(t, fs, localPath) {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"b", "n"}, ids)
}

func TestSyncStrategyUpdatesOnly(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeLines(t, fs, localPath, `{"_id":"p1","stock":1}`, `{"_id":"p2","sku":"D"}`, `{"_id":"p3","sku":"D"}`)
	writeLines(t, fs, sourcePath, `{"_id":"p1","stock":2}`, `{"_id":"new","sku":"N"}`)

	res, err := newEngine(t, fs, sync.WithDryRun(false), sync.WithStrategy(differ.ApplyUpdatesOnly)).Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats[sync.StatRecordsAdded])
	assert.Equal(t, 1, res.Stats[sync.StatDuplicatesResolved])
	assert.Equal(t, 0, res.Stats[sync.StatRecordsRemoved])
	assert.Len(t, readProducts(t, fs, localPath), 3)
}

func TestSyncReset(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeLines(t, fs, sourcePath, `{"_id":"s1","name":"Capo"}`)

	res, err := newEngine(t, fs, sync.WithDryRun(false), sync.WithReset(true)).Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats[sync.StatRecordsAdded])
	assert.Empty(t, res.BackupPath)
	assert.Len(t, readProducts(t, fs, localPath), 1)
}

func TestSyncResetReplacesExistingStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeLines(t, fs, localPath,
		`{"_id":"p1","name":"Capo","stock":5}`,
		`{"_id":"p2","name":"Pied","stock":1}`,
	)
	writeLines(t, fs, sourcePath,
		`{"_id":"s1","name":"Sangle"}`,
		`{"_id":"s2","name":"Housse"}`,
	)

	res, err := newEngine(t, fs, sync.WithDryRun(false), sync.WithReset(true)).Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats[sync.StatRecordsAdded])
	assert.Equal(t, 2, res.Stats[sync.StatRecordsRemoved])
	assert.NotEmpty(t, res.BackupPath)

	products := readProducts(t, fs, localPath)
	require.Len(t, products, 2)
	assert.Equal(t, "s1", products[0].ID)
	assert.Equal(t, "s2", products[1].ID)
}

func TestSyncResetRequiresStrategyAll(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeLines(t, fs, localPath,
		`{"_id":"p1","name":"Capo"}`,
		`{"_id":"p2","name":"Pied"}`,
	)
	writeLines(t, fs, sourcePath,
		`{"_id":"p1","name":"Capo"}`,
		`{"_id":"p2","name":"Pied"}`,
	)
	before, _ := afero.ReadFile(fs, localPath)

	for _, strategy := range []differ.ApplyStrategy{differ.ApplyUpdatesOnly, differ.ApplyAdditive, differ.ApplyAdditionsOnly} {
		t.Run(string(strategy), func(t *testing.T) {
			_, err := sync.New(sync.Config{LocalPath: localPath, SourcePath: sourcePath},
				sync.WithFs(fs), sync.WithDryRun(false), sync.WithReset(true), sync.WithStrategy(strategy))
			require.Error(t, err)
			var verr *errors.ValidationError
			assert.True(t, errors.As(err, &verr))
		})
	}

	after, _ := afero.ReadFile(fs, localPath)
	assert.Equal(t, before, after)
}

func TestSyncEmptyCollectionIsFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeLines(t, fs, localPath, `{"_id":"p1"}`)

	res, err := newEngine(t, fs).Sync(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsEmptyCollection(err))
	assert.Equal(t, sync.StateFailed, res.State)
	assert.Empty(t, res.ReportPath)

	ok, _ := afero.DirExists(fs, reportDir)
	assert.False(t, ok)
}

func TestSyncWriteFailureLeavesStoreIntact(t *testing.T) {
	fs := &faultyFs{Fs: afero.NewMemMapFs(), renameFailures: 1}
	seedStockChange(t, fs)
	before, _ := afero.ReadFile(fs, localPath)

	res, err := newEngine(t, fs, sync.WithDryRun(false)).Sync(context.Background())
	require.Error(t, err)
	assert.Equal(t, sync.StateFailed, res.State)
	assert.False(t, res.Written)

	after, _ := afero.ReadFile(fs, localPath)
	assert.Equal(t, before, after)
}

func TestSyncReportFailureRestoresStore(t *testing.T) {
	fs := &faultyFs{Fs: afero.NewMemMapFs(), failPrefix: reportDir}
	seedStockChange(t, fs)
	before, _ := afero.ReadFile(fs, localPath)

	res, err := newEngine(t, fs, sync.WithDryRun(false)).Sync(context.Background())
	require.Error(t, err)
	assert.False(t, res.Written)
	assert.NotEmpty(t, res.BackupPath)

	after, _ := afero.ReadFile(fs, localPath)
	assert.Equal(t, before, after)
}

func TestSyncCanceled(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedStockChange(t, fs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEngine(t, fs, sync.WithDryRun(false)).Sync(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCanceled(err))
}

func TestSyncDeterministic(t *testing.T) {
	run := func() *report.Report {
		fs := afero.NewMemMapFs()
		writeLines(t, fs, localPath,
			`{"_id":"a","sku":"X","gencode":"1"}`, `{"_id":"b","sku":"X"}`, `{"_id":"c","gencode":"1","stock":3}`)
		writeLines(t, fs, sourcePath, `{"_id":"a","sku":"X","gencode":"1","price":4}`, `{"_id":"d","sku":"Y"}`)
		res, err := newEngine(t, fs).Sync(context.Background())
		require.NoError(t, err)
		rep, err := report.Read(fs, res.ReportPath)
		require.NoError(t, err)
		return rep
	}
	first := run()
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, run())
	}
}

func TestSyncRecordsRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedStockChange(t, fs)

	var got []*sync.Run
	rec := sync.RecorderFunc(func(_ context.Context, r *sync.Run) error {
		got = append(got, r)
		return nil
	})
	_, err := newEngine(t, fs, sync.WithRecorder(rec)).Sync(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "run-1", got[0].ID)
	assert.Equal(t, report.OperationSync, got[0].Operation)
	assert.Equal(t, sync.StateDryRunReported, got[0].State)
	assert.Equal(t, 1, got[0].Stats[sync.StatCorrectionsFound])
	assert.Empty(t, got[0].Error)
}

func TestCompare(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedStockChange(t, fs)
	cs, err := newEngine(t, fs).Compare(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cs.Summary.Updated)
	assert.Equal(t, 0, cs.Summary.Added)
}

func TestInvalidOptions(t *testing.T) {
	_, err := sync.New(sync.Config{}, sync.WithScope("weird"))
	assert.True(t, errors.IsValidationError(err))
	_, err = sync.New(sync.Config{}, sync.WithStrategy("sometimes"))
	assert.True(t, errors.IsValidationError(err))
}
