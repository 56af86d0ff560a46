package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5sensprod/possync/pkg/differ"
	"github.com/5sensprod/possync/pkg/matcher"
	"github.com/5sensprod/possync/pkg/records"
	"github.com/5sensprod/possync/pkg/report"
	possync "github.com/5sensprod/possync/pkg/sync"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"md", FormatMarkdown, false},
		{"", "", false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func sampleResult() *possync.Result {
	return &possync.Result{
		RunID:     "run-1",
		Operation: report.OperationSync,
		State:     possync.StateDryRunReported,
		DryRun:    true,
		Stats:     report.Stats{"matched": 3, "corrections_found": 1},
	}
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, ResultToTableData(sampleResult())))

	out := buf.String()
	assert.Contains(t, out, "sync (dry-run): dry_run_reported")
	assert.Contains(t, out, "corrections_found")
	assert.Contains(t, out, "matched")
}

func TestJSONFormatterEmitsSource(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, ResultToTableData(sampleResult())))
	assert.Contains(t, buf.String(), `"run_id": "run-1"`)
	assert.Contains(t, buf.String(), `"dry_run": true`)
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, ResultToTableData(sampleResult())))
	assert.Contains(t, buf.String(), "run_id: run-1")
	assert.Contains(t, buf.String(), "matched: 3")
}

func TestMarkdownFormatter(t *testing.T) {
	t.Run("report renders itself", func(t *testing.T) {
		r := report.New(report.OperationRepair, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)).Set("products", 4)
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(FormatMarkdown).Format(&buf, ReportToTableData(r)))
		assert.Contains(t, buf.String(), "# repair report")
	})

	t.Run("plain table", func(t *testing.T) {
		var buf bytes.Buffer
		data := Data{Title: "Runs", Headers: []string{"A", "B"}, Rows: [][]string{{"1", "2"}}}
		require.NoError(t, NewFormatter(FormatMarkdown).Format(&buf, data))
		assert.Contains(t, buf.String(), "## Runs")
		assert.Contains(t, buf.String(), "| A")
	})
}

func TestConvertToTableData(t *testing.T) {
	type row struct {
		RunID  string `json:"run_id"`
		Count  int    `json:"count,omitempty"`
		hidden string
	}
	d := convertToTableData([]*row{{RunID: "x", Count: 2, hidden: "h"}})
	require.NotNil(t, d)
	assert.Equal(t, []string{"Run Id", "Count"}, d.Headers)
	assert.Equal(t, [][]string{{"x", "2"}}, d.Rows)

	single := convertToTableData(row{RunID: "y"})
	require.NotNil(t, single)
	assert.Equal(t, []string{"Property", "Value"}, single.Headers)

	assert.Nil(t, convertToTableData(42))
}

func TestChangesetToTableData(t *testing.T) {
	local := &records.Product{ID: "p1", Name: "Corde"}
	cs := differ.NewChangeset(
		[]differ.Update{{ID: "p1", Local: local, By: matcher.ByID, Changes: []differ.Diff{{Field: "stock", LocalValue: 5, RemoteValue: 8}}}},
		[]*records.Product{{ID: "n", Name: "Nouveau"}},
		nil,
	)

	d := ChangesetToTableData(cs)
	require.Len(t, d.Rows, 2)
	assert.Equal(t, []string{"update", "p1", "Corde", "stock", "5", "8"}, d.Rows[0])
	assert.Equal(t, []string{"add", "n", "Nouveau", "", "", ""}, d.Rows[1])
}

func TestRunsToTableData(t *testing.T) {
	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	d := RunsToTableData([]*possync.Run{
		{ID: "run-1", Operation: "sync", Mode: report.ModeExecute, State: possync.StateReported, StartedAt: start, FinishedAt: start.Add(2 * time.Second)},
		{ID: "run-2", Operation: "push", Mode: report.ModeExecute, State: possync.StateFailed, StartedAt: start, Error: "boom"},
	})
	require.Len(t, d.Rows, 2)
	assert.Equal(t, "2s", d.Rows[0][5])
	assert.Equal(t, "", d.Rows[1][5])
	assert.Equal(t, "boom", d.Rows[1][6])
}
