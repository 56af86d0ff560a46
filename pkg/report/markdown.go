package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"
	md "github.com/nao1215/markdown"

	"github.com/5sensprod/possync/pkg/constants"
)

// MaxMarkdownDetails bounds the detail entries rendered in markdown.
const MaxMarkdownDetails = 50

// Markdown renders the report as a markdown document.
func (r *Report) Markdown(w io.Writer) error {
	doc := md.NewMarkdown(w)

	title := r.Operation
	if title == "" {
		title = "run"
	}
	doc.H1(fmt.Sprintf("%s report", title))
	doc.PlainTextf("%s %s", md.Bold("Timestamp:"), r.Timestamp.Format(constants.TimeFormatISO8601)).LF()
	if r.Mode != "" {
		doc.PlainTextf("%s %s", md.Bold("Mode:"), r.Mode).LF()
	}
	if r.RunID != "" {
		doc.PlainTextf("%s %s", md.Bold("Run:"), md.Code(r.RunID)).LF()
	}
	backup := "none"
	if b := r.Backup(); b != "" {
		backup = md.Code(b)
	}
	doc.PlainTextf("%s %s", md.Bold("Backup:"), backup).LF()

	doc.H2("Stats")
	rows := make([][]string, 0, len(r.Stats))
	for _, k := range r.Stats.Keys() {
		rows = append(rows, []string{k, strconv.Itoa(r.Stats[k])})
	}
	doc.Table(md.TableSet{
		Header: []string{"Counter", "Value"},
		Rows:   rows,
	})

	if len(r.Warnings) > 0 {
		doc.H2("Warnings")
		doc.BulletList(r.Warnings...)
	}

	if len(r.Details) > 0 {
		doc.H2(fmt.Sprintf("Details (%d)", len(r.Details)))
		items := make([]string, 0, min(len(r.Details), MaxMarkdownDetails))
		for i, d := range r.Details {
			if i == MaxMarkdownDetails {
				break
			}
			raw, err := json.Marshal(d)
			if err != nil {
				raw = []byte(fmt.Sprint(d))
			}
			items = append(items, md.Code(string(raw)))
		}
		doc.BulletList(items...)
		if len(r.Details) > MaxMarkdownDetails {
			doc.PlainTextf("%d more entries in the JSON report.", len(r.Details)-MaxMarkdownDetails)
		}
	}

	return doc.Build()
}
