// Package output provides formatters for command output.
package output

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	md "github.com/nao1215/markdown"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Format types for output.
type Format string

const (
	// FormatTable represents table output format.
	FormatTable Format = "table"
	// FormatJSON represents JSON output format.
	FormatJSON Format = "json"
	// FormatYAML represents YAML output format.
	FormatYAML Format = "yaml"
	// FormatMarkdown represents markdown output format.
	FormatMarkdown Format = "markdown"
)

// Align is a column alignment.
type Align int

// Column alignments.
const (
	AlignDefault Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Formatter interface for all output types.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// FormatterFunc allows functions to implement Formatter.
type FormatterFunc func(io.Writer, any) error

// Format implements the Formatter interface.
func (f FormatterFunc) Format(w io.Writer, data any) error {
	return f(w, data)
}

// NewFormatter creates appropriate formatter based on format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

// JSONFormatter outputs JSON format.
type JSONFormatter struct {
	Indent string
}

// Format implements the Formatter interface for JSON output.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	if d, ok := data.(Data); ok && d.Source != nil {
		data = d.Source
	}
	encoder := json.NewEncoder(w)
	if f.Indent != "" {
		encoder.SetIndent("", f.Indent)
	}
	return encoder.Encode(data)
}

// YAMLFormatter outputs YAML format.
type YAMLFormatter struct{}

// Format outputs data in YAML format.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	if d, ok := data.(Data); ok && d.Source != nil {
		data = d.Source
	}
	// round-trip through JSON so json tags and custom marshalers apply
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	yamlData, err := yaml.JSONToYAML(raw)
	if err != nil {
		return err
	}
	_, err = w.Write(yamlData)
	return err
}

// Markdowner renders itself as markdown.
type Markdowner interface {
	Markdown(w io.Writer) error
}

// MarkdownFormatter outputs markdown.
type MarkdownFormatter struct{}

// Format outputs data as a markdown document or table.
func (f *MarkdownFormatter) Format(w io.Writer, data any) error {
	if d, ok := data.(Data); ok {
		if m, ok := d.Source.(Markdowner); ok {
			return m.Markdown(w)
		}
		return f.table(w, d)
	}
	if m, ok := data.(Markdowner); ok {
		return m.Markdown(w)
	}
	if d := convertToTableData(data); d != nil {
		return f.table(w, *d)
	}
	return (&JSONFormatter{Indent: "  "}).Format(w, data)
}

func (f *MarkdownFormatter) table(w io.Writer, data Data) error {
	doc := md.NewMarkdown(w)
	if data.Title != "" {
		doc.H2(data.Title)
	}
	doc.Table(md.TableSet{Header: data.Headers, Rows: data.Rows})
	return doc.Build()
}

// TableFormatter outputs table format.
type TableFormatter struct{}

// Format outputs data in table format.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case Data:
		return f.formatTable(w, v)
	default:
		if tableData := convertToTableData(data); tableData != nil {
			return f.formatTable(w, *tableData)
		}

		// Fall back to JSON for non-table data
		jsonFormatter := &JSONFormatter{Indent: "  "}
		return jsonFormatter.Format(w, data)
	}
}

func (f *TableFormatter) formatTable(w io.Writer, data Data) error {
	config := tablewriter.Config{}

	if len(data.ColumnAlignment) > 0 {
		twAlign := make([]tw.Align, len(data.ColumnAlignment))
		for i, align := range data.ColumnAlignment {
			switch align {
			case AlignLeft:
				twAlign[i] = tw.AlignLeft
			case AlignCenter:
				twAlign[i] = tw.AlignCenter
			case AlignRight:
				twAlign[i] = tw.AlignRight
			default:
				twAlign[i] = tw.Skip
			}
		}

		config.Header.Alignment = tw.CellAlignment{PerColumn: twAlign}
		config.Row.Alignment = tw.CellAlignment{PerColumn: twAlign}
	}

	if data.Title != "" {
		if _, err := fmt.Fprintln(w, data.Title); err != nil {
			return err
		}
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(config))
	if len(data.Headers) > 0 {
		headers := make([]any, len(data.Headers))
		for i, h := range data.Headers {
			headers[i] = h
		}
		table.Header(headers...)
	}

	for _, row := range data.Rows {
		rowData := make([]any, len(row))
		for i, cell := range row {
			rowData[i] = cell
		}
		if err := table.Append(rowData...); err != nil {
			return err
		}
	}

	return table.Render()
}

// Data represents data formatted for table output.
type Data struct {
	Title           string
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align

	// Source is emitted instead of the table by the json, yaml and
	// markdown formatters when set.
	Source any
}

// DetectFormat auto-detects format based on terminal and environment.
func DetectFormat(explicitFormat string) Format {
	if explicitFormat != "" {
		return Format(strings.ToLower(explicitFormat))
	}

	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return FormatTable
	}

	// Default to JSON for pipes/redirects
	return FormatJSON
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ParseFormat converts string to Format with validation.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(s))
	switch format {
	case FormatTable, FormatJSON, FormatYAML, FormatMarkdown, "":
		return format, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be one of: table, json, yaml, markdown", s)
	}
}

// convertToTableData attempts to convert struct slices to Data using reflection.
func convertToTableData(data any) *Data {
	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}

	if v.Kind() == reflect.Slice && v.Len() > 0 {
		first := v.Index(0)
		for first.Kind() == reflect.Pointer && !first.IsNil() {
			first = first.Elem()
		}
		if first.Kind() == reflect.Struct {
			return structSliceToTableData(v)
		}
	}

	if v.Kind() == reflect.Struct {
		return singleStructToTableData(v)
	}

	return nil
}

// headerName derives a column header from a struct field.
func headerName(field reflect.StructField) string {
	if jsonTag := field.Tag.Get("json"); jsonTag != "" && jsonTag != "-" {
		if idx := strings.Index(jsonTag, ","); idx > 0 {
			jsonTag = jsonTag[:idx]
		}
		caser := cases.Title(language.English)
		return caser.String(strings.ReplaceAll(jsonTag, "_", " "))
	}
	return field.Name
}

func exported(t reflect.Type) []int {
	var idx []int
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			idx = append(idx, i)
		}
	}
	return idx
}

func cell(v reflect.Value) string {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	return fmt.Sprintf("%v", v.Interface())
}

// structSliceToTableData converts a slice of structs to Data.
func structSliceToTableData(v reflect.Value) *Data {
	first := v.Index(0)
	for first.Kind() == reflect.Pointer {
		first = first.Elem()
	}
	elemType := first.Type()
	fields := exported(elemType)

	headers := make([]string, 0, len(fields))
	for _, i := range fields {
		headers = append(headers, headerName(elemType.Field(i)))
	}

	var rows [][]string
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		for elem.Kind() == reflect.Pointer {
			if elem.IsNil() {
				break
			}
			elem = elem.Elem()
		}
		if elem.Kind() != reflect.Struct {
			continue
		}
		row := make([]string, 0, len(fields))
		for _, j := range fields {
			row = append(row, cell(elem.Field(j)))
		}
		rows = append(rows, row)
	}

	return &Data{Headers: headers, Rows: rows}
}

// singleStructToTableData converts a single struct to a key-value table.
func singleStructToTableData(v reflect.Value) *Data {
	elemType := v.Type()
	var rows [][]string
	for _, i := range exported(elemType) {
		rows = append(rows, []string{headerName(elemType.Field(i)), cell(v.Field(i))})
	}
	return &Data{Headers: []string{"Property", "Value"}, Rows: rows}
}
