package document

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// OutputFormat selects how rows are written.
type OutputFormat string

const (
	FormatTable    OutputFormat = "table"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
)

// Formats lists the supported output formats.
var Formats = []OutputFormat{FormatTable, FormatJSON, FormatCSV, FormatMarkdown}

// ParseFormat validates a format name.
func ParseFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if f == "md" {
		return FormatMarkdown, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

var columns = []string{"RowNo", "IDNo", "Text", "Remark"}

func cells(r Row) []string {
	return []string{strconv.Itoa(r.Number), r.IDNo, r.Text, r.Remark}
}

// Write writes rows to w in the given format.
func Write(w io.Writer, rows []Row, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatMarkdown:
		return writeMarkdown(w, rows)
	case FormatTable:
		_, err := io.WriteString(w, FormatRowsTable(rows))
		return err
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// FormatRowsTable renders rows as an ASCII table. Column widths are measured
// with displayWidth.
func FormatRowsTable(rows []Row) string {
	if len(rows) == 0 {
		return "No rows\n"
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = displayWidth(c)
	}
	for _, r := range rows {
		for i, v := range cells(r) {
			if n := displayWidth(v); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var sep strings.Builder
	sep.WriteString("+")
	for _, w := range widths {
		sep.WriteString(strings.Repeat("-", w+2))
		sep.WriteString("+")
	}
	sep.WriteString("\n")

	var sb strings.Builder
	writeLine := func(values []string) {
		sb.WriteString("|")
		for i, v := range values {
			sb.WriteString(" ")
			sb.WriteString(v)
			sb.WriteString(strings.Repeat(" ", widths[i]-displayWidth(v)))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(sep.String())
	writeLine(columns)
	sb.WriteString(sep.String())
	for _, r := range rows {
		writeLine(cells(r))
	}
	sb.WriteString(sep.String())
	sb.WriteString(fmt.Sprintf("%d rows\n", len(rows)))
	return sb.String()
}

// displayWidth counts the terminal cells text occupies, assuming one cell per
// base character. Devanagari vowel signs and the virama combine with the
// preceding letter, and joiners take no cell at all.
func displayWidth(text string) int {
	n := 0
	for _, r := range text {
		if unicode.In(r, unicode.Mn, unicode.Mc, unicode.Me, unicode.Cf) {
			continue
		}
		n++
	}
	return n
}

func writeJSON(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encoding rows: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write(cells(r)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

func writeMarkdown(w io.Writer, rows []Row) error {
	var sb strings.Builder
	sb.WriteString("| RowNo | IDNo | Text | Remark |\n")
	sb.WriteString("|-------|------|------|--------|\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n",
			r.Number,
			markdownEscaper.Replace(r.IDNo),
			markdownEscaper.Replace(r.Text),
			markdownEscaper.Replace(r.Remark)))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteSummary writes the plain-text statistics report.
func WriteSummary(w io.Writer, s Summary) error {
	_, err := fmt.Fprintf(w, `Rows:
  Total rows:        %d
  Rows with IDNo:    %d
  Empty IDNo:        %d
Content:
  Provisos:          %d
  Explanations:      %d
  Nepali rows:       %d
  English rows:      %d
  Total characters:  %d
  Average length:    %d characters
Completion:
  IDNo completion:   %d%%
`,
		s.TotalRows, s.WithIDNo, s.EmptyIDNo,
		s.Provisos, s.Explanations, s.NepaliRows, s.EnglishRows,
		s.TotalCharacters, s.AverageTextLength,
		s.IDNoCompletion)
	return err
}
