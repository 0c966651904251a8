package document

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
)

func sampleRows() []Row {
	return NewProcessor(nil).Process("4.\n(1) foo, \"quoted\"\nतर अदालत | बाज")
}

func TestParseFormat(t *testing.T) {
	tests := map[string]OutputFormat{
		"table":    FormatTable,
		" JSON ":   FormatJSON,
		"csv":      FormatCSV,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
	}
	for input, want := range tests {
		got, err := ParseFormat(input)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", input, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) error = nil")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleRows(), FormatCSV); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV back: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d records, want header + 3", len(records))
	}
	if strings.Join(records[0], ",") != "RowNo,IDNo,Text,Remark" {
		t.Errorf("header = %v", records[0])
	}
	if records[2][1] != "4.1" || records[2][2] != `(1) foo, "quoted"` {
		t.Errorf("record = %v", records[2])
	}
	if records[3][3] != "Proviso - suggest .P suffix" {
		t.Errorf("remark = %q", records[3][3])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleRows(), FormatJSON); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	var rows []Row
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("decoding JSON: %v", err)
	}
	if len(rows) != 3 || rows[1].IDNo != "4.1" {
		t.Errorf("rows = %+v", rows)
	}

	buf.Reset()
	if err := Write(&buf, nil, FormatJSON); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty JSON = %q", buf.String())
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleRows(), FormatMarkdown); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "| RowNo | IDNo | Text | Remark |\n") {
		t.Errorf("markdown header missing: %q", out)
	}
	if !strings.Contains(out, `| 3 |  | तर अदालत \| बाज |`) {
		t.Errorf("pipe not escaped: %q", out)
	}
}

func TestFormatRowsTable(t *testing.T) {
	out := FormatRowsTable(sampleRows())
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	// Every border and row line has the same display width.
	width := displayWidth(lines[0])
	for _, line := range lines[:len(lines)-1] {
		if n := displayWidth(line); n != width {
			t.Errorf("line %q has width %d, want %d", line, n, width)
		}
	}
	if lines[len(lines)-1] != "3 rows" {
		t.Errorf("footer = %q", lines[len(lines)-1])
	}

	if FormatRowsTable(nil) != "No rows\n" {
		t.Error("empty table output wrong")
	}
}

func TestDisplayWidth(t *testing.T) {
	tests := map[string]int{
		"":            0,
		"4.1.a":       5,
		"नेपाली":      3,
		"क्ष":         2,
		"र्\u200d":   1,
		"Cafe\u0301": 4,
	}
	for text, want := range tests {
		if got := displayWidth(text); got != want {
			t.Errorf("displayWidth(%q) = %d, want %d", text, got, want)
		}
	}
}

func TestFormatRowsTableDevanagari(t *testing.T) {
	rows := NewProcessor(nil).Process("४.\nतर अदालतले उपयुक्त ठानेमा")
	out := FormatRowsTable(rows)
	lines := strings.Split(out, "\n")

	// The Text column is as wide as the proviso line appears on screen.
	text := "तर अदालतले उपयुक्त ठानेमा"
	if got, want := displayWidth(lines[4]), displayWidth(lines[0]); got != want {
		t.Errorf("row width %d, border width %d", got, want)
	}
	if !strings.Contains(lines[0], "+"+strings.Repeat("-", displayWidth(text)+2)+"+") {
		t.Errorf("border %q does not fit text width %d", lines[0], displayWidth(text))
	}
}

func TestWriteUnsupported(t *testing.T) {
	if err := Write(&bytes.Buffer{}, nil, OutputFormat("xml")); err == nil {
		t.Error("Write() error = nil for unsupported format")
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummary(&buf, Summarize(sampleRows())); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "IDNo completion:   67%") {
		t.Errorf("summary = %q", buf.String())
	}
}
