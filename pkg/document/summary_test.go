package document

import (
	"testing"

	"github.com/coolbeans/kanun/pkg/lang"
)

func processSample(t *testing.T, language lang.Language) []Row {
	t.Helper()
	text, err := Sample(language)
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	return NewProcessor(nil).Process(text)
}

func TestSummarize(t *testing.T) {
	rows := processSample(t, lang.English)
	s := Summarize(rows)

	if s.TotalRows != 15 {
		t.Errorf("TotalRows = %d, want 15", s.TotalRows)
	}
	if s.WithIDNo != 9 || s.EmptyIDNo != 6 {
		t.Errorf("WithIDNo/EmptyIDNo = %d/%d, want 9/6", s.WithIDNo, s.EmptyIDNo)
	}
	if s.Provisos != 3 || s.Explanations != 1 {
		t.Errorf("Provisos/Explanations = %d/%d, want 3/1", s.Provisos, s.Explanations)
	}
	if s.EnglishRows != 15 || s.NepaliRows != 0 {
		t.Errorf("EnglishRows/NepaliRows = %d/%d", s.EnglishRows, s.NepaliRows)
	}
	if s.IDNoCompletion != 60 {
		t.Errorf("IDNoCompletion = %d, want 60", s.IDNoCompletion)
	}
	if s.TotalCharacters == 0 || s.AverageTextLength == 0 {
		t.Errorf("character counts not filled: %+v", s)
	}
}

func TestSummarizeCountsCharacters(t *testing.T) {
	rows := []Row{{Text: "४."}, {Text: "abcd", IDNo: "1"}}
	s := Summarize(rows)
	if s.TotalCharacters != 6 {
		t.Errorf("TotalCharacters = %d, want 6", s.TotalCharacters)
	}
	if s.AverageTextLength != 3 {
		t.Errorf("AverageTextLength = %d, want 3", s.AverageTextLength)
	}
	if s.IDNoCompletion != 50 {
		t.Errorf("IDNoCompletion = %d, want 50", s.IDNoCompletion)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if s := Summarize(nil); s != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v, want zero", s)
	}
}

func TestFilters(t *testing.T) {
	rows := processSample(t, lang.Nepali)

	section5 := BySection(rows, "५")
	if len(section5) != 11 {
		t.Errorf("BySection(५) returned %d rows, want 11", len(section5))
	}
	if got := BySection(rows, "5"); len(got) != len(section5) {
		t.Errorf("BySection(5) returned %d rows, want %d", len(got), len(section5))
	}
	if got := BySection(rows, "9"); len(got) != 0 {
		t.Errorf("BySection(9) returned %d rows", len(got))
	}

	if got := EmptyIDNo(rows); len(got) != 5 {
		t.Errorf("EmptyIDNo() returned %d rows, want 5", len(got))
	}
	provisos := Provisos(rows)
	if len(provisos) != 2 {
		t.Fatalf("Provisos() returned %d rows, want 2", len(provisos))
	}
	if provisos[0].Number != 5 || provisos[1].Number != 19 {
		t.Errorf("proviso rows = %d, %d; want 5, 19", provisos[0].Number, provisos[1].Number)
	}
	if got := Explanations(rows); len(got) != 1 || got[0].Number != 6 {
		t.Errorf("Explanations() = %+v", got)
	}
}

func TestSortByIDNo(t *testing.T) {
	rows := NewProcessor(nil).Process("5.\n(2) b\nheading\n4.\n(10) x\n(9) y\n(a) z")

	asc := SortByIDNo(rows, true)
	assertStrings(t, idNos(asc), []string{"", "4.0", "4.9", "4.10", "4.a", "5.0", "5.2"})
	for i, r := range asc {
		if r.Number != i+1 {
			t.Errorf("sorted row %d Number = %d", i, r.Number)
		}
	}
	if asc[0].Text != "heading" {
		t.Errorf("first ascending row = %q, want the row without IDNo", asc[0].Text)
	}

	desc := SortByIDNo(rows, false)
	assertStrings(t, idNos(desc), []string{"5.2", "5.0", "4.a", "4.10", "4.9", "4.0", ""})

	if rows[0].IDNo != "5.0" || rows[0].Number != 1 {
		t.Errorf("input rows changed: %+v", rows[0])
	}
}
