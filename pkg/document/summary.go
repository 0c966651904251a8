package document

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/coolbeans/kanun/pkg/idno"
	"github.com/coolbeans/kanun/pkg/lang"
)

// Summary holds row counts and completion figures for a processed document.
type Summary struct {
	TotalRows         int `json:"totalRows"`
	WithIDNo          int `json:"withIdNo"`
	EmptyIDNo         int `json:"emptyIdNo"`
	Provisos          int `json:"provisos"`
	Explanations      int `json:"explanations"`
	NepaliRows        int `json:"nepaliRows"`
	EnglishRows       int `json:"englishRows"`
	TotalCharacters   int `json:"totalCharacters"`
	AverageTextLength int `json:"averageTextLength"`
	IDNoCompletion    int `json:"idNoCompletion"`
}

// Summarize counts rows. Text length is measured in characters, and the
// average length and completion percentage are rounded to whole numbers.
func Summarize(rows []Row) Summary {
	s := Summary{TotalRows: len(rows)}
	for _, row := range rows {
		if strings.TrimSpace(row.IDNo) != "" {
			s.WithIDNo++
		}
		if row.Classification.IsProviso {
			s.Provisos++
		}
		if row.Classification.IsExplanation {
			s.Explanations++
		}
		switch row.Language {
		case lang.Nepali:
			s.NepaliRows++
		case lang.English:
			s.EnglishRows++
		}
		s.TotalCharacters += utf8.RuneCountInString(row.Text)
	}
	s.EmptyIDNo = s.TotalRows - s.WithIDNo
	if s.TotalRows > 0 {
		s.AverageTextLength = int(math.Round(float64(s.TotalCharacters) / float64(s.TotalRows)))
		s.IDNoCompletion = int(math.Round(float64(s.WithIDNo) / float64(s.TotalRows) * 100))
	}
	return s
}

// BySection returns the rows whose identifier belongs to section.
func BySection(rows []Row, section string) []Row {
	section = idno.ToLatinDigits(strings.TrimSpace(section))
	return filter(rows, func(r Row) bool {
		s, ok := idno.Section(r.IDNo)
		return ok && s == section
	})
}

// EmptyIDNo returns the rows without an identifier.
func EmptyIDNo(rows []Row) []Row {
	return filter(rows, func(r Row) bool {
		return strings.TrimSpace(r.IDNo) == ""
	})
}

// Provisos returns the rows that open a proviso.
func Provisos(rows []Row) []Row {
	return filter(rows, func(r Row) bool {
		return r.Classification.IsProviso
	})
}

// Explanations returns the rows that open an explanation.
func Explanations(rows []Row) []Row {
	return filter(rows, func(r Row) bool {
		return r.Classification.IsExplanation
	})
}

// SortByIDNo returns a copy of rows ordered by identifier, renumbered from 1.
// Rows with equal identifiers keep their document order; rows without one
// come first, or last when descending.
func SortByIDNo(rows []Row, ascending bool) []Row {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		c := idno.Compare(sorted[i].IDNo, sorted[j].IDNo)
		if ascending {
			return c < 0
		}
		return c > 0
	})
	for i := range sorted {
		sorted[i].Number = i + 1
	}
	return sorted
}

func filter(rows []Row, keep func(Row) bool) []Row {
	var out []Row
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
