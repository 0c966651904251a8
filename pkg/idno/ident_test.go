package idno

import (
	"sort"
	"testing"

	"github.com/coolbeans/kanun/pkg/lang"
)

func TestToLatinDigits(t *testing.T) {
	tests := map[string]string{
		"४":      "4",
		"१२३":    "123",
		"०९":     "09",
		"42":     "42",
		"क१":     "क1",
		"(२)":    "(2)",
		"":       "",
	}
	for input, want := range tests {
		if got := ToLatinDigits(input); got != want {
			t.Errorf("ToLatinDigits(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestClauseCode(t *testing.T) {
	tests := []struct {
		letter   string
		language lang.Language
		want     string
	}{
		{"क", lang.Nepali, "a"},
		{"ख", lang.Nepali, "b"},
		{"ङ", lang.Nepali, "e"},
		{"ञ", lang.Nepali, "j"},
		{"ट", lang.Nepali, "ट"},
		{"a", lang.English, "a"},
		{"Q", lang.English, "q"},
	}
	for _, tt := range tests {
		if got := ClauseCode(tt.letter, tt.language); got != tt.want {
			t.Errorf("ClauseCode(%q, %v) = %q, want %q", tt.letter, tt.language, got, tt.want)
		}
	}
}

func TestSection(t *testing.T) {
	if s, ok := Section("4.1.a.P"); !ok || s != "4" {
		t.Errorf("Section() = %q, %v", s, ok)
	}
	if s, ok := Section("a.1"); ok {
		t.Errorf("Section() = %q, want none", s)
	}
}

func TestWithSuffix(t *testing.T) {
	tests := []struct {
		id, suffix, want string
	}{
		{"4.1", ".P", "4.1.P"},
		{"4.1.E", ".P", "4.1.P"},
		{"4.1.P2", ".E", "4.1.E"},
		{"", ".E", ".E"},
		{"4.1.a", "", "4.1.a"},
		{"5.c1.P", "", "5.c1"},
	}
	for _, tt := range tests {
		if got := WithSuffix(tt.id, tt.suffix); got != tt.want {
			t.Errorf("WithSuffix(%q, %q) = %q, want %q", tt.id, tt.suffix, got, tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	ids := []string{"4.10", "4.a", "", "4.2", "10.0", "4.2.P", "4.9", "5.0"}
	sort.Slice(ids, func(i, j int) bool { return Compare(ids[i], ids[j]) < 0 })

	want := []string{"", "4.2", "4.2.P", "4.9", "4.10", "4.a", "5.0", "10.0"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("sorted = %v, want %v", ids, want)
		}
	}

	if Compare("4.1", "4.1") != 0 {
		t.Error("Compare() of equal identifiers should be 0")
	}
}
