package pattern

import (
	"strings"
	"testing"

	"github.com/coolbeans/kanun/pkg/lang"
)

func TestValidateSchema(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(p *LanguagePattern)
		wantFields []string
	}{
		{
			name:   "valid pattern",
			mutate: func(p *LanguagePattern) {},
		},
		{
			name:   "optional patterns may be empty",
			mutate: func(p *LanguagePattern) { p.Classification.SectionKeyword = ""; p.Classification.RomanNumeral = "" },
		},
		{
			name:       "missing name",
			mutate:     func(p *LanguagePattern) { p.Name = "" },
			wantFields: []string{"name"},
		},
		{
			name:       "bad version",
			mutate:     func(p *LanguagePattern) { p.Version = "v1" },
			wantFields: []string{"version"},
		},
		{
			name:       "missing language",
			mutate:     func(p *LanguagePattern) { p.Language = 0 },
			wantFields: []string{"language"},
		},
		{
			name:       "missing required pattern",
			mutate:     func(p *LanguagePattern) { p.Classification.Proviso = "" },
			wantFields: []string{"classification.proviso"},
		},
		{
			name:       "invalid optional pattern",
			mutate:     func(p *LanguagePattern) { p.Classification.RomanNumeral = "(" },
			wantFields: []string{"classification.roman_numeral"},
		},
		{
			name:       "extraction without capture group",
			mutate:     func(p *LanguagePattern) { p.Extraction.Clause = `\([a-z]\)` },
			wantFields: []string{"extraction.clause"},
		},
		{
			name: "every problem is reported",
			mutate: func(p *LanguagePattern) {
				p.Name = ""
				p.Extraction.SectionHeading = "["
				p.Extraction.Subsection = ""
			},
			wantFields: []string{"name", "extraction.section_heading", "extraction.subsection"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPattern(lang.English, "1.0.0")
			tt.mutate(p)

			errs := ValidateSchema(p)
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("ValidateSchema() returned %d errors, want %d: %v", len(errs), len(tt.wantFields), errs)
			}
			for _, field := range tt.wantFields {
				if !errs.HasField(field) {
					t.Errorf("ValidateSchema() missing error for %s: %v", field, errs)
				}
			}
		})
	}
}

func TestValidationErrorsError(t *testing.T) {
	var none ValidationErrors
	if none.Error() != "no errors" {
		t.Errorf("Error() = %q", none.Error())
	}

	one := ValidationErrors{{Field: "name", Message: "required field is missing"}}
	if one.Error() != "name: required field is missing" {
		t.Errorf("Error() = %q", one.Error())
	}

	two := ValidationErrors{
		{Field: "name", Message: "required field is missing"},
		{Field: "version", Message: "must be semantic version (e.g., 1.0.0)", Value: "v1"},
	}
	msg := two.Error()
	if !strings.HasPrefix(msg, "2 validation errors") || !strings.Contains(msg, "(got: v1)") {
		t.Errorf("Error() = %q", msg)
	}
}

func TestIsValidVersion(t *testing.T) {
	tests := map[string]bool{
		"1.0.0":  true,
		"10.2.3": true,
		"1.0":    false,
		"1.0.x":  false,
		"1..0":   false,
		"":       false,
	}
	for version, want := range tests {
		if got := isValidVersion(version); got != want {
			t.Errorf("isValidVersion(%q) = %v, want %v", version, got, want)
		}
	}
}
