package pattern

import (
	"strings"
	"testing"

	"github.com/coolbeans/kanun/pkg/lang"
)

func TestCompile(t *testing.T) {
	p := testPattern(lang.English, "1.0.0")
	if p.IsCompiled() {
		t.Fatal("IsCompiled() = true before Compile()")
	}
	if p.Compiled() != nil {
		t.Fatal("Compiled() should be nil before Compile()")
	}

	if err := p.Compile(); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !p.IsCompiled() {
		t.Fatal("IsCompiled() = false after Compile()")
	}

	c := p.Compiled()
	if c.Classification.SectionKeyword != nil {
		t.Error("empty optional pattern should stay nil")
	}
	if got := c.Extraction.SubClause.FindStringSubmatch("(b12) text"); len(got) != 3 || got[1] != "b" || got[2] != "12" {
		t.Errorf("sub_clause match = %v", got)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *LanguagePattern)
		wantErr string
	}{
		{
			name:    "missing required pattern",
			mutate:  func(p *LanguagePattern) { p.Classification.Section = "" },
			wantErr: "classification.section: pattern is required",
		},
		{
			name:    "invalid regex",
			mutate:  func(p *LanguagePattern) { p.Classification.Clause = "[" },
			wantErr: "compiling classification.clause",
		},
		{
			name:    "too few capture groups",
			mutate:  func(p *LanguagePattern) { p.Extraction.LeadingNumber = `^\d+` },
			wantErr: "needs 1 capture groups",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPattern(lang.English, "1.0.0")
			tt.mutate(p)

			err := p.Compile()
			if err == nil {
				t.Fatal("Compile() should return error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Compile() error = %q, want it to contain %q", err, tt.wantErr)
			}
			if p.IsCompiled() {
				t.Error("failed Compile() should leave pattern uncompiled")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	p := testPattern(lang.Nepali, "1.0.0")
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	p.Version = ""
	err := p.Validate()
	if err == nil {
		t.Fatal("Validate() should return error")
	}
	if _, ok := err.(ValidationErrors); !ok {
		t.Errorf("Validate() error type = %T, want ValidationErrors", err)
	}
}
