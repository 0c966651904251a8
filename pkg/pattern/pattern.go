// Package pattern provides per-language tables of legal-structure patterns
// (provisos, explanations, sections, subsections, clauses and sub-clauses)
// and classifies lines of statute text against them.
package pattern

import (
	"fmt"
	"regexp"

	"github.com/coolbeans/kanun/pkg/lang"
)

// LanguagePattern is the pattern table for one language. Tables are plain
// data loaded from YAML; the two built-in tables share this shape and differ
// only in their literal patterns.
type LanguagePattern struct {
	// Metadata
	Name        string        `yaml:"name" json:"name"`
	Version     string        `yaml:"version" json:"version"`
	Language    lang.Language `yaml:"language" json:"language"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`

	// Classification matchers, tested against the trimmed line
	Classification ClassificationConfig `yaml:"classification" json:"classification"`

	// Extraction matchers used to build identifiers
	Extraction ExtractionConfig `yaml:"extraction" json:"extraction"`

	// Compiled patterns (populated after loading)
	compiled *CompiledPattern
}

// ClassificationConfig holds the matchers that decide what kind of line a
// text is. SectionKeyword and RomanNumeral are optional.
type ClassificationConfig struct {
	Proviso        string `yaml:"proviso" json:"proviso"`
	Explanation    string `yaml:"explanation" json:"explanation"`
	Section        string `yaml:"section" json:"section"`
	SectionKeyword string `yaml:"section_keyword,omitempty" json:"section_keyword,omitempty"`
	Subsection     string `yaml:"subsection" json:"subsection"`
	Clause         string `yaml:"clause" json:"clause"`
	SubClause      string `yaml:"sub_clause" json:"sub_clause"`
	RomanNumeral   string `yaml:"roman_numeral,omitempty" json:"roman_numeral,omitempty"`
	NumberedItem   string `yaml:"numbered_item" json:"numbered_item"`
	LetteredItem   string `yaml:"lettered_item" json:"lettered_item"`
}

// ExtractionConfig holds the matchers whose capture groups carry numbering
// tokens. SubClause captures the letter and the digits; every other pattern
// captures a single token.
type ExtractionConfig struct {
	SectionHeading string `yaml:"section_heading" json:"section_heading"`
	LeadingNumber  string `yaml:"leading_number" json:"leading_number"`
	SectionNumber  string `yaml:"section_number" json:"section_number"`
	SubClause      string `yaml:"sub_clause" json:"sub_clause"`
	Clause         string `yaml:"clause" json:"clause"`
	Subsection     string `yaml:"subsection" json:"subsection"`
}

// ClassificationMatchers are the compiled classification patterns. Optional
// matchers are nil when the table does not define them.
type ClassificationMatchers struct {
	Proviso        *regexp.Regexp
	Explanation    *regexp.Regexp
	Section        *regexp.Regexp
	SectionKeyword *regexp.Regexp
	Subsection     *regexp.Regexp
	Clause         *regexp.Regexp
	SubClause      *regexp.Regexp
	RomanNumeral   *regexp.Regexp
	NumberedItem   *regexp.Regexp
	LetteredItem   *regexp.Regexp
}

// ExtractionMatchers are the compiled extraction patterns.
type ExtractionMatchers struct {
	SectionHeading *regexp.Regexp
	LeadingNumber  *regexp.Regexp
	SectionNumber  *regexp.Regexp
	SubClause      *regexp.Regexp
	Clause         *regexp.Regexp
	Subsection     *regexp.Regexp
}

// CompiledPattern holds all compiled regex patterns for efficient matching.
type CompiledPattern struct {
	Classification ClassificationMatchers
	Extraction     ExtractionMatchers
}

// namedPattern ties a pattern source to the compiled slot it fills.
type namedPattern struct {
	field    string
	source   string
	target   **regexp.Regexp
	optional bool
	groups   int
}

func (lp *LanguagePattern) fields(c *CompiledPattern) []namedPattern {
	cl, ex := &lp.Classification, &lp.Extraction
	cm, em := &c.Classification, &c.Extraction
	return []namedPattern{
		{field: "classification.proviso", source: cl.Proviso, target: &cm.Proviso},
		{field: "classification.explanation", source: cl.Explanation, target: &cm.Explanation},
		{field: "classification.section", source: cl.Section, target: &cm.Section},
		{field: "classification.section_keyword", source: cl.SectionKeyword, target: &cm.SectionKeyword, optional: true},
		{field: "classification.subsection", source: cl.Subsection, target: &cm.Subsection},
		{field: "classification.clause", source: cl.Clause, target: &cm.Clause},
		{field: "classification.sub_clause", source: cl.SubClause, target: &cm.SubClause},
		{field: "classification.roman_numeral", source: cl.RomanNumeral, target: &cm.RomanNumeral, optional: true},
		{field: "classification.numbered_item", source: cl.NumberedItem, target: &cm.NumberedItem},
		{field: "classification.lettered_item", source: cl.LetteredItem, target: &cm.LetteredItem},
		{field: "extraction.section_heading", source: ex.SectionHeading, target: &em.SectionHeading, groups: 1},
		{field: "extraction.leading_number", source: ex.LeadingNumber, target: &em.LeadingNumber, groups: 1},
		{field: "extraction.section_number", source: ex.SectionNumber, target: &em.SectionNumber, groups: 1},
		{field: "extraction.sub_clause", source: ex.SubClause, target: &em.SubClause, groups: 2},
		{field: "extraction.clause", source: ex.Clause, target: &em.Clause, groups: 1},
		{field: "extraction.subsection", source: ex.Subsection, target: &em.Subsection, groups: 1},
	}
}

// Compile compiles all regex patterns in the table.
// Returns an error if any pattern fails to compile.
func (lp *LanguagePattern) Compile() error {
	compiled := &CompiledPattern{}

	for _, np := range lp.fields(compiled) {
		if np.source == "" {
			if np.optional {
				continue
			}
			return fmt.Errorf("%s: pattern is required", np.field)
		}
		re, err := regexp.Compile(np.source)
		if err != nil {
			return fmt.Errorf("compiling %s pattern %q: %w", np.field, np.source, err)
		}
		if re.NumSubexp() < np.groups {
			return fmt.Errorf("%s pattern %q needs %d capture groups, has %d", np.field, np.source, np.groups, re.NumSubexp())
		}
		*np.target = re
	}

	lp.compiled = compiled
	return nil
}

// IsCompiled returns true if the pattern has been compiled.
func (lp *LanguagePattern) IsCompiled() bool {
	return lp.compiled != nil
}

// Compiled returns the compiled matchers, or nil before Compile succeeds.
func (lp *LanguagePattern) Compiled() *CompiledPattern {
	return lp.compiled
}

// Validate checks that the table has all required fields.
func (lp *LanguagePattern) Validate() error {
	if errs := ValidateSchema(lp); len(errs) > 0 {
		return errs
	}
	return nil
}
