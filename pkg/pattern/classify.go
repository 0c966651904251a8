package pattern

import (
	"regexp"
	"strings"

	"github.com/coolbeans/kanun/pkg/lang"
)

// ContentType is the single tag the identifier generator cares about.
type ContentType string

const (
	ContentNormal      ContentType = "normal"
	ContentProviso     ContentType = "proviso"
	ContentExplanation ContentType = "explanation"
)

// Suffix returns the identifier suffix for the content type, or "" for
// normal content.
func (ct ContentType) Suffix() string {
	switch ct {
	case ContentProviso:
		return ".P"
	case ContentExplanation:
		return ".E"
	default:
		return ""
	}
}

// Classification is the set of patterns that matched one line. Flags are
// independent: a proviso may also start with a lettered item.
type Classification struct {
	Language         lang.Language `json:"language"`
	IsProviso        bool          `json:"isProviso"`
	IsExplanation    bool          `json:"isExplanation"`
	IsSection        bool          `json:"isSection"`
	HasNumberedItems bool          `json:"hasNumberedItems"`
	HasLetteredItems bool          `json:"hasLetteredItems"`
	IsClause         bool          `json:"isClause"`
	IsSubClause      bool          `json:"isSubClause"`
	HasSubsection    bool          `json:"hasSubsection"`
	HasRomanItem     bool          `json:"hasRomanItem"`
}

// ContentType collapses the flags for identifier generation. Proviso wins
// over explanation.
func (c Classification) ContentType() ContentType {
	switch {
	case c.IsProviso:
		return ContentProviso
	case c.IsExplanation:
		return ContentExplanation
	default:
		return ContentNormal
	}
}

// Classifier matches lines against the table registered for their language.
type Classifier struct {
	source Source
}

// NewClassifier creates a classifier backed by source. A nil source uses the
// built-in tables.
func NewClassifier(source Source) *Classifier {
	if source == nil {
		source = Builtin()
	}
	return &Classifier{source: source}
}

// Classify reports which patterns apply to text. Matching is always done on
// the trimmed line. A language without a table yields no matches.
func (c *Classifier) Classify(text string, language lang.Language) Classification {
	result := Classification{Language: language}

	table, ok := c.source.Get(language)
	if !ok || !table.IsCompiled() {
		return result
	}
	m := table.Compiled().Classification
	trimmed := strings.TrimSpace(text)

	result.IsProviso = m.Proviso.MatchString(trimmed)
	result.IsExplanation = m.Explanation.MatchString(trimmed)
	result.IsSection = m.Section.MatchString(trimmed) || matches(m.SectionKeyword, trimmed)
	result.HasNumberedItems = m.NumberedItem.MatchString(trimmed)
	result.HasLetteredItems = m.LetteredItem.MatchString(trimmed)
	result.IsSubClause = m.SubClause.MatchString(trimmed)
	result.IsClause = m.Clause.MatchString(trimmed)
	result.HasSubsection = m.Subsection.MatchString(trimmed)
	result.HasRomanItem = matches(m.RomanNumeral, trimmed)

	return result
}

// ClassifyDetected detects the language of text and classifies it.
func (c *Classifier) ClassifyDetected(text string) Classification {
	return c.Classify(text, lang.Detect(strings.TrimSpace(text)))
}

// ExtractSectionNumber returns the leading section number of text as
// written, without converting its digits.
func (c *Classifier) ExtractSectionNumber(text string, language lang.Language) (string, bool) {
	table, ok := c.source.Get(language)
	if !ok || !table.IsCompiled() {
		return "", false
	}
	match := table.Compiled().Extraction.SectionNumber.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return "", false
	}
	return match[1], true
}

func matches(re *regexp.Regexp, s string) bool {
	if re == nil {
		return false
	}
	return re.MatchString(s)
}
