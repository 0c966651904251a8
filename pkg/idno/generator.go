// Package idno derives hierarchical statute identifiers ("IDNo") such as
// 4.1.a.P from the numbering and lettering found in lines of text.
//
// Identifiers depend on the lines that came before them, so a Generator
// carries the current section and subsection from one line to the next. A
// Generator belongs to exactly one document pass: create a new one, or call
// Reset, before the first line of every document.
package idno

import (
	"strings"

	"github.com/coolbeans/kanun/pkg/pattern"
)

// Context is the numbering state carried between lines. An empty field means
// no section or subsection has been seen yet.
type Context struct {
	CurrentSection    string `json:"currentSection,omitempty"`
	CurrentSubsection string `json:"currentSubsection,omitempty"`
}

// Generator builds identifiers line by line. It is not safe for concurrent
// use; lines must be fed in document order.
type Generator struct {
	source pattern.Source
	ctx    Context
}

// NewGenerator creates a generator with an empty context. A nil source uses
// the built-in pattern tables.
func NewGenerator(source pattern.Source) *Generator {
	if source == nil {
		source = pattern.Builtin()
	}
	return &Generator{source: source}
}

// Reset clears the context before a new document.
func (g *Generator) Reset() {
	g.ctx = Context{}
}

// Context returns a copy of the current context.
func (g *Generator) Context() Context {
	return g.ctx
}

// Generate returns the identifier for one line and advances the context.
// Lines without recognizable numbering yield "". Generate never fails.
//
// The rules, in order:
//   - a line holding only "N." is a section heading and yields "N.0";
//   - a leading "N." or "N " starts a new section and becomes the base;
//   - the first "(xN)" sub-clause, else "(x)" clause, else "(N)" subsection
//     is appended to the base, or to the current section when the line has
//     no number of its own;
//   - provisos get ".P" and explanations ".E", but only on a non-empty
//     identifier.
//
// Only section and subsection markers update the context; clauses,
// provisos and explanations just read it.
func (g *Generator) Generate(text string, c pattern.Classification) string {
	table, ok := g.source.Get(c.Language)
	if !ok || !table.IsCompiled() {
		return ""
	}
	ex := table.Compiled().Extraction
	trimmed := strings.TrimSpace(text)

	if m := ex.SectionHeading.FindStringSubmatch(trimmed); m != nil {
		section := ToLatinDigits(m[1])
		g.ctx = Context{CurrentSection: section}
		return section + ".0"
	}

	var id string
	if m := ex.LeadingNumber.FindStringSubmatch(trimmed); m != nil {
		id = ToLatinDigits(m[1])
		g.ctx = Context{CurrentSection: id}
	}

	if m := ex.SubClause.FindStringSubmatch(trimmed); m != nil {
		id = g.extend(id, ClauseCode(m[1], c.Language)+ToLatinDigits(m[2]))
	} else if m := ex.Clause.FindStringSubmatch(trimmed); m != nil {
		id = g.extend(id, ClauseCode(m[1], c.Language))
	} else if m := ex.Subsection.FindStringSubmatch(trimmed); m != nil {
		subsection := ToLatinDigits(m[1])
		id = g.extend(id, subsection)
		g.ctx.CurrentSubsection = subsection
	}

	if id == "" {
		return ""
	}
	return WithSuffix(id, c.ContentType().Suffix())
}

// extend appends token to the identifier built so far, falling back to the
// current section, or to the bare token when no section is known.
func (g *Generator) extend(id, token string) string {
	switch {
	case id != "":
		return id + "." + token
	case g.ctx.CurrentSection != "":
		return g.ctx.CurrentSection + "." + token
	default:
		return token
	}
}
