// Package document runs whole texts through detection, classification and
// identifier generation, producing one Row per non-blank line.
package document

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/coolbeans/kanun/pkg/idno"
	"github.com/coolbeans/kanun/pkg/lang"
	"github.com/coolbeans/kanun/pkg/pattern"
)

// maxLineSize bounds a single line read by ProcessReader.
const maxLineSize = 1 << 20

// Row is one processed line of a document.
type Row struct {
	Number         int                    `json:"rowNo"`
	Text           string                 `json:"text"`
	IDNo           string                 `json:"idNo"`
	Language       lang.Language          `json:"language"`
	ContentType    pattern.ContentType    `json:"contentType"`
	Remark         string                 `json:"remark,omitempty"`
	Classification pattern.Classification `json:"classification"`
}

// Option configures a Processor.
type Option func(*Processor)

// WithNormalization turns NFC normalization of each line on or off. A
// normalized line is what gets classified, numbered and stored in Row.Text;
// language detection always sees the line as given.
func WithNormalization(enabled bool) Option {
	return func(p *Processor) {
		p.normalize = enabled
	}
}

// WithLogger sets the logger used for per-document debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Processor turns raw text into rows. A Processor holds no per-document
// state and may be shared between goroutines; every call runs its own pass
// with a fresh identifier generator over the tables current at its start.
type Processor struct {
	source    pattern.Source
	normalize bool
	logger    *slog.Logger
}

// NewProcessor creates a processor reading pattern tables from source. A nil
// source uses the built-in tables. Normalization is off by default.
func NewProcessor(source pattern.Source, opts ...Option) *Processor {
	if source == nil {
		source = pattern.Builtin()
	}
	p := &Processor{
		source: source,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process splits raw on line breaks, drops blank lines and returns one row
// per remaining line in input order.
func (p *Processor) Process(raw string) []Row {
	pass := p.newPass()
	for _, line := range SplitLines(raw) {
		pass.add(line)
	}
	p.logger.Debug("processed document", "rows", len(pass.rows))
	return pass.rows
}

// ProcessReader is Process for streamed input. It checks ctx between lines
// and returns the rows read so far together with any error.
func (p *Processor) ProcessReader(ctx context.Context, r io.Reader) ([]Row, error) {
	pass := p.newPass()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanLines)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return pass.rows, err
		}
		pass.add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return pass.rows, fmt.Errorf("reading input: %w", err)
	}

	p.logger.Debug("processed document", "rows", len(pass.rows))
	return pass.rows, nil
}

type pass struct {
	normalize  bool
	classifier *pattern.Classifier
	gen        *idno.Generator
	rows       []Row
}

// newPass pins the current tables for the whole document.
func (p *Processor) newPass() *pass {
	tables := pattern.Snapshot(p.source)
	return &pass{
		normalize:  p.normalize,
		classifier: pattern.NewClassifier(tables),
		gen:        idno.NewGenerator(tables),
	}
}

func (ps *pass) add(line string) {
	text := strings.TrimSpace(line)
	if text == "" {
		return
	}

	language := lang.Detect(text)
	if ps.normalize {
		text = norm.NFC.String(text)
	}
	c := ps.classifier.Classify(text, language)
	ct := c.ContentType()

	ps.rows = append(ps.rows, Row{
		Number:         len(ps.rows) + 1,
		Text:           text,
		IDNo:           ps.gen.Generate(text, c),
		Language:       language,
		ContentType:    ct,
		Remark:         Remark(ct),
		Classification: c,
	})
}

// Remark returns the suggestion shown next to provisos and explanations.
func Remark(ct pattern.ContentType) string {
	switch ct {
	case pattern.ContentProviso:
		return "Proviso - suggest .P suffix"
	case pattern.ContentExplanation:
		return "Explanation - suggest .E suffix"
	default:
		return ""
	}
}

// SplitLines splits text on "\r\n", "\n" or a lone "\r". Lines are returned
// untrimmed; blank lines are kept.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// scanLines is bufio.ScanLines that also accepts a lone '\r' as a break.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		// '\r' at the end of the buffer may be the first half of "\r\n".
		if i+1 == len(data) && !atEOF {
			return 0, nil, nil
		}
		if i+1 < len(data) && data[i+1] == '\n' {
			return i + 2, data[:i], nil
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
