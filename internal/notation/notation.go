// Package notation reads and writes the GEON text format: an
// indentation-sensitive notation of KEY: value lines, "- " list items and
// nested PLACE records.
//
// Reading runs Tokenize, then the block parser (generic Value tree), then
// Lift (typed Place). Writing is Generate. Parsing is permissive: malformed
// lines are skipped and reported as diagnostics, never as errors.
package notation

import (
	"go.uber.org/zap"

	"github.com/sells-group/geon/internal/model"
)

// DefaultMaxDepth bounds block nesting when no option overrides it.
const DefaultMaxDepth = 64

// Parser holds parse settings. The zero value parses without a depth limit.
// A Parser keeps no state between calls and may be shared.
type Parser struct {
	maxDepth int
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxDepth sets the nesting limit. Zero or less disables the limit.
func WithMaxDepth(n int) Option {
	return func(p *Parser) { p.maxDepth = n }
}

// NewParser returns a Parser with the given options applied.
func NewParser(opts ...Option) *Parser {
	p := &Parser{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Document is the result of reading a text that may hold several places.
type Document struct {
	Places      []*model.Place
	Diagnostics []Diagnostic
}

// ParseRaw returns the generic tree of text without typed lifting.
func (p *Parser) ParseRaw(text string) (model.Mapping, []Diagnostic, error) {
	bp := &blockParser{maxDepth: p.maxDepth}
	raw := bp.fold(Tokenize(text), 0)
	logDiagnostics(bp.diags)
	if bp.err != nil {
		return model.Mapping{}, bp.diags, bp.err
	}
	return raw, bp.diags, nil
}

// Parse reads text as a single place. Empty input gives a place with an
// empty name.
func (p *Parser) Parse(text string) (*model.Place, error) {
	raw, _, err := p.ParseRaw(text)
	if err != nil {
		return nil, err
	}
	return Lift(raw), nil
}

// ParseDocument reads text holding any number of top-level places. A new
// place starts at every PLACE line at the document's base indentation.
func (p *Parser) ParseDocument(text string) (*Document, error) {
	doc := &Document{}
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return doc, nil
	}

	bp := &blockParser{maxDepth: p.maxDepth}
	for _, chunk := range splitDocuments(tokens) {
		raw := bp.fold(chunk, 0)
		if bp.err != nil {
			logDiagnostics(bp.diags)
			return nil, bp.err
		}
		doc.Places = append(doc.Places, Lift(raw))
	}
	doc.Diagnostics = bp.diags
	logDiagnostics(bp.diags)
	return doc, nil
}

// ParseMany is ParseDocument without diagnostics.
func (p *Parser) ParseMany(text string) ([]*model.Place, error) {
	doc, err := p.ParseDocument(text)
	if err != nil {
		return nil, err
	}
	return doc.Places, nil
}

var defaultParser = NewParser()

// Parse reads text as a single place with default settings.
func Parse(text string) (*model.Place, error) {
	return defaultParser.Parse(text)
}

// ParseMany reads every top-level place in text with default settings.
func ParseMany(text string) ([]*model.Place, error) {
	return defaultParser.ParseMany(text)
}

func splitDocuments(tokens []Line) [][]Line {
	base := tokens[0].Indent
	var chunks [][]Line
	start := 0
	for i := 1; i < len(tokens); i++ {
		if tokens[i].Indent != base {
			continue
		}
		if key, _, ok := splitKeyValue(tokens[i].Content); ok && key == KeyPlace {
			chunks = append(chunks, tokens[start:i])
			start = i
		}
	}
	return append(chunks, tokens[start:])
}

func logDiagnostics(diags []Diagnostic) {
	for _, d := range diags {
		zap.L().Debug("notation: skipped line",
			zap.Int("line", d.Line),
			zap.String("reason", d.Message),
		)
	}
}
