// Package parser converts class text documents into the ir document tree.
//
// A class document is plain UTF-8 text mixing shlok headers, bulleted verse
// lines, underlined section headers, "Title:" topic labels and bulleted
// references followed by free continuation text. Parsing is a single forward
// pass with one line of lookahead; it performs no I/O and never fails.
package parser

import (
	"strings"

	"github.com/roboco-io/shlokstudy/internal/ir"
)

// Options contains parser configuration options.
type Options struct {
	// ProseMarkers marks a section as prose-like when its name contains any
	// of them. Continuation lines in prose sections are joined with a space,
	// everywhere else with a newline.
	ProseMarkers []string
}

// DefaultOptions returns default parser options.
func DefaultOptions() Options {
	return Options{
		ProseMarkers: []string{"Vachanamrut", "Swamini Vato"},
	}
}

// Parser parses class documents. The zero value is not usable; use New.
// A Parser holds no per-document state and may be shared between goroutines.
type Parser struct {
	options Options
}

// New creates a parser with the given options.
func New(opts Options) *Parser {
	return &Parser{options: opts}
}

// Parse reads the document and returns its verse blocks in order.
func (p *Parser) Parse(text string) []*ir.VerseBlock {
	s := newScanner(splitLines(text), p.options)
	return s.run()
}

// Parse parses text with the default options.
func Parse(text string) []*ir.VerseBlock {
	return New(DefaultOptions()).Parse(text)
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func (o Options) isProse(section string) bool {
	for _, m := range o.ProseMarkers {
		if m != "" && strings.Contains(section, m) {
			return true
		}
	}
	return false
}
