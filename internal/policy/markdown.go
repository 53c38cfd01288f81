package policy

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// bodyScanner inspects Markdown at the token level. HTML detection and image
// extraction both work off the goldmark AST so incidental text matches (code
// spans, escaped markup) never count as violations.
type bodyScanner struct {
	parser parser.Parser
}

func newBodyScanner() *bodyScanner {
	engine := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)
	return &bodyScanner{parser: engine.Parser()}
}

type scanReport struct {
	hasRawHTML bool
	imageURLs  []string
}

// scan walks the parsed document collecting raw HTML occurrences and the
// destinations of real image tokens, in document order.
func (s *bodyScanner) scan(source []byte) scanReport {
	report := scanReport{}
	if len(source) == 0 {
		return report
	}

	doc := s.parser.Parse(text.NewReader(source))
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch typed := node.(type) {
		case *ast.HTMLBlock, *ast.RawHTML:
			report.hasRawHTML = true
		case *ast.Image:
			report.imageURLs = append(report.imageURLs, string(typed.Destination))
		}
		return ast.WalkContinue, nil
	})
	return report
}

// hasRawHTML reports whether the Markdown fragment contains an html_block or
// raw inline HTML token.
func (s *bodyScanner) hasRawHTML(source string) bool {
	return s.scan([]byte(source)).hasRawHTML
}
