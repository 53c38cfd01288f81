package form

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-blog-intake/internal/logging"
	"github.com/goliatone/go-blog-intake/internal/policy"
	"github.com/goliatone/go-blog-intake/pkg/interfaces"
)

const frontMatterDelimiter = "---"

var (
	titleTagPattern   = regexp.MustCompile(`(?i)^\[blog\]\s*`)
	checkedBoxMarker  = regexp.MustCompile(`(?i)\[x\]`)
	quoteReplacer     = strings.NewReplacer(`"`, `\"`)
	frontMatterFields = []string{"title", "description", "author", "subject", "featuredImage"}
)

// Config wires the parser dependencies.
type Config struct {
	Policy   policy.Policy
	Sections SectionParser
	Logger   interfaces.Logger
}

// Parser converts a raw submission issue into a canonical Submission: typed
// front matter plus Markdown body. Submitters may either fill the issue form
// or paste a literal front-matter document; both converge on the same shape.
type Parser struct {
	policy   policy.Policy
	sections SectionParser
	logger   interfaces.Logger
}

// NewParser builds a parser from the supplied configuration, defaulting to
// the heading section strategy and a no-op logger.
func NewParser(cfg Config) *Parser {
	sections := cfg.Sections
	if sections == nil {
		sections = NewHeadingParser()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Parser{
		policy:   cfg.Policy,
		sections: sections,
		logger:   logger,
	}
}

// Parse converts the issue into a Submission. It fails with an oversize error
// before doing any work when the body exceeds the policy cap, and with a
// parse error when the assembled document has no usable front matter.
func (p *Parser) Parse(issue *interfaces.Issue) (*interfaces.Submission, error) {
	if issue == nil {
		return nil, wrapParseError(fmt.Errorf("%w: nil issue", ErrUnparseable))
	}

	if len(issue.Body) > p.policy.MaxBodyBytes {
		return nil, wrapOversizeError(fmt.Errorf("%w: %d chars, max is %d", ErrBodyTooLarge, len(issue.Body), p.policy.MaxBodyBytes))
	}

	raw := issue.Body
	if !strings.HasPrefix(strings.TrimSpace(raw), frontMatterDelimiter) {
		raw = p.assembleDocument(issue)
	}

	fm, body, err := parseFrontMatter(raw)
	if err != nil {
		p.logger.Debug("form.parse.failed", "issue_number", issue.Number, "error", err)
		return nil, wrapParseError(fmt.Errorf("%w: %v", ErrUnparseable, err))
	}

	return &interfaces.Submission{
		IssueNumber: issue.Number,
		Author:      issue.Author,
		RawBody:     issue.Body,
		FrontMatter: fm,
		Body:        body,
	}, nil
}

// assembleDocument converts the issue-form sections into a front-matter
// document. Quote characters are escaped so extracted text cannot break out
// of the generated scalar values.
func (p *Parser) assembleDocument(issue *interfaces.Issue) string {
	sections := p.sections.Sections(issue.Body)

	title := strings.TrimSpace(titleTagPattern.ReplaceAllString(issue.Title, ""))
	submission := checkedBoxMarker.MatchString(sections[SectionConfirm])

	values := map[string]string{
		"title":         title,
		"description":   sections[SectionDescription],
		"author":        sections[SectionAuthor],
		"subject":       sections[SectionSubject],
		"featuredImage": sections[SectionFeaturedImage],
	}

	var doc strings.Builder
	doc.WriteString(frontMatterDelimiter)
	doc.WriteByte('\n')
	for _, field := range frontMatterFields {
		fmt.Fprintf(&doc, "%s: \"%s\"\n", field, quoteReplacer.Replace(values[field]))
	}
	fmt.Fprintf(&doc, "submission: %t\n", submission)
	doc.WriteString(frontMatterDelimiter)
	doc.WriteString("\n\n")
	doc.WriteString(sections[SectionContent])

	return doc.String()
}

// parseFrontMatter extracts the typed metadata and Markdown body from the
// provided document. Unknown keys land in FrontMatter.Extra so the policy
// validator can reject them by name.
func parseFrontMatter(source string) (interfaces.FrontMatter, string, error) {
	var fm interfaces.FrontMatter

	body, err := frontmatter.Parse(bytes.NewReader([]byte(source)), &fm)
	if err != nil {
		return interfaces.FrontMatter{}, "", fmt.Errorf("parse frontmatter: %w", err)
	}

	return fm, string(body), nil
}
