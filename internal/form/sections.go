package form

import (
	"regexp"
	"strings"
)

// Section names recognised in the submission issue form. Matching is
// case-insensitive but otherwise exact.
const (
	SectionDescription   = "Description"
	SectionAuthor        = "Author"
	SectionSubject       = "Subject"
	SectionFeaturedImage = "Featured Image URL"
	SectionConfirm       = "Confirm submission"
	SectionContent       = "Blog Content"
)

// recognisedSections lists every heading the form may contain, in form order.
var recognisedSections = []string{
	SectionDescription,
	SectionAuthor,
	SectionSubject,
	SectionFeaturedImage,
	SectionConfirm,
	SectionContent,
}

// SectionParser slices a form-style issue body into named sections. The
// heading strategy below is the default; a stricter structured-forms parser
// can replace it without touching validation or publishing.
type SectionParser interface {
	Sections(body string) map[string]string
}

var headingLine = regexp.MustCompile(`^###\s*(.*?)\s*$`)

// HeadingParser locates each recognised section by its `###` heading and
// takes everything up to the next recognised heading (or end of document) as
// the section value, trimmed. Absent sections yield empty strings.
type HeadingParser struct{}

// NewHeadingParser returns the default heading-based section parser.
func NewHeadingParser() *HeadingParser {
	return &HeadingParser{}
}

// Sections implements SectionParser.
func (*HeadingParser) Sections(body string) map[string]string {
	lines := splitLines(body)

	type marker struct {
		name string
		line int
	}
	var markers []marker
	for i, line := range lines {
		match := headingLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		if name, ok := recogniseSection(match[1]); ok {
			markers = append(markers, marker{name: name, line: i})
		}
	}

	sections := make(map[string]string, len(recognisedSections))
	for _, name := range recognisedSections {
		sections[name] = ""
	}

	for i, m := range markers {
		end := len(lines)
		if i+1 < len(markers) {
			end = markers[i+1].line
		}
		sections[m.name] = strings.TrimSpace(strings.Join(lines[m.line+1:end], "\n"))
	}

	return sections
}

func recogniseSection(heading string) (string, bool) {
	for _, name := range recognisedSections {
		if strings.EqualFold(heading, name) {
			return name, true
		}
	}
	return "", false
}

func splitLines(body string) []string {
	return strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
}
