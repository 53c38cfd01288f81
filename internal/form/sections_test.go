package form

import (
	"strings"
	"testing"
)

func TestHeadingParser_SlicesBetweenRecognisedHeadings(t *testing.T) {
	p := NewHeadingParser()

	body := strings.Join([]string{
		"### Description",
		"first line",
		"second line",
		"### Unrelated Heading",
		"text under an unrecognised heading",
		"### Author",
		"Alice",
	}, "\n")

	sections := p.Sections(body)
	if !strings.Contains(sections[SectionDescription], "second line") {
		t.Fatalf("unexpected description: %q", sections[SectionDescription])
	}
	if !strings.Contains(sections[SectionDescription], "Unrelated Heading") {
		t.Fatalf("expected unrecognised heading to stay inside section, got %q", sections[SectionDescription])
	}
	if sections[SectionAuthor] != "Alice" {
		t.Fatalf("unexpected author: %q", sections[SectionAuthor])
	}
}

func TestHeadingParser_CaseInsensitiveHeadings(t *testing.T) {
	p := NewHeadingParser()

	body := "### featured image url\n" + "https://example.invalid/img\n"
	sections := p.Sections(body)
	if sections[SectionFeaturedImage] != "https://example.invalid/img" {
		t.Fatalf("expected case-insensitive match, got %q", sections[SectionFeaturedImage])
	}
}

func TestHeadingParser_AbsentSectionsAreEmpty(t *testing.T) {
	p := NewHeadingParser()

	sections := p.Sections("no headings at all")
	for _, name := range recognisedSections {
		if sections[name] != "" {
			t.Fatalf("expected empty value for %s, got %q", name, sections[name])
		}
	}
}

func TestHeadingParser_WindowsLineEndings(t *testing.T) {
	p := NewHeadingParser()

	body := "### Subject\r\nCommunity\r\n### Author\r\nAlice\r\n"
	sections := p.Sections(body)
	if sections[SectionSubject] != "Community" {
		t.Fatalf("unexpected subject: %q", sections[SectionSubject])
	}
	if sections[SectionAuthor] != "Alice" {
		t.Fatalf("unexpected author: %q", sections[SectionAuthor])
	}
}
