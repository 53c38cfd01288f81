package form

import (
	"strings"
	"testing"

	"github.com/goliatone/go-blog-intake/internal/policy"
	"github.com/goliatone/go-blog-intake/pkg/interfaces"
)

const testAsset = "https://github.com/user-attachments/assets/0f1e2d3c-4b5a-6978-8596-a4b3c2d1e0f9"

func newTestParser(tb testing.TB) *Parser {
	tb.Helper()
	return NewParser(Config{Policy: policy.Default()})
}

func formIssue(tb testing.TB) *interfaces.Issue {
	tb.Helper()
	body := strings.Join([]string{
		"### Description",
		"",
		"A short description.",
		"",
		"### Author",
		"",
		"Alice Example",
		"",
		"### Subject",
		"",
		"Community",
		"",
		"### Featured Image URL",
		"",
		testAsset,
		"",
		"### Confirm submission",
		"",
		"- [x] I confirm this is my own work",
		"",
		"### Blog Content",
		"",
		"Hello **world**.",
	}, "\n")

	return &interfaces.Issue{
		Number: 7,
		Title:  "[Blog] My First Post",
		Body:   body,
		Author: "alice",
	}
}

func TestParse_FormSections(t *testing.T) {
	p := newTestParser(t)

	sub, err := p.Parse(formIssue(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	fm := sub.FrontMatter
	if fm.Title != "My First Post" {
		t.Fatalf("expected stripped title, got %q", fm.Title)
	}
	if fm.Description != "A short description." {
		t.Fatalf("unexpected description: %q", fm.Description)
	}
	if fm.Author != "Alice Example" {
		t.Fatalf("unexpected author: %q", fm.Author)
	}
	if fm.Subject != "Community" {
		t.Fatalf("unexpected subject: %q", fm.Subject)
	}
	if fm.FeaturedImage != testAsset {
		t.Fatalf("unexpected featured image: %q", fm.FeaturedImage)
	}
	if !fm.Submission {
		t.Fatal("expected submission flag to be derived from checked box")
	}
	if strings.TrimSpace(sub.Body) != "Hello **world**." {
		t.Fatalf("unexpected body: %q", sub.Body)
	}
}

func TestParse_LiteralFrontMatterPassthrough(t *testing.T) {
	p := newTestParser(t)

	body := strings.Join([]string{
		"---",
		`title: "Pasted Post"`,
		`description: "Already front matter."`,
		`author: "Bob"`,
		`subject: "Developers"`,
		`featuredImage: "` + testAsset + `"`,
		"submission: true",
		"---",
		"",
		"### Description",
		"",
		"This heading is body content, not a form section.",
	}, "\n")

	sub, err := p.Parse(&interfaces.Issue{Number: 9, Title: "[Blog] ignored", Body: body, Author: "bob"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if sub.FrontMatter.Title != "Pasted Post" {
		t.Fatalf("expected literal front matter title, got %q", sub.FrontMatter.Title)
	}
	if !strings.Contains(sub.Body, "This heading is body content") {
		t.Fatalf("expected body preserved, got %q", sub.Body)
	}
	if !strings.Contains(sub.Body, "### Description") {
		t.Fatalf("expected no section extraction on literal front matter, got %q", sub.Body)
	}
}

func TestParse_UnknownFrontMatterKeysRetained(t *testing.T) {
	p := newTestParser(t)

	body := strings.Join([]string{
		"---",
		`title: "Pasted Post"`,
		`description: "desc"`,
		`author: "Bob"`,
		`subject: "Developers"`,
		`featuredImage: "` + testAsset + `"`,
		"submission: true",
		"weight: 3",
		"---",
		"",
		"Body.",
	}, "\n")

	sub, err := p.Parse(&interfaces.Issue{Number: 3, Title: "t", Body: body, Author: "bob"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := sub.FrontMatter.Extra["weight"]; !ok {
		t.Fatalf("expected unknown key retained in Extra, got %v", sub.FrontMatter.Extra)
	}
}

func TestParse_MissingSectionsYieldEmptyFields(t *testing.T) {
	p := newTestParser(t)

	issue := formIssue(t)
	issue.Body = strings.Join([]string{
		"### Description",
		"",
		"Only a description.",
	}, "\n")

	sub, err := p.Parse(issue)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sub.FrontMatter.Author != "" || sub.FrontMatter.Subject != "" {
		t.Fatalf("expected absent sections to be empty, got %+v", sub.FrontMatter)
	}
	if sub.FrontMatter.Submission {
		t.Fatal("expected submission flag false without confirm section")
	}
}

func TestParse_OversizeBodyRejectedBeforeParsing(t *testing.T) {
	p := newTestParser(t)

	issue := formIssue(t)
	issue.Body = strings.Repeat("a", policy.DefaultMaxBodyBytes+1)

	_, err := p.Parse(issue)
	if err == nil {
		t.Fatal("expected oversize error")
	}
	if !IsOversize(err) {
		t.Fatalf("expected oversize classification, got %v", err)
	}
}

func TestParse_QuoteEscaping(t *testing.T) {
	p := newTestParser(t)

	issue := formIssue(t)
	issue.Title = `[Blog] A "Quoted" Title`

	sub, err := p.Parse(issue)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sub.FrontMatter.Title != `A "Quoted" Title` {
		t.Fatalf("expected quotes to round-trip, got %q", sub.FrontMatter.Title)
	}
}

func TestParse_UncheckedConfirmLeavesFlagFalse(t *testing.T) {
	p := newTestParser(t)

	issue := formIssue(t)
	issue.Body = strings.ReplaceAll(issue.Body, "[x]", "[ ]")

	sub, err := p.Parse(issue)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sub.FrontMatter.Submission {
		t.Fatal("expected submission flag false for unchecked box")
	}
}
