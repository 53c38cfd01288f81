package policy

import (
	"fmt"
	"strings"
	"testing"

	"github.com/goliatone/go-blog-intake/pkg/interfaces"
)

const trustedAsset = "https://github.com/user-attachments/assets/0f1e2d3c-4b5a-6978-8596-a4b3c2d1e0f9"

func validFrontMatter() interfaces.FrontMatter {
	return interfaces.FrontMatter{
		Title:         "Why I Love X",
		Description:   "This post explores my favorite features of the ecosystem.",
		Author:        "Alice Example",
		Subject:       "Community",
		FeaturedImage: trustedAsset,
		Submission:    true,
	}
}

func newTestValidator(tb testing.TB) *Validator {
	tb.Helper()
	return NewValidator(Default(), nil)
}

func TestValidateFrontMatter_Valid(t *testing.T) {
	v := newTestValidator(t)

	res := v.ValidateFrontMatter(validFrontMatter())
	if !res.Valid {
		t.Fatalf("expected valid front matter, got errors: %v", res.Errors)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("expected empty error list, got %v", res.Errors)
	}
}

func TestValidateFrontMatter_MissingTitle(t *testing.T) {
	v := newTestValidator(t)

	fm := validFrontMatter()
	fm.Title = ""

	res := v.ValidateFrontMatter(fm)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !containsMatch(res.Errors, "title") {
		t.Fatalf("expected a title error, got %v", res.Errors)
	}
}

func TestValidateFrontMatter_TitleLengthBoundary(t *testing.T) {
	v := newTestValidator(t)

	fm := validFrontMatter()
	fm.Title = strings.Repeat("a", 100)
	if res := v.ValidateFrontMatter(fm); !res.Valid {
		t.Fatalf("expected 100-rune title to pass, got %v", res.Errors)
	}

	fm.Title = strings.Repeat("a", 101)
	res := v.ValidateFrontMatter(fm)
	if res.Valid {
		t.Fatal("expected 101-rune title to fail")
	}
	if !containsMatch(res.Errors, "title") {
		t.Fatalf("expected a title error, got %v", res.Errors)
	}
}

func TestValidateFrontMatter_InvalidSubject(t *testing.T) {
	v := newTestValidator(t)

	fm := validFrontMatter()
	fm.Subject = "NotAllowed"

	res := v.ValidateFrontMatter(fm)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !containsMatch(res.Errors, "subject") {
		t.Fatalf("expected a subject error, got %v", res.Errors)
	}
}

func TestValidateFrontMatter_UnexpectedFields(t *testing.T) {
	v := newTestValidator(t)

	fm := validFrontMatter()
	fm.Extra = map[string]any{"weight": 10, "draft": false}

	res := v.ValidateFrontMatter(fm)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !containsMatch(res.Errors, "Unexpected fields in frontmatter: draft, weight") {
		t.Fatalf("expected unexpected-fields error, got %v", res.Errors)
	}
}

func TestValidateFrontMatter_RawHTMLInField(t *testing.T) {
	v := newTestValidator(t)

	fm := validFrontMatter()
	fm.Title = "My <em>great</em> post"

	res := v.ValidateFrontMatter(fm)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !containsMatch(res.Errors, "Raw HTML is not allowed in the title field") {
		t.Fatalf("expected HTML error, got %v", res.Errors)
	}
}

func TestValidateFrontMatter_ControlCharacters(t *testing.T) {
	v := newTestValidator(t)

	fm := validFrontMatter()
	fm.Description = "hidden​space"

	res := v.ValidateFrontMatter(fm)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !containsMatch(res.Errors, "description") {
		t.Fatalf("expected description error, got %v", res.Errors)
	}
}

func TestValidateFrontMatter_UntrustedFeaturedImage(t *testing.T) {
	v := newTestValidator(t)

	fm := validFrontMatter()
	fm.FeaturedImage = "https://imgur.com/image-1.png"

	res := v.ValidateFrontMatter(fm)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !containsMatch(res.Errors, "Featured Image URL") {
		t.Fatalf("expected featured image error, got %v", res.Errors)
	}
}

func TestValidateFrontMatter_Deterministic(t *testing.T) {
	v := newTestValidator(t)

	fm := validFrontMatter()
	fm.Title = ""
	fm.Subject = "WrongTag"
	fm.Submission = false

	first := v.ValidateFrontMatter(fm)
	second := v.ValidateFrontMatter(fm)

	if len(first.Errors) != len(second.Errors) {
		t.Fatalf("expected identical error lists, got %v vs %v", first.Errors, second.Errors)
	}
	for i := range first.Errors {
		if first.Errors[i] != second.Errors[i] {
			t.Fatalf("error order changed between runs: %v vs %v", first.Errors, second.Errors)
		}
	}
}

func TestValidateBody_InlineImageCap(t *testing.T) {
	v := newTestValidator(t)

	two := bodyWithImages(2)
	if res := v.ValidateBody(two); !res.Valid {
		t.Fatalf("expected 2 inline images to pass, got %v", res.Errors)
	}

	three := bodyWithImages(3)
	res := v.ValidateBody(three)
	if res.Valid {
		t.Fatal("expected 3 inline images to fail")
	}
	if !containsMatch(res.Errors, "Too many images") {
		t.Fatalf("expected too-many-images error, got %v", res.Errors)
	}
}

func TestValidateBody_DuplicateImagesCountOnce(t *testing.T) {
	v := newTestValidator(t)

	url := trustedAsset
	body := fmt.Sprintf("Intro\n\n![a](%s)\n![b](%s)\n![c](%s)\n", url, url, url)
	if res := v.ValidateBody(body); !res.Valid {
		t.Fatalf("expected repeated reference to count once, got %v", res.Errors)
	}
}

func TestValidateBody_MarkdownWhitespaceIsLegal(t *testing.T) {
	v := newTestValidator(t)

	body := "# Heading\n\nParagraph one.\r\n\n- item\n-\titem with tab\n"
	if res := v.ValidateBody(body); !res.Valid {
		t.Fatalf("expected multi-line body to pass, got %v", res.Errors)
	}
}

func TestValidateBody_RawHTML(t *testing.T) {
	v := newTestValidator(t)

	res := v.ValidateBody("<div>This is HTML and should fail</div>")
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !containsMatch(res.Errors, "HTML") {
		t.Fatalf("expected HTML error, got %v", res.Errors)
	}
}

func TestValidateBody_UntrustedInlineImage(t *testing.T) {
	v := newTestValidator(t)

	res := v.ValidateBody("![img](https://imgur.com/image-1.png)")
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !containsMatch(res.Errors, "Invalid inline image URL: https://imgur.com/image-1.png") {
		t.Fatalf("expected inline image error, got %v", res.Errors)
	}
}

func TestValidateBody_Missing(t *testing.T) {
	v := newTestValidator(t)

	res := v.ValidateBody("   \n")
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !containsMatch(res.Errors, "Missing Markdown body") {
		t.Fatalf("expected missing-body error, got %v", res.Errors)
	}
}

func TestValidateBody_ControlCharacters(t *testing.T) {
	v := newTestValidator(t)

	res := v.ValidateBody("looks fine‮but is not")
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !containsMatch(res.Errors, "control or invisible") {
		t.Fatalf("expected control-character error, got %v", res.Errors)
	}

	if res := v.ValidateBody("line one\nline\x00two\n"); res.Valid {
		t.Fatal("expected NUL in a multi-line body to fail")
	}
}

func TestInlineImages_DistinctDocumentOrder(t *testing.T) {
	v := newTestValidator(t)

	first := "https://github.com/user-attachments/assets/aaaaaaaa-0000-0000-0000-000000000001"
	second := "https://github.com/user-attachments/assets/aaaaaaaa-0000-0000-0000-000000000002"
	body := fmt.Sprintf("![one](%s)\n\ntext\n\n![two](%s)\n\n![one again](%s)\n", first, second, first)

	refs := v.InlineImages(body)
	if len(refs) != 2 {
		t.Fatalf("expected 2 distinct references, got %d", len(refs))
	}
	if refs[0].URL != first || refs[1].URL != second {
		t.Fatalf("unexpected order: %v", refs)
	}
	for _, ref := range refs {
		if ref.Role != interfaces.ImageRoleInline {
			t.Fatalf("expected inline role, got %s", ref.Role)
		}
	}
}

func TestInlineImages_IgnoresPlainTextMatches(t *testing.T) {
	v := newTestValidator(t)

	body := "The literal text `![img](" + trustedAsset + ")` inside a code span is not an image token."
	if refs := v.InlineImages(body); len(refs) != 0 {
		t.Fatalf("expected no image tokens, got %v", refs)
	}
}

func bodyWithImages(n int) string {
	var b strings.Builder
	b.WriteString("Markdown with images\n\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "![img %d](https://github.com/user-attachments/assets/aaaaaaaa-0000-0000-0000-00000000000%d)\n", i, i)
	}
	return b.String()
}

func containsMatch(errs []string, fragment string) bool {
	for _, err := range errs {
		if strings.Contains(err, fragment) {
			return true
		}
	}
	return false
}
