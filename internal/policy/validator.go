package policy

import (
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-blog-intake/internal/logging"
	"github.com/goliatone/go-blog-intake/pkg/interfaces"
)

// allowedFields is the closed front-matter schema; anything else the
// submitter pastes is rejected by name.
var allowedFields = map[string]struct{}{
	"title":         {},
	"description":   {},
	"author":        {},
	"subject":       {},
	"featuredImage": {},
	"submission":    {},
}

// Validator applies the declarative policy to parsed submissions. It is pure:
// no network or disk access, so results are deterministic for a fixed input.
type Validator struct {
	policy  Policy
	scanner *bodyScanner
	logger  interfaces.Logger
}

// NewValidator builds a validator for the supplied policy.
func NewValidator(policy Policy, logger interfaces.Logger) *Validator {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Validator{
		policy:  policy,
		scanner: newBodyScanner(),
		logger:  logger,
	}
}

// ValidateFrontMatter checks the metadata block against the policy. All
// violations are collected in rule-definition order, never short-circuited.
func (v *Validator) ValidateFrontMatter(fm interfaces.FrontMatter) interfaces.ValidationResult {
	var errs []string

	if unexpected := unexpectedFields(fm.Extra); len(unexpected) > 0 {
		errs = append(errs, fmt.Sprintf("Unexpected fields in frontmatter: %s", strings.Join(unexpected, ", ")))
	}

	for _, field := range []struct {
		name  string
		value string
	}{
		{"title", fm.Title},
		{"description", fm.Description},
		{"author", fm.Author},
	} {
		if field.value != "" && v.scanner.hasRawHTML(field.value) {
			errs = append(errs, fmt.Sprintf("Raw HTML is not allowed in the %s field.", field.name))
		}
	}

	if err := validation.Validate(fm.Title,
		validation.Required,
		validation.RuneLength(1, v.policy.MaxTitleRunes),
		validation.By(noInvalidChars),
	); err != nil {
		errs = append(errs, fmt.Sprintf("Invalid or missing title (max %d chars, no control/invisible characters).", v.policy.MaxTitleRunes))
	}

	if err := validation.Validate(fm.Description,
		validation.Required,
		validation.RuneLength(1, v.policy.MaxDescriptionRunes),
		validation.By(noInvalidChars),
	); err != nil {
		errs = append(errs, fmt.Sprintf("Invalid or missing description (max %d chars, no control/invisible characters).", v.policy.MaxDescriptionRunes))
	}

	if err := validation.Validate(fm.Author,
		validation.Required,
		validation.RuneLength(1, v.policy.MaxAuthorRunes),
		validation.By(noInvalidChars),
	); err != nil {
		errs = append(errs, fmt.Sprintf("Missing or invalid author (max %d chars, no control/invisible characters).", v.policy.MaxAuthorRunes))
	}

	if err := validation.Validate(fm.Subject,
		validation.Required,
		validation.In(toAny(v.policy.Subjects)...),
	); err != nil {
		errs = append(errs, fmt.Sprintf("Invalid subject tag. Allowed values: %s", strings.Join(v.policy.Subjects, ", ")))
	}

	if fm.FeaturedImage == "" || !v.policy.TrustedAssetURL(fm.FeaturedImage) {
		errs = append(errs, "Missing or invalid Featured Image URL (must be a trusted upload-asset URL).")
	}

	if !fm.Submission {
		errs = append(errs, "Missing or invalid 'submission: true' flag in frontmatter.")
	}

	return result(errs)
}

// ValidateBody checks the Markdown body. Raw HTML short-circuits the image
// checks: image extraction is meaningless once the body is refused outright.
func (v *Validator) ValidateBody(body string) interfaces.ValidationResult {
	if strings.TrimSpace(body) == "" {
		return result([]string{"Missing Markdown body content."})
	}

	var errs []string
	if HasInvalidChars(body) {
		errs = append(errs, "Blog content contains invalid control or invisible characters.")
	}

	report := v.scanner.scan([]byte(body))
	if report.hasRawHTML {
		errs = append(errs, "Raw HTML tags are not allowed. Please remove any HTML from your Markdown content.")
		return result(errs)
	}

	distinct := dedupe(report.imageURLs)
	if len(distinct) > v.policy.MaxInlineImages {
		errs = append(errs, fmt.Sprintf("Too many images used: found %d, max allowed is %d.", len(distinct), v.policy.MaxInlineImages))
	}
	for _, url := range distinct {
		if !v.policy.TrustedAssetURL(url) {
			errs = append(errs, fmt.Sprintf("Invalid inline image URL: %s", url))
		}
	}

	return result(errs)
}

// InlineImages extracts the distinct inline image references from real image
// tokens, preserving document order.
func (v *Validator) InlineImages(body string) []interfaces.ImageReference {
	urls := dedupe(v.scanner.scan([]byte(body)).imageURLs)
	refs := make([]interfaces.ImageReference, 0, len(urls))
	for _, url := range urls {
		refs = append(refs, interfaces.ImageReference{URL: url, Role: interfaces.ImageRoleInline})
	}
	return refs
}

// Policy exposes the rule set the validator was built with.
func (v *Validator) Policy() Policy {
	return v.policy
}

func noInvalidChars(value any) error {
	text, _ := value.(string)
	if HasInvalidChars(text) {
		return validation.NewError("intake.policy.invalid_chars", "contains control or invisible characters")
	}
	return nil
}

func unexpectedFields(extra map[string]any) []string {
	if len(extra) == 0 {
		return nil
	}
	var unexpected []string
	for key := range extra {
		if _, ok := allowedFields[key]; !ok {
			unexpected = append(unexpected, key)
		}
	}
	sort.Strings(unexpected)
	return unexpected
}

func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, url := range urls {
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, url)
	}
	return out
}

func toAny(values []string) []any {
	out := make([]any, 0, len(values))
	for _, value := range values {
		out = append(out, value)
	}
	return out
}

func result(errs []string) interfaces.ValidationResult {
	if len(errs) == 0 {
		return interfaces.ValidationResult{Valid: true, Errors: []string{}}
	}
	return interfaces.ValidationResult{Valid: false, Errors: errs}
}
