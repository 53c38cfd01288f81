package policy

import "regexp"

// Defaults mirror the submission form currently deployed against the content
// repository. Callers can override individual values through runtime
// configuration; the zero Policy is not usable, always start from Default.
const (
	DefaultMaxBodyBytes      = 50_000
	DefaultMaxTitleRunes     = 100
	DefaultMaxDescription    = 300
	DefaultMaxAuthorRunes    = 100
	DefaultMaxInlineImages   = 2
	DefaultMaxImageBytes     = 1 << 20
	DefaultMaxOpenValid      = 3
	DefaultMaxInvalid        = 100
	DefaultRawImageRefsBound = 64
)

// assetURLPattern matches the upload-asset URLs the tracker hosts issue-form
// attachments under. Anything else is refused before a fetch is attempted.
var assetURLPattern = regexp.MustCompile(`^https://github\.com/user-attachments/assets/[0-9a-fA-F-]+(\?raw=true)?$`)

// invalidCharPattern rejects control and invisible code points that survive
// copy/paste but corrupt generated front-matter (NUL..US except tab and the
// newline pair, DEL, zero-width space, RTL override). Tab, LF and CR are
// ordinary markdown whitespace and stay legal.
var invalidCharPattern = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f​‮]")

// DefaultSubjects is the category whitelist accepted by the submission form.
var DefaultSubjects = []string{
	"Community",
	"Developers",
	"Ecosystem",
	"DAOs",
	"NFTs",
	"Gaming",
	"Web3 Gaming",
	"User-Owned AI",
}

// Policy is the declarative rule set every submission is validated against.
type Policy struct {
	// Subjects is the closed set of accepted category names.
	Subjects []string
	// MaxBodyBytes bounds the raw issue body before any parsing happens.
	MaxBodyBytes int
	// MaxTitleRunes, MaxDescriptionRunes and MaxAuthorRunes cap field lengths.
	MaxTitleRunes       int
	MaxDescriptionRunes int
	MaxAuthorRunes      int
	// MaxInlineImages caps distinct inline image references, excluding the
	// featured image.
	MaxInlineImages int
	// MaxImageBytes caps the byte size of any referenced remote image.
	MaxImageBytes int64
	// MaxOpenValidSubmissions caps concurrent in-flight submissions per user.
	MaxOpenValidSubmissions int
	// MaxInvalidSubmissions caps accumulated failed attempts per user.
	MaxInvalidSubmissions int
	// RawImageRefsBound is a generous structural bound on raw "![" markers
	// applied before token-level parsing.
	RawImageRefsBound int
	// AssetURLPattern identifies trusted upload-origin image URLs.
	AssetURLPattern *regexp.Regexp
}

// Default returns the policy matching the deployed submission form.
func Default() Policy {
	return Policy{
		Subjects:                append([]string(nil), DefaultSubjects...),
		MaxBodyBytes:            DefaultMaxBodyBytes,
		MaxTitleRunes:           DefaultMaxTitleRunes,
		MaxDescriptionRunes:     DefaultMaxDescription,
		MaxAuthorRunes:          DefaultMaxAuthorRunes,
		MaxInlineImages:         DefaultMaxInlineImages,
		MaxImageBytes:           DefaultMaxImageBytes,
		MaxOpenValidSubmissions: DefaultMaxOpenValid,
		MaxInvalidSubmissions:   DefaultMaxInvalid,
		RawImageRefsBound:       DefaultRawImageRefsBound,
		AssetURLPattern:         assetURLPattern,
	}
}

// TrustedAssetURL reports whether url points at the trusted upload origin.
func (p Policy) TrustedAssetURL(url string) bool {
	pattern := p.AssetURLPattern
	if pattern == nil {
		pattern = assetURLPattern
	}
	return pattern.MatchString(url)
}

// HasInvalidChars reports whether value contains denylisted control or
// invisible characters.
func HasInvalidChars(value string) bool {
	return invalidCharPattern.MatchString(value)
}
