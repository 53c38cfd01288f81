package form

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	oversizeCode    = "SUBMISSION_OVERSIZE"
	parseFailedCode = "SUBMISSION_PARSE_FAILED"
)

// ErrBodyTooLarge reports that the raw issue body exceeded the policy size
// cap. The guard runs before any parsing work as a denial-of-service stop.
var ErrBodyTooLarge = errors.New("form: issue body exceeds maximum size")

// ErrUnparseable reports that the submission could not be converted into
// front matter plus Markdown body.
var ErrUnparseable = errors.New("form: submission could not be parsed")

func wrapOversizeError(err error) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "issue body too large").
		WithTextCode(oversizeCode)
}

func wrapParseError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "submission parse failed").
		WithTextCode(parseFailedCode)
}

// IsOversize reports whether err came from the pre-parse size guard.
func IsOversize(err error) bool {
	return errors.Is(err, ErrBodyTooLarge)
}

// IsParseFailure reports whether err represents malformed front matter or an
// unparseable form body.
func IsParseFailure(err error) bool {
	return errors.Is(err, ErrUnparseable)
}
