package publisher

import (
	goerrors "github.com/goliatone/go-errors"
)

const publishFailedCode = "SUBMISSION_PUBLISH_FAILED"

func wrapPublishError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "submission import failed").
		WithTextCode(publishFailedCode)
}
