package gatekeeper

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	policyViolationCode   = "SUBMISSION_POLICY_VIOLATION"
	remoteCheckFailedCode = "SUBMISSION_REMOTE_CHECK_FAILED"
	quotaExceededCode     = "SUBMISSION_QUOTA_EXCEEDED"
	trackerFailedCode     = "SUBMISSION_TRACKER_FAILED"
)

// ErrRejected reports that the submission was rejected and feedback was
// already posted to the issue; callers only need to signal a non-zero exit.
var ErrRejected = errors.New("gatekeeper: submission rejected")

func policyViolation(errs []string) error {
	err := fmt.Errorf("%w: %d validation error(s)", ErrRejected, len(errs))
	return goerrors.Wrap(err, goerrors.CategoryValidation, "submission failed validation").
		WithTextCode(policyViolationCode)
}

func remoteCheckFailure(errs []string) error {
	err := fmt.Errorf("%w: %d remote image check(s) failed", ErrRejected, len(errs))
	return goerrors.Wrap(err, goerrors.CategoryValidation, "submission failed remote image checks").
		WithTextCode(remoteCheckFailedCode)
}

func quotaExceeded(reason string) error {
	err := fmt.Errorf("%w: %s", ErrRejected, reason)
	return goerrors.Wrap(err, goerrors.CategoryValidation, "submission quota exceeded").
		WithTextCode(quotaExceededCode)
}

func wrapTrackerError(err error, action string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "tracker call failed: "+action).
		WithTextCode(trackerFailedCode)
}

// IsRejection reports whether err represents a rejected submission, as
// opposed to an infrastructure failure talking to the tracker.
func IsRejection(err error) bool {
	return errors.Is(err, ErrRejected)
}
