package submissioncmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-blog-intake/pkg/interfaces"
)

const (
	validateMessageType = "intake.submission.validate"
	importMessageType   = "intake.submission.import"
)

// ValidateSubmissionCommand runs the gatekeeper state machine for one issue.
type ValidateSubmissionCommand struct {
	// Owner and Repo identify the repository the issue lives in.
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
	// IssueNumber selects the submission issue to validate.
	IssueNumber int `json:"issue_number"`
}

// Type implements command.Message.
func (ValidateSubmissionCommand) Type() string { return validateMessageType }

// Validate ensures the issue coordinates are present before handlers execute.
func (cmd ValidateSubmissionCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Owner, validation.Required, validation.By(nonBlank("intake.submission.validate.owner_required", "owner is required"))),
		validation.Field(&cmd.Repo, validation.Required, validation.By(nonBlank("intake.submission.validate.repo_required", "repo is required"))),
		validation.Field(&cmd.IssueNumber, validation.Required, validation.Min(1)),
	)
}

// Ref returns the tracker coordinates of the target issue.
func (cmd ValidateSubmissionCommand) Ref() interfaces.IssueRef {
	return interfaces.IssueRef{
		RepoRef: interfaces.RepoRef{Owner: cmd.Owner, Repo: cmd.Repo},
		Number:  cmd.IssueNumber,
	}
}

// ImportSubmissionCommand converts a validated submission issue into a pull
// request against BaseBranch.
type ImportSubmissionCommand struct {
	// Owner and Repo identify the repository the issue lives in.
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
	// IssueNumber selects the submission issue to import.
	IssueNumber int `json:"issue_number"`
	// BaseBranch is the pull request target; empty means the repository's
	// default branch.
	BaseBranch string `json:"base_branch,omitempty"`
}

// Type implements command.Message.
func (ImportSubmissionCommand) Type() string { return importMessageType }

// Validate ensures the issue coordinates are present before handlers execute.
func (cmd ImportSubmissionCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Owner, validation.Required, validation.By(nonBlank("intake.submission.import.owner_required", "owner is required"))),
		validation.Field(&cmd.Repo, validation.Required, validation.By(nonBlank("intake.submission.import.repo_required", "repo is required"))),
		validation.Field(&cmd.IssueNumber, validation.Required, validation.Min(1)),
	)
}

// Ref returns the tracker coordinates of the target issue.
func (cmd ImportSubmissionCommand) Ref() interfaces.IssueRef {
	return interfaces.IssueRef{
		RepoRef: interfaces.RepoRef{Owner: cmd.Owner, Repo: cmd.Repo},
		Number:  cmd.IssueNumber,
	}
}

func nonBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		if strings.TrimSpace(value.(string)) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
