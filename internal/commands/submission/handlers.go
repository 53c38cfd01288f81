package submissioncmd

import (
	"context"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-blog-intake/internal/commands"
	"github.com/goliatone/go-blog-intake/internal/logging"
	"github.com/goliatone/go-blog-intake/pkg/interfaces"
)

const (
	validateOperation = "submission.validate"
	importOperation   = "submission.import"
)

var (
	_ command.Commander[ValidateSubmissionCommand] = (*ValidateSubmissionHandler)(nil)
	_ command.Commander[ImportSubmissionCommand]   = (*ImportSubmissionHandler)(nil)
)

// SubmissionValidator drives one issue through the gatekeeper state machine.
type SubmissionValidator interface {
	Run(ctx context.Context, ref interfaces.IssueRef) error
}

// SubmissionImporter converts a validated submission issue into a pull
// request.
type SubmissionImporter interface {
	Publish(ctx context.Context, ref interfaces.IssueRef) (*interfaces.PullRequest, error)
}

// ValidateSubmissionHandler executes submission validation through the shared
// command handler foundation.
type ValidateSubmissionHandler struct {
	inner *commands.Handler[ValidateSubmissionCommand]
}

// NewValidateSubmissionHandler creates a handler bound to the supplied
// gatekeeper.
func NewValidateSubmissionHandler(validator SubmissionValidator, logger interfaces.Logger, opts ...commands.HandlerOption[ValidateSubmissionCommand]) *ValidateSubmissionHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ValidateSubmissionCommand) error {
		return validator.Run(ctx, msg.Ref())
	}

	handlerOpts := []commands.HandlerOption[ValidateSubmissionCommand]{
		commands.WithLogger[ValidateSubmissionCommand](baseLogger),
		commands.WithOperation[ValidateSubmissionCommand](validateOperation),
		commands.WithMessageFields(func(msg ValidateSubmissionCommand) map[string]any {
			return map[string]any{
				"repository":   msg.Owner + "/" + msg.Repo,
				"issue_number": msg.IssueNumber,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ValidateSubmissionCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ValidateSubmissionHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ValidateSubmissionCommand].
func (h *ValidateSubmissionHandler) Execute(ctx context.Context, msg ValidateSubmissionCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ImportSubmissionHandler executes submission import through the shared
// command handler foundation.
type ImportSubmissionHandler struct {
	inner *commands.Handler[ImportSubmissionCommand]
}

// NewImportSubmissionHandler creates a handler bound to the supplied
// publisher.
func NewImportSubmissionHandler(importer SubmissionImporter, logger interfaces.Logger, opts ...commands.HandlerOption[ImportSubmissionCommand]) *ImportSubmissionHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ImportSubmissionCommand) error {
		pr, err := importer.Publish(ctx, msg.Ref())
		if err != nil {
			return err
		}
		if pr != nil {
			logging.WithFields(baseLogger, map[string]any{
				"pr_number": pr.Number,
				"pr_url":    pr.HTMLURL,
			}).Info("submission.command.import.completed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ImportSubmissionCommand]{
		commands.WithLogger[ImportSubmissionCommand](baseLogger),
		commands.WithOperation[ImportSubmissionCommand](importOperation),
		commands.WithMessageFields(func(msg ImportSubmissionCommand) map[string]any {
			fields := map[string]any{
				"repository":   msg.Owner + "/" + msg.Repo,
				"issue_number": msg.IssueNumber,
			}
			if msg.BaseBranch != "" {
				fields["base_branch"] = msg.BaseBranch
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ImportSubmissionCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportSubmissionHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ImportSubmissionCommand].
func (h *ImportSubmissionHandler) Execute(ctx context.Context, msg ImportSubmissionCommand) error {
	return h.inner.Execute(ctx, msg)
}
