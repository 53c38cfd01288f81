package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-blog-intake/cmd/intake/internal/bootstrap"
	submissioncmd "github.com/goliatone/go-blog-intake/internal/commands/submission"
	"github.com/goliatone/go-blog-intake/internal/runtimeconfig"
)

func main() {
	if err := runValidate(os.Args[1:]); err != nil {
		log.Fatalf("intake validate: %v", err)
	}
}

func runValidate(args []string) error {
	cfg, _, err := runtimeconfig.Load(args)
	if err != nil {
		return err
	}
	if cfg == nil {
		return nil
	}

	module, err := bootstrap.BuildModule(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Command)
	defer cancel()

	handler := submissioncmd.NewValidateSubmissionHandler(module.Gatekeeper, module.Logger)
	cmd := submissioncmd.ValidateSubmissionCommand{
		Owner:       cfg.Owner,
		Repo:        cfg.Repo,
		IssueNumber: cfg.IssueNumber,
	}
	if err := handler.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("execute validate command: %w", err)
	}
	return nil
}
