package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-blog-intake/pkg/interfaces"
)

const (
	rootModule       = "intake"
	formModule       = "intake.form"
	policyModule     = "intake.policy"
	remoteModule     = "intake.remote"
	gatekeeperModule = "intake.gatekeeper"
	publisherModule  = "intake.publisher"
)

const (
	fieldIssueNumber = "issue_number"
	fieldIssueRepo   = "repository"
	fieldStage       = "stage"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// FormLogger returns the logger namespace reserved for the form parser.
func FormLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, formModule)
}

// PolicyLogger returns the logger namespace reserved for policy validation.
func PolicyLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, policyModule)
}

// RemoteLogger returns the logger namespace reserved for remote image checks.
func RemoteLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, remoteModule)
}

// GatekeeperLogger returns the logger namespace reserved for the submission
// gatekeeper.
func GatekeeperLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, gatekeeperModule)
}

// PublisherLogger returns the logger namespace reserved for the publish
// pipeline.
func PublisherLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, publisherModule)
}

// WithIssueContext enriches the provided logger with the issue coordinates and
// pipeline stage. Empty values are ignored.
func WithIssueContext(logger interfaces.Logger, repo string, number int, stage string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(repo); trimmed != "" {
		fields[fieldIssueRepo] = trimmed
	}
	if number > 0 {
		fields[fieldIssueNumber] = number
	}
	if trimmed := strings.TrimSpace(stage); trimmed != "" {
		fields[fieldStage] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
