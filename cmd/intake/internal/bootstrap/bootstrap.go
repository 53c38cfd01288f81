// Package bootstrap assembles the intake pipeline from resolved runtime
// configuration, shared by the validate and import entry points.
package bootstrap

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-blog-intake/internal/form"
	"github.com/goliatone/go-blog-intake/internal/gatekeeper"
	"github.com/goliatone/go-blog-intake/internal/github"
	"github.com/goliatone/go-blog-intake/internal/logging"
	"github.com/goliatone/go-blog-intake/internal/logging/console"
	"github.com/goliatone/go-blog-intake/internal/logging/gologger"
	"github.com/goliatone/go-blog-intake/internal/policy"
	"github.com/goliatone/go-blog-intake/internal/publisher"
	"github.com/goliatone/go-blog-intake/internal/remote"
	"github.com/goliatone/go-blog-intake/internal/runtimeconfig"
	"github.com/goliatone/go-blog-intake/pkg/interfaces"
)

// Module bundles the wired pipeline components one CLI run operates on.
type Module struct {
	Config     *runtimeconfig.Config
	Logger     interfaces.Logger
	Tracker    interfaces.TrackerClient
	Gatekeeper *gatekeeper.Gatekeeper
	Publisher  *publisher.Publisher
}

// BuildModule wires the tracker client, validators and pipeline services
// from the supplied configuration. Every run gets a fresh correlation id.
func BuildModule(cfg *runtimeconfig.Config) (*Module, error) {
	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	rootLogger := logging.WithFields(
		logging.ModuleLogger(provider, "intake"),
		map[string]any{"run_id": uuid.NewString()},
	)

	tracker := github.NewClient(github.Config{
		Token:  cfg.Token,
		Logger: rootLogger,
	})

	parser := form.NewParser(form.Config{
		Policy: cfg.Policy,
		Logger: logging.FormLogger(provider),
	})
	validator := policy.NewValidator(cfg.Policy, logging.PolicyLogger(provider))
	checker := remote.NewChecker(remote.Config{
		Policy:       cfg.Policy,
		ProbeTimeout: cfg.Timeouts.Probe,
		FetchTimeout: cfg.Timeouts.Fetch,
		Logger:       logging.RemoteLogger(provider),
	})

	gk := gatekeeper.NewGatekeeper(gatekeeper.Config{
		Policy:    cfg.Policy,
		Tracker:   tracker,
		Parser:    parser,
		Validator: validator,
		Checker:   checker,
		Logger:    logging.GatekeeperLogger(provider),
	})
	pub := publisher.NewPublisher(publisher.Config{
		Policy:       cfg.Policy,
		Tracker:      tracker,
		Parser:       parser,
		Validator:    validator,
		FetchTimeout: cfg.Timeouts.Fetch,
		BaseBranch:   cfg.BaseBranch,
		Logger:       logging.PublisherLogger(provider),
	})

	return &Module{
		Config:     cfg,
		Logger:     rootLogger,
		Tracker:    tracker,
		Gatekeeper: gk,
		Publisher:  pub,
	}, nil
}

// buildProvider selects the logger backend for the configured output format.
// The text format uses the plain console provider; json goes through go-logger.
func buildProvider(cfg *runtimeconfig.Config) (interfaces.LoggerProvider, error) {
	if cfg.Logging.Format == "text" {
		level := consoleLevel(cfg.Logging.Level)
		return console.NewProvider(console.Options{MinLevel: &level}), nil
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:  cfg.Logging.Level,
		Format: "json",
	})
	if err != nil {
		return nil, err
	}
	return provider, nil
}

func consoleLevel(level string) console.Level {
	switch level {
	case "trace":
		return console.LevelTrace
	case "debug":
		return console.LevelDebug
	case "warn":
		return console.LevelWarn
	case "error":
		return console.LevelError
	default:
		return console.LevelInfo
	}
}
