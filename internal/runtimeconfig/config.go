// Package runtimeconfig resolves the intake pipeline configuration from
// environment variables, flags and an optional YAML policy override file.
package runtimeconfig

import (
	"errors"
	"time"

	"github.com/goliatone/go-blog-intake/internal/policy"
)

// ErrRepositoryInvalid indicates GITHUB_REPOSITORY is not in owner/repo form.
var ErrRepositoryInvalid = errors.New("intake config: repository must be owner/repo")

// ErrIssueNumberInvalid indicates a missing or non-positive issue number.
var ErrIssueNumberInvalid = errors.New("intake config: issue number must be positive")

// ErrLogLevelInvalid indicates an unsupported log level.
var ErrLogLevelInvalid = errors.New("intake config: log level is invalid")

// ErrLogFormatInvalid indicates an unsupported log format.
var ErrLogFormatInvalid = errors.New("intake config: log format is invalid")

// ErrPolicyFileInvalid indicates the policy override file could not be
// parsed or contains unusable values.
var ErrPolicyFileInvalid = errors.New("intake config: policy file is invalid")

// Config aggregates everything the CLI needs to run one intake command.
type Config struct {
	Token       string
	Owner       string
	Repo        string
	IssueNumber int
	BaseBranch  string
	Logging     LoggingConfig
	Timeouts    TimeoutConfig
	Policy      policy.Policy
}

// LoggingConfig captures log output behaviour.
type LoggingConfig struct {
	Level  string
	Format string
}

// TimeoutConfig bounds every class of network call the pipeline makes.
type TimeoutConfig struct {
	Probe   time.Duration
	Fetch   time.Duration
	Command time.Duration
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

// Validate checks the resolved configuration for values the loader tags
// cannot express.
func (c *Config) Validate() error {
	if c.Owner == "" || c.Repo == "" {
		return ErrRepositoryInvalid
	}
	if c.IssueNumber <= 0 {
		return ErrIssueNumberInvalid
	}
	if !validLogLevels[c.Logging.Level] {
		return ErrLogLevelInvalid
	}
	if !validLogFormats[c.Logging.Format] {
		return ErrLogFormatInvalid
	}
	return nil
}
