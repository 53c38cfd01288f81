package runtimeconfig

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-blog-intake/internal/policy"
)

type rawConfig struct {
	Token          string `long:"token" env:"GITHUB_TOKEN" description:"GitHub API token" required:"true"`
	Repository     string `long:"repository" env:"GITHUB_REPOSITORY" description:"Target repository as owner/repo" required:"true"`
	IssueNumber    int    `long:"issue" env:"ISSUE_NUMBER" description:"Submission issue number" required:"true"`
	BaseBranch     string `long:"base-branch" env:"BASE_BRANCH" default:"main" description:"Pull request target branch"`
	PolicyFile     string `long:"policy-file" env:"POLICY_FILE" description:"Optional YAML file overriding validation policy values"`
	LogLevel       string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"Log level (trace, debug, info, warn, error)"`
	LogFormat      string `long:"log-format" env:"LOG_FORMAT" default:"text" description:"Log format (text, json)"`
	ProbeTimeout   int    `long:"probe-timeout" env:"PROBE_TIMEOUT" default:"5" description:"Image metadata probe timeout in seconds"`
	FetchTimeout   int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Image fetch timeout in seconds"`
	CommandTimeout int    `long:"command-timeout" env:"COMMAND_TIMEOUT" default:"300" description:"Overall command timeout in seconds"`
}

// policyFile is the YAML shape of the optional policy override. Absent keys
// keep their defaults.
type policyFile struct {
	Subjects                []string `yaml:"subjects"`
	MaxBodyBytes            *int     `yaml:"maxBodyBytes"`
	MaxInlineImages         *int     `yaml:"maxInlineImages"`
	MaxImageBytes           *int64   `yaml:"maxImageBytes"`
	MaxOpenValidSubmissions *int     `yaml:"maxOpenValidSubmissions"`
	MaxInvalidSubmissions   *int     `yaml:"maxInvalidSubmissions"`
	AssetURLPattern         string   `yaml:"assetUrlPattern"`
}

// Load parses args into a Config and returns any remaining positional
// arguments, which the CLI treats as the subcommand. A nil Config with a nil
// error means help output was requested.
func Load(args []string) (*Config, []string, error) {
	var raw rawConfig

	parser := flags.NewParser(&raw, flags.HelpFlag|flags.PassDoubleDash)
	rest, err := parser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, flagsErr.Message)
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("parse configuration: %w", err)
	}

	owner, repo, ok := strings.Cut(raw.Repository, "/")
	if !ok || owner == "" || repo == "" {
		return nil, nil, fmt.Errorf("%w: %q", ErrRepositoryInvalid, raw.Repository)
	}

	pol, err := loadPolicy(raw.PolicyFile)
	if err != nil {
		return nil, nil, err
	}

	cfg := &Config{
		Token:       raw.Token,
		Owner:       owner,
		Repo:        repo,
		IssueNumber: raw.IssueNumber,
		BaseBranch:  raw.BaseBranch,
		Logging: LoggingConfig{
			Level:  strings.ToLower(raw.LogLevel),
			Format: strings.ToLower(raw.LogFormat),
		},
		Timeouts: TimeoutConfig{
			Probe:   time.Duration(raw.ProbeTimeout) * time.Second,
			Fetch:   time.Duration(raw.FetchTimeout) * time.Second,
			Command: time.Duration(raw.CommandTimeout) * time.Second,
		},
		Policy: pol,
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}

// loadPolicy starts from the default policy and applies overrides from path
// when one is configured.
func loadPolicy(path string) (policy.Policy, error) {
	pol := policy.Default()
	if path == "" {
		return pol, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return policy.Policy{}, fmt.Errorf("%w: %v", ErrPolicyFileInvalid, err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return policy.Policy{}, fmt.Errorf("%w: %v", ErrPolicyFileInvalid, err)
	}

	if len(file.Subjects) > 0 {
		pol.Subjects = file.Subjects
	}
	if file.MaxBodyBytes != nil && *file.MaxBodyBytes > 0 {
		pol.MaxBodyBytes = *file.MaxBodyBytes
	}
	if file.MaxInlineImages != nil && *file.MaxInlineImages >= 0 {
		pol.MaxInlineImages = *file.MaxInlineImages
	}
	if file.MaxImageBytes != nil && *file.MaxImageBytes > 0 {
		pol.MaxImageBytes = *file.MaxImageBytes
	}
	if file.MaxOpenValidSubmissions != nil && *file.MaxOpenValidSubmissions > 0 {
		pol.MaxOpenValidSubmissions = *file.MaxOpenValidSubmissions
	}
	if file.MaxInvalidSubmissions != nil && *file.MaxInvalidSubmissions > 0 {
		pol.MaxInvalidSubmissions = *file.MaxInvalidSubmissions
	}
	if file.AssetURLPattern != "" {
		pattern, err := regexp.Compile(file.AssetURLPattern)
		if err != nil {
			return policy.Policy{}, fmt.Errorf("%w: assetUrlPattern: %v", ErrPolicyFileInvalid, err)
		}
		pol.AssetURLPattern = pattern
	}
	return pol, nil
}
