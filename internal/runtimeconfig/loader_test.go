package runtimeconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func baseArgs(extra ...string) []string {
	args := []string{
		"--token", "test-token",
		"--repository", "acme/blog",
		"--issue", "7",
	}
	return append(args, extra...)
}

func TestLoadResolvesDefaults(t *testing.T) {
	cfg, rest, err := Load(baseArgs("validate"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(rest) != 1 || rest[0] != "validate" {
		t.Fatalf("expected subcommand to survive parsing, got %v", rest)
	}
	if cfg.Owner != "acme" || cfg.Repo != "blog" || cfg.IssueNumber != 7 {
		t.Fatalf("unexpected repository coordinates: %+v", cfg)
	}
	if cfg.BaseBranch != "main" {
		t.Fatalf("expected default base branch, got %q", cfg.BaseBranch)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Timeouts.Probe != 5*time.Second || cfg.Timeouts.Fetch != 30*time.Second {
		t.Fatalf("unexpected timeout defaults: %+v", cfg.Timeouts)
	}
	if cfg.Policy.MaxInlineImages != 2 || cfg.Policy.MaxBodyBytes != 50_000 {
		t.Fatalf("expected default policy, got %+v", cfg.Policy)
	}
}

func TestLoadRejectsMalformedRepository(t *testing.T) {
	_, _, err := Load([]string{
		"--token", "test-token",
		"--repository", "not-a-repo",
		"--issue", "7",
	})
	if !errors.Is(err, ErrRepositoryInvalid) {
		t.Fatalf("expected repository error, got %v", err)
	}
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	_, _, err := Load(baseArgs("--log-level", "verbose"))
	if !errors.Is(err, ErrLogLevelInvalid) {
		t.Fatalf("expected log level error, got %v", err)
	}
}

func TestLoadAppliesPolicyOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yml")
	content := []byte(`subjects:
  - Tutorials
  - Reviews
maxInlineImages: 4
maxOpenValidSubmissions: 1
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write policy file: %v", err)
	}

	cfg, _, err := Load(baseArgs("--policy-file", path))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cfg.Policy.Subjects) != 2 || cfg.Policy.Subjects[0] != "Tutorials" {
		t.Fatalf("unexpected subjects: %v", cfg.Policy.Subjects)
	}
	if cfg.Policy.MaxInlineImages != 4 {
		t.Fatalf("expected inline image override, got %d", cfg.Policy.MaxInlineImages)
	}
	if cfg.Policy.MaxOpenValidSubmissions != 1 {
		t.Fatalf("expected review quota override, got %d", cfg.Policy.MaxOpenValidSubmissions)
	}
	// untouched values keep their defaults
	if cfg.Policy.MaxBodyBytes != 50_000 || cfg.Policy.MaxInvalidSubmissions != 100 {
		t.Fatalf("expected untouched defaults, got %+v", cfg.Policy)
	}
}

func TestLoadRejectsBrokenPolicyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yml")
	if err := os.WriteFile(path, []byte("subjects: [unclosed"), 0o644); err != nil {
		t.Fatalf("write policy file: %v", err)
	}

	_, _, err := Load(baseArgs("--policy-file", path))
	if !errors.Is(err, ErrPolicyFileInvalid) {
		t.Fatalf("expected policy file error, got %v", err)
	}
}
