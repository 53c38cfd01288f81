package gatekeeper

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-blog-intake/internal/form"
	"github.com/goliatone/go-blog-intake/internal/logging"
	"github.com/goliatone/go-blog-intake/internal/policy"
	"github.com/goliatone/go-blog-intake/internal/remote"
	"github.com/goliatone/go-blog-intake/pkg/interfaces"
)

// prNoticePattern matches the comment the publisher posts once a submission
// has been converted into a pull request. Finding one means the issue is
// already handled and re-runs must not mutate it again.
var prNoticePattern = regexp.MustCompile(`converted into \[PR #(\d+)\]`)

const issueStateClosed = "closed"

// ImageChecker reports whether a remote URL resolves to an acceptable image.
type ImageChecker interface {
	IsAcceptableImage(ctx context.Context, url string) bool
}

// Config wires the gatekeeper dependencies. Tracker is required; the other
// collaborators default to implementations built from Policy.
type Config struct {
	Policy    policy.Policy
	Tracker   interfaces.TrackerClient
	Parser    *form.Parser
	Validator *policy.Validator
	Checker   ImageChecker
	Logger    interfaces.Logger
}

// Gatekeeper drives a submission issue through validation: lock, duplicate
// and quota checks, parse, local policy checks, remote image checks, then
// labels and comments reflecting the outcome. The issue's labels and lock
// are the only state it reads or writes across runs.
type Gatekeeper struct {
	policy    policy.Policy
	tracker   interfaces.TrackerClient
	parser    *form.Parser
	validator *policy.Validator
	checker   ImageChecker
	logger    interfaces.Logger
}

// NewGatekeeper builds a gatekeeper from the supplied configuration.
func NewGatekeeper(cfg Config) *Gatekeeper {
	pol := cfg.Policy
	if pol.MaxBodyBytes == 0 {
		pol = policy.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	parser := cfg.Parser
	if parser == nil {
		parser = form.NewParser(form.Config{Policy: pol, Logger: logger})
	}
	validator := cfg.Validator
	if validator == nil {
		validator = policy.NewValidator(pol, logger)
	}
	checker := cfg.Checker
	if checker == nil {
		checker = remote.NewChecker(remote.Config{Policy: pol, Logger: logger})
	}
	return &Gatekeeper{
		policy:    pol,
		tracker:   cfg.Tracker,
		parser:    parser,
		validator: validator,
		checker:   checker,
		logger:    logger,
	}
}

// Run validates the submission issue and records the outcome on the issue
// itself. A nil return means the issue is either validated and locked for
// import, or was already handled. Any rejection posts feedback first and
// then returns a categorised error.
func (g *Gatekeeper) Run(ctx context.Context, ref interfaces.IssueRef) error {
	issues := g.tracker.Issues()

	issue, err := issues.Get(ctx, ref)
	if err != nil {
		return wrapTrackerError(err, "get issue")
	}

	log := logging.WithIssueContext(g.logger, ref.Owner+"/"+ref.Repo, ref.Number, "validate")

	if issue.State == issueStateClosed {
		log.Info("gatekeeper.skip.closed")
		return nil
	}
	if issue.HasLabel(interfaces.LabelValidSubmission) {
		log.Info("gatekeeper.skip.already_valid")
		return nil
	}

	// Advisory lock: freezes the body against mid-validation edits.
	if !issue.Locked {
		if err := issues.Lock(ctx, ref, ""); err != nil {
			return wrapTrackerError(err, "lock issue")
		}
	}

	handled, err := g.alreadyConverted(ctx, ref, log)
	if err != nil {
		return err
	}
	if handled {
		return nil
	}

	if errs := g.structuralBounds(issue); len(errs) > 0 {
		return g.reject(ctx, ref, issue, log, errs, policyViolation(errs))
	}

	reason, err := g.overQuota(ctx, ref, issue)
	if err != nil {
		return err
	}
	if reason != "" {
		return g.reject(ctx, ref, issue, log, []string{reason}, quotaExceeded(reason))
	}

	sub, err := g.parser.Parse(issue)
	if err != nil {
		msg := "Unable to parse your submission. Please ensure it includes valid frontmatter and Markdown."
		if form.IsOversize(err) {
			msg = fmt.Sprintf("Submission is too large: the body must stay under %d characters.", g.policy.MaxBodyBytes)
		}
		return g.reject(ctx, ref, issue, log, []string{msg}, err)
	}

	localRes := g.validator.ValidateFrontMatter(sub.FrontMatter).
		Merge(g.validator.ValidateBody(sub.Body))
	if !localRes.Valid {
		return g.reject(ctx, ref, issue, log, localRes.Errors, policyViolation(localRes.Errors))
	}

	// Remote checks run only for structurally sound submissions so malformed
	// input never triggers network traffic.
	if errs := g.checkRemoteImages(ctx, sub); len(errs) > 0 {
		return g.reject(ctx, ref, issue, log, errs, remoteCheckFailure(errs))
	}

	return g.accept(ctx, ref, issue, log)
}

// alreadyConverted scans issue comments for a publisher notice referencing a
// pull request that is still open or was merged. Such an issue is fully
// handled; re-runs exit without touching it.
func (g *Gatekeeper) alreadyConverted(ctx context.Context, ref interfaces.IssueRef, log interfaces.Logger) (bool, error) {
	comments, err := g.tracker.Issues().ListComments(ctx, ref)
	if err != nil {
		return false, wrapTrackerError(err, "list comments")
	}
	for _, comment := range comments {
		match := prNoticePattern.FindStringSubmatch(comment.Body)
		if match == nil {
			continue
		}
		number, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		pr, err := g.tracker.PullRequests().Get(ctx, ref.RepoRef, number)
		if err != nil {
			log.Warn("gatekeeper.duplicate_check.lookup_failed", "pr_number", number, "error", err)
			continue
		}
		if pr.State == "open" || pr.Merged {
			log.Info("gatekeeper.skip.already_converted", "pr_number", number)
			return true, nil
		}
	}
	return false, nil
}

// structuralBounds applies two cheap guards before any token-level parsing:
// total body size and a generous bound on raw image markers.
func (g *Gatekeeper) structuralBounds(issue *interfaces.Issue) []string {
	var errs []string
	if len(issue.Body) > g.policy.MaxBodyBytes {
		errs = append(errs, fmt.Sprintf("Submission is too large: the body must stay under %d characters.", g.policy.MaxBodyBytes))
	}
	if n := strings.Count(issue.Body, "!["); n > g.policy.RawImageRefsBound {
		errs = append(errs, fmt.Sprintf("Too many image references: found %d, max allowed is %d.", n, g.policy.RawImageRefsBound))
	}
	return errs
}

// overQuota counts the submitter's other open submission issues and returns
// a rejection reason when either per-user cap is reached.
func (g *Gatekeeper) overQuota(ctx context.Context, ref interfaces.IssueRef, issue *interfaces.Issue) (string, error) {
	open, err := g.tracker.Issues().ListOpenByCreator(ctx, ref.RepoRef, issue.Author)
	if err != nil {
		return "", wrapTrackerError(err, "list issues by creator")
	}

	var valid, invalid int
	for _, other := range open {
		if other.Number == issue.Number || !other.HasLabel(interfaces.LabelBlogSubmission) {
			continue
		}
		if other.HasLabel(interfaces.LabelValidSubmission) {
			valid++
		}
		if other.HasLabel(interfaces.LabelInvalid) {
			invalid++
		}
	}

	if valid >= g.policy.MaxOpenValidSubmissions {
		return fmt.Sprintf("You have reached the limit of %d submissions under review. Please wait until they are resolved.", g.policy.MaxOpenValidSubmissions), nil
	}
	if invalid >= g.policy.MaxInvalidSubmissions {
		return fmt.Sprintf("You have reached the limit of %d invalid submissions. Please review the feedback and correct your submissions.", g.policy.MaxInvalidSubmissions), nil
	}
	return "", nil
}

// checkRemoteImages probes the featured image first, then each distinct
// inline URL that was not already checked. Dedup keys on the canonical raw
// form so the same asset with and without ?raw=true is probed once.
func (g *Gatekeeper) checkRemoteImages(ctx context.Context, sub *interfaces.Submission) []string {
	var errs []string

	featured := sub.FrontMatter.FeaturedImage
	if !g.checker.IsAcceptableImage(ctx, featured) {
		errs = append(errs, "Featured Image URL did not return image Content-Type")
	}

	seen := map[string]bool{remote.RawURL(featured): true}
	for _, img := range g.validator.InlineImages(sub.Body) {
		key := remote.RawURL(img.URL)
		if seen[key] {
			continue
		}
		seen[key] = true
		if !g.checker.IsAcceptableImage(ctx, img.URL) {
			errs = append(errs, fmt.Sprintf("Inline image URL is not an image: %s", img.URL))
		}
	}
	return errs
}

// reject posts feedback and updates labels, then returns cause. The sequence
// is unlock, drop any stale valid marker, mark invalid, comment the ordered
// error list. Mutation failures are logged but never mask the rejection.
func (g *Gatekeeper) reject(ctx context.Context, ref interfaces.IssueRef, issue *interfaces.Issue, log interfaces.Logger, errs []string, cause error) error {
	issues := g.tracker.Issues()

	if err := issues.Unlock(ctx, ref); err != nil {
		log.Warn("gatekeeper.reject.unlock_failed", "error", err)
	}
	if issue.HasLabel(interfaces.LabelValidSubmission) {
		if err := issues.RemoveLabel(ctx, ref, interfaces.LabelValidSubmission); err != nil {
			log.Warn("gatekeeper.reject.remove_label_failed", "error", err)
		}
	}
	if err := issues.AddLabels(ctx, ref, interfaces.LabelInvalid); err != nil {
		log.Warn("gatekeeper.reject.add_label_failed", "error", err)
	}

	body := "❌ Submission validation failed:\n\n- " + strings.Join(errs, "\n- ")
	if err := issues.CreateComment(ctx, ref, body); err != nil {
		log.Warn("gatekeeper.reject.comment_failed", "error", err)
	}

	log.Info("gatekeeper.rejected", "error_count", len(errs))
	return cause
}

// accept records a passed validation: drop a stale invalid marker, comment,
// mark valid. The issue stays locked so the validated content cannot change
// before import.
func (g *Gatekeeper) accept(ctx context.Context, ref interfaces.IssueRef, issue *interfaces.Issue, log interfaces.Logger) error {
	issues := g.tracker.Issues()

	if issue.HasLabel(interfaces.LabelInvalid) {
		if err := issues.RemoveLabel(ctx, ref, interfaces.LabelInvalid); err != nil {
			return wrapTrackerError(err, "remove invalid label")
		}
	}
	body := "✅ Your submission has passed initial validation and is under review."
	if err := issues.CreateComment(ctx, ref, body); err != nil {
		return wrapTrackerError(err, "create comment")
	}
	if err := issues.AddLabels(ctx, ref, interfaces.LabelValidSubmission); err != nil {
		return wrapTrackerError(err, "add valid label")
	}

	log.Info("gatekeeper.accepted")
	return nil
}
