package publisher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/goliatone/go-blog-intake/internal/form"
	"github.com/goliatone/go-blog-intake/internal/logging"
	"github.com/goliatone/go-blog-intake/internal/policy"
	"github.com/goliatone/go-blog-intake/internal/remote"
	"github.com/goliatone/go-blog-intake/pkg/interfaces"
)

const lockReasonResolved = "resolved"

// Config wires the publisher dependencies. Tracker is required; the rest
// default to implementations built from Policy. Now exists so tests can pin
// the publish date.
type Config struct {
	Policy       policy.Policy
	Tracker      interfaces.TrackerClient
	Parser       *form.Parser
	Validator    *policy.Validator
	HTTPClient   *http.Client
	FetchTimeout time.Duration
	BaseBranch   string
	Now          func() time.Time
	Logger       interfaces.Logger
}

// Publisher turns a validated submission issue into a pull request: it
// re-parses the issue, fetches and re-encodes every referenced image, builds
// one atomic commit on a dedicated branch and opens the PR. The issue's
// labels, comments and lock record the outcome either way.
type Publisher struct {
	policy       policy.Policy
	tracker      interfaces.TrackerClient
	parser       *form.Parser
	validator    *policy.Validator
	client       *http.Client
	fetchTimeout time.Duration
	baseBranch   string
	now          func() time.Time
	logger       interfaces.Logger
}

// NewPublisher builds a publisher from the supplied configuration.
func NewPublisher(cfg Config) *Publisher {
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
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Publisher{
		policy:       pol,
		tracker:      cfg.Tracker,
		parser:       parser,
		validator:    validator,
		client:       cfg.HTTPClient,
		fetchTimeout: cfg.FetchTimeout,
		baseBranch:   cfg.BaseBranch,
		now:          now,
		logger:       logger,
	}
}

// Publish imports the submission issue and returns the created pull request.
// An issue whose submission flag is false is skipped without any mutation.
// On failure the issue receives a failure comment and the import-failed
// label before the categorised error is returned.
func (p *Publisher) Publish(ctx context.Context, ref interfaces.IssueRef) (*interfaces.PullRequest, error) {
	issue, err := p.tracker.Issues().Get(ctx, ref)
	if err != nil {
		return nil, wrapPublishError(err)
	}

	log := logging.WithIssueContext(p.logger, ref.Owner+"/"+ref.Repo, ref.Number, "import")

	sub, err := p.parser.Parse(issue)
	if err != nil {
		return nil, p.fail(ctx, ref, log, err)
	}
	if !sub.FrontMatter.Submission {
		log.Warn("publisher.skip.not_flagged")
		return nil, nil
	}

	plan, err := p.buildPlan(ctx, sub)
	if err != nil {
		return nil, p.fail(ctx, ref, log, err)
	}

	pr, err := p.commitAndOpen(ctx, ref, issue, sub, plan)
	if err != nil {
		return nil, p.fail(ctx, ref, log, err)
	}

	if err := p.finish(ctx, ref, issue, pr, log); err != nil {
		return nil, p.fail(ctx, ref, log, err)
	}

	log.Info("publisher.imported", "pr_number", pr.Number, "branch", plan.BranchName, "post_dir", plan.PostDir)
	return pr, nil
}

// buildPlan makes every deterministic decision for this run and resolves all
// referenced images into tree entries. The returned plan is complete; the
// git flow only uploads it.
func (p *Publisher) buildPlan(ctx context.Context, sub *interfaces.Submission) (*interfaces.PublishPlan, error) {
	now := p.now().UTC()
	publishDate := now.Format(dateLayout)
	slugValue := slugFor(sub.FrontMatter.Title, now)

	postDir := postDirFor(publishDate, slugValue)
	imageDir := path.Join(postDir, imagesDirName)
	if hasTraversal(postDir) || hasTraversal(imageDir) {
		return nil, fmt.Errorf("unsafe post directory: %s", postDir)
	}

	proc := newImageProcessor(p.client, p.fetchTimeout, p.policy.MaxImageBytes)
	body := sub.Body
	var entries []interfaces.TreeEntry

	// One asset referenced under several URL spellings resolves to a single
	// fetched file, keyed by the canonical raw form.
	localNames := map[string]string{}
	resolveOnce := func(rawURL string) (string, error) {
		key := remote.RawURL(rawURL)
		if name, ok := localNames[key]; ok {
			return name, nil
		}
		data, filename, err := proc.resolve(ctx, rawURL)
		if err != nil {
			return "", err
		}
		entries = append(entries, interfaces.TreeEntry{Path: path.Join(imageDir, filename), Content: data})
		localNames[key] = filename
		return filename, nil
	}

	for _, img := range p.validator.InlineImages(sub.Body) {
		if !p.policy.TrustedAssetURL(img.URL) {
			return nil, fmt.Errorf("invalid inline image URL: %s", img.URL)
		}
		filename, err := resolveOnce(img.URL)
		if err != nil {
			return nil, err
		}
		body = strings.ReplaceAll(body, img.URL, "./"+imagesDirName+"/"+filename)
	}

	featured := sub.FrontMatter.FeaturedImage
	if !p.policy.TrustedAssetURL(featured) {
		return nil, fmt.Errorf("invalid featured image URL: %s", featured)
	}
	filename, err := resolveOnce(featured)
	if err != nil {
		return nil, err
	}
	featuredPath := "./" + imagesDirName + "/" + filename

	post := renderPost(sub.FrontMatter, featuredPath, publishDate, body)
	entries = append(entries, interfaces.TreeEntry{Path: path.Join(postDir, postFileName), Content: post})

	return &interfaces.PublishPlan{
		BranchName:    branchFor(sub.IssueNumber, slugValue),
		PostDir:       postDir,
		ImageDir:      imageDir,
		CommitMessage: fmt.Sprintf("Add blog submission from issue #%d", sub.IssueNumber),
		Entries:       entries,
	}, nil
}

// commitAndOpen uploads the plan as blobs, builds one tree and one commit on
// the submission branch, then opens the pull request. An existing branch is
// force-reset to the base tip first, which is what makes re-runs after a
// failed publish safe.
func (p *Publisher) commitAndOpen(ctx context.Context, ref interfaces.IssueRef, issue *interfaces.Issue, sub *interfaces.Submission, plan *interfaces.PublishPlan) (*interfaces.PullRequest, error) {
	git := p.tracker.Git()
	repo := ref.RepoRef

	base := p.baseBranch
	if base == "" {
		resolved, err := git.DefaultBranch(ctx, repo)
		if err != nil {
			return nil, fmt.Errorf("resolve default branch: %w", err)
		}
		base = resolved
	}

	baseSHA, err := git.BranchHead(ctx, repo, base)
	if err != nil {
		return nil, fmt.Errorf("resolve base branch %s: %w", base, err)
	}

	if _, err := git.BranchHead(ctx, repo, plan.BranchName); err != nil {
		if !errors.Is(err, interfaces.ErrRefNotFound) {
			return nil, fmt.Errorf("resolve branch %s: %w", plan.BranchName, err)
		}
		if err := git.CreateBranch(ctx, repo, plan.BranchName, baseSHA); err != nil {
			return nil, fmt.Errorf("create branch %s: %w", plan.BranchName, err)
		}
	} else if err := git.ResetBranch(ctx, repo, plan.BranchName, baseSHA); err != nil {
		return nil, fmt.Errorf("reset branch %s: %w", plan.BranchName, err)
	}

	baseTree, err := git.CommitTreeSHA(ctx, repo, baseSHA)
	if err != nil {
		return nil, fmt.Errorf("resolve base tree: %w", err)
	}

	blobs := make([]interfaces.TreeBlobRef, 0, len(plan.Entries))
	for _, entry := range plan.Entries {
		sha, err := git.CreateBlob(ctx, repo, entry.Content)
		if err != nil {
			return nil, fmt.Errorf("create blob %s: %w", entry.Path, err)
		}
		blobs = append(blobs, interfaces.TreeBlobRef{Path: entry.Path, SHA: sha})
	}

	treeSHA, err := git.CreateTree(ctx, repo, baseTree, blobs)
	if err != nil {
		return nil, fmt.Errorf("create tree: %w", err)
	}
	commitSHA, err := git.CreateCommit(ctx, repo, plan.CommitMessage, treeSHA, baseSHA)
	if err != nil {
		return nil, fmt.Errorf("create commit: %w", err)
	}
	if err := git.ResetBranch(ctx, repo, plan.BranchName, commitSHA); err != nil {
		return nil, fmt.Errorf("advance branch %s: %w", plan.BranchName, err)
	}

	pr, err := p.tracker.PullRequests().Create(ctx, repo, interfaces.PullRequestInput{
		Title: fmt.Sprintf("Blog Submission from @%s — “%s”", issue.Author, sub.FrontMatter.Title),
		Head:  plan.BranchName,
		Base:  base,
		Body: fmt.Sprintf(
			"This blog post was submitted via [issue #%d](https://github.com/%s/%s/issues/%d).\n\nPlease review the content and approve if ready to merge.",
			ref.Number, repo.Owner, repo.Repo, ref.Number,
		),
	})
	if err != nil {
		return nil, fmt.Errorf("create pull request: %w", err)
	}
	return pr, nil
}

// finish records a successful import on the issue: unlock so label and
// comment mutations are allowed, link the PR, relabel, then close and lock
// the resolved issue.
func (p *Publisher) finish(ctx context.Context, ref interfaces.IssueRef, issue *interfaces.Issue, pr *interfaces.PullRequest, log interfaces.Logger) error {
	issues := p.tracker.Issues()

	if issue.Locked {
		if err := issues.Unlock(ctx, ref); err != nil {
			return fmt.Errorf("unlock issue: %w", err)
		}
	}

	body := fmt.Sprintf(
		"✅ Submission has been converted into [PR #%d](%s).\n\nThis issue is now closed and locked. Please follow further discussion in the PR.",
		pr.Number, pr.HTMLURL,
	)
	if err := issues.CreateComment(ctx, ref, body); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	if err := issues.AddLabels(ctx, ref, interfaces.LabelImported); err != nil {
		return fmt.Errorf("add imported label: %w", err)
	}
	if issue.HasLabel(interfaces.LabelImportFailed) {
		if err := issues.RemoveLabel(ctx, ref, interfaces.LabelImportFailed); err != nil {
			log.Warn("publisher.finish.remove_label_failed", "error", err)
		}
	}
	if err := issues.Close(ctx, ref); err != nil {
		return fmt.Errorf("close issue: %w", err)
	}
	if err := issues.Lock(ctx, ref, lockReasonResolved); err != nil {
		return fmt.Errorf("lock issue: %w", err)
	}
	return nil
}

// fail posts feedback for a failed import and returns the categorised error.
// The sequence is unlock, comment the failure, label import-failed, re-lock.
// Cleanup steps are best effort and never mask the original failure.
func (p *Publisher) fail(ctx context.Context, ref interfaces.IssueRef, log interfaces.Logger, cause error) error {
	issues := p.tracker.Issues()

	if err := issues.Unlock(ctx, ref); err != nil {
		log.Warn("publisher.fail.unlock_failed", "error", err)
	}
	if err := issues.CreateComment(ctx, ref, fmt.Sprintf("❌ Import failed: %v", cause)); err != nil {
		log.Warn("publisher.fail.comment_failed", "error", err)
	}
	if err := issues.AddLabels(ctx, ref, interfaces.LabelImportFailed); err != nil {
		log.Warn("publisher.fail.add_label_failed", "error", err)
	}
	if err := issues.Lock(ctx, ref, ""); err != nil {
		log.Warn("publisher.fail.relock_failed", "error", err)
	}

	log.Error("publisher.failed", "error", cause)
	return wrapPublishError(cause)
}
