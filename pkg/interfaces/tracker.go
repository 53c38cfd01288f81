package interfaces

import (
	"context"
	"errors"
)

// ErrRefNotFound reports that a requested git ref does not exist. Tracker
// implementations must return an error matching this sentinel so callers can
// distinguish "create branch" from "reset branch".
var ErrRefNotFound = errors.New("tracker: ref not found")

// RepoRef identifies a repository on the tracker.
type RepoRef struct {
	Owner string
	Repo  string
}

// IssueRef identifies a single issue.
type IssueRef struct {
	RepoRef
	Number int
}

// Issue is the tracker-owned state read at the start of every run.
type Issue struct {
	Number int
	Title  string
	Body   string
	State  string
	Locked bool
	Author string
	Labels []string
}

// HasLabel reports whether the issue carries the named label.
func (i *Issue) HasLabel(name string) bool {
	for _, label := range i.Labels {
		if label == name {
			return true
		}
	}
	return false
}

// Comment is a single issue comment.
type Comment struct {
	ID     int64
	Author string
	Body   string
}

// PullRequest describes a pull request on the tracker.
type PullRequest struct {
	Number  int
	HTMLURL string
	State   string
	Merged  bool
}

// PullRequestInput carries the fields needed to open a pull request.
type PullRequestInput struct {
	Title string
	Head  string
	Base  string
	Body  string
}

// TreeBlobRef pairs a path inside the publish tree with an uploaded blob.
type TreeBlobRef struct {
	Path string
	SHA  string
}

// IssueService is the remote mutation API for issue lifecycle state. It is a
// thin wrapper contract: implementations translate calls one-to-one onto the
// tracker and perform no business logic.
type IssueService interface {
	Get(ctx context.Context, ref IssueRef) (*Issue, error)
	ListOpenByCreator(ctx context.Context, repo RepoRef, creator string) ([]*Issue, error)
	ListComments(ctx context.Context, ref IssueRef) ([]*Comment, error)
	CreateComment(ctx context.Context, ref IssueRef, body string) error
	AddLabels(ctx context.Context, ref IssueRef, labels ...string) error
	RemoveLabel(ctx context.Context, ref IssueRef, label string) error
	Lock(ctx context.Context, ref IssueRef, reason string) error
	Unlock(ctx context.Context, ref IssueRef) error
	Close(ctx context.Context, ref IssueRef) error
}

// PullRequestService exposes the pull-request operations the pipeline needs.
type PullRequestService interface {
	Get(ctx context.Context, repo RepoRef, number int) (*PullRequest, error)
	Create(ctx context.Context, repo RepoRef, input PullRequestInput) (*PullRequest, error)
}

// GitService exposes the low-level git data API used to build the single
// atomic publish commit.
type GitService interface {
	DefaultBranch(ctx context.Context, repo RepoRef) (string, error)
	// BranchHead returns the commit SHA a branch points at, or an error
	// matching ErrRefNotFound when the branch does not exist.
	BranchHead(ctx context.Context, repo RepoRef, branch string) (string, error)
	CreateBranch(ctx context.Context, repo RepoRef, branch, sha string) error
	// ResetBranch force-moves an existing branch, discarding whatever a
	// prior failed publish left behind.
	ResetBranch(ctx context.Context, repo RepoRef, branch, sha string) error
	CommitTreeSHA(ctx context.Context, repo RepoRef, commitSHA string) (string, error)
	CreateBlob(ctx context.Context, repo RepoRef, content []byte) (string, error)
	CreateTree(ctx context.Context, repo RepoRef, baseTreeSHA string, blobs []TreeBlobRef) (string, error)
	CreateCommit(ctx context.Context, repo RepoRef, message, treeSHA, parentSHA string) (string, error)
}

// TrackerClient bundles the tracker contracts consumed by the pipeline.
// Constructor-injected everywhere so tests can substitute fakes.
type TrackerClient interface {
	Issues() IssueService
	PullRequests() PullRequestService
	Git() GitService
}
