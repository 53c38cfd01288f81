// Package github adapts the GitHub REST and git-data APIs to the tracker
// contracts in pkg/interfaces. It is a thin translation layer: every method
// maps one-to-one onto an API call and carries no business logic.
package github

import (
	"errors"
	"net/http"

	gh "github.com/google/go-github/v68/github"

	"github.com/goliatone/go-blog-intake/internal/logging"
	"github.com/goliatone/go-blog-intake/pkg/interfaces"
)

// Config wires the adapter. Token authenticates every call; HTTPClient is
// optional and mostly useful for pointing tests at a local server.
type Config struct {
	Token      string
	HTTPClient *http.Client
	Logger     interfaces.Logger
}

// Client bundles the tracker service adapters around one authenticated
// GitHub client.
type Client struct {
	issues *issueService
	prs    *pullRequestService
	git    *gitService
}

// NewClient builds an authenticated tracker client.
func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	api := gh.NewClient(cfg.HTTPClient)
	if cfg.Token != "" {
		api = api.WithAuthToken(cfg.Token)
	}
	return &Client{
		issues: &issueService{api: api, logger: logger},
		prs:    &pullRequestService{api: api},
		git:    &gitService{api: api},
	}
}

// Issues returns the issue lifecycle adapter.
func (c *Client) Issues() interfaces.IssueService { return c.issues }

// PullRequests returns the pull-request adapter.
func (c *Client) PullRequests() interfaces.PullRequestService { return c.prs }

// Git returns the git-data adapter.
func (c *Client) Git() interfaces.GitService { return c.git }

var _ interfaces.TrackerClient = (*Client)(nil)

// asRefNotFound rewrites 404 responses into the sentinel callers branch on.
func asRefNotFound(err error) error {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
		return interfaces.ErrRefNotFound
	}
	return err
}
