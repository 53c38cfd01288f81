package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v68/github"

	"github.com/goliatone/go-blog-intake/pkg/interfaces"
)

type issueService struct {
	api    *gh.Client
	logger interfaces.Logger
}

func (s *issueService) Get(ctx context.Context, ref interfaces.IssueRef) (*interfaces.Issue, error) {
	issue, _, err := s.api.Issues.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return nil, fmt.Errorf("github: get issue #%d: %w", ref.Number, err)
	}
	return toIssue(issue), nil
}

func (s *issueService) ListOpenByCreator(ctx context.Context, repo interfaces.RepoRef, creator string) ([]*interfaces.Issue, error) {
	opts := &gh.IssueListByRepoOptions{
		State:       "open",
		Creator:     creator,
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var out []*interfaces.Issue
	for {
		issues, res, err := s.api.Issues.ListByRepo(ctx, repo.Owner, repo.Repo, opts)
		if err != nil {
			return nil, fmt.Errorf("github: list issues by %s: %w", creator, err)
		}
		for _, issue := range issues {
			// the issues endpoint also returns pull requests
			if issue.IsPullRequest() {
				continue
			}
			out = append(out, toIssue(issue))
		}
		if res.NextPage == 0 {
			break
		}
		opts.Page = res.NextPage
	}
	return out, nil
}

func (s *issueService) ListComments(ctx context.Context, ref interfaces.IssueRef) ([]*interfaces.Comment, error) {
	opts := &gh.IssueListCommentsOptions{ListOptions: gh.ListOptions{PerPage: 100}}

	var out []*interfaces.Comment
	for {
		comments, res, err := s.api.Issues.ListComments(ctx, ref.Owner, ref.Repo, ref.Number, opts)
		if err != nil {
			return nil, fmt.Errorf("github: list comments on #%d: %w", ref.Number, err)
		}
		for _, comment := range comments {
			out = append(out, &interfaces.Comment{
				ID:     comment.GetID(),
				Author: comment.GetUser().GetLogin(),
				Body:   comment.GetBody(),
			})
		}
		if res.NextPage == 0 {
			break
		}
		opts.Page = res.NextPage
	}
	return out, nil
}

func (s *issueService) CreateComment(ctx context.Context, ref interfaces.IssueRef, body string) error {
	comment := &gh.IssueComment{Body: gh.Ptr(body)}
	if _, _, err := s.api.Issues.CreateComment(ctx, ref.Owner, ref.Repo, ref.Number, comment); err != nil {
		return fmt.Errorf("github: comment on #%d: %w", ref.Number, err)
	}
	return nil
}

func (s *issueService) AddLabels(ctx context.Context, ref interfaces.IssueRef, labels ...string) error {
	if _, _, err := s.api.Issues.AddLabelsToIssue(ctx, ref.Owner, ref.Repo, ref.Number, labels); err != nil {
		return fmt.Errorf("github: add labels %v to #%d: %w", labels, ref.Number, err)
	}
	return nil
}

func (s *issueService) RemoveLabel(ctx context.Context, ref interfaces.IssueRef, label string) error {
	if _, err := s.api.Issues.RemoveLabelForIssue(ctx, ref.Owner, ref.Repo, ref.Number, label); err != nil {
		return fmt.Errorf("github: remove label %s from #%d: %w", label, ref.Number, err)
	}
	return nil
}

func (s *issueService) Lock(ctx context.Context, ref interfaces.IssueRef, reason string) error {
	var opts *gh.LockIssueOptions
	if reason != "" {
		opts = &gh.LockIssueOptions{LockReason: reason}
	}
	if _, err := s.api.Issues.Lock(ctx, ref.Owner, ref.Repo, ref.Number, opts); err != nil {
		return fmt.Errorf("github: lock #%d: %w", ref.Number, err)
	}
	return nil
}

func (s *issueService) Unlock(ctx context.Context, ref interfaces.IssueRef) error {
	if _, err := s.api.Issues.Unlock(ctx, ref.Owner, ref.Repo, ref.Number); err != nil {
		return fmt.Errorf("github: unlock #%d: %w", ref.Number, err)
	}
	return nil
}

func (s *issueService) Close(ctx context.Context, ref interfaces.IssueRef) error {
	req := &gh.IssueRequest{State: gh.Ptr("closed")}
	if _, _, err := s.api.Issues.Edit(ctx, ref.Owner, ref.Repo, ref.Number, req); err != nil {
		return fmt.Errorf("github: close #%d: %w", ref.Number, err)
	}
	return nil
}

func toIssue(issue *gh.Issue) *interfaces.Issue {
	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}
	return &interfaces.Issue{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		Body:   issue.GetBody(),
		State:  issue.GetState(),
		Locked: issue.GetLocked(),
		Author: issue.GetUser().GetLogin(),
		Labels: labels,
	}
}

type pullRequestService struct {
	api *gh.Client
}

func (s *pullRequestService) Get(ctx context.Context, repo interfaces.RepoRef, number int) (*interfaces.PullRequest, error) {
	pr, _, err := s.api.PullRequests.Get(ctx, repo.Owner, repo.Repo, number)
	if err != nil {
		return nil, fmt.Errorf("github: get PR #%d: %w", number, err)
	}
	return toPullRequest(pr), nil
}

func (s *pullRequestService) Create(ctx context.Context, repo interfaces.RepoRef, input interfaces.PullRequestInput) (*interfaces.PullRequest, error) {
	pr, _, err := s.api.PullRequests.Create(ctx, repo.Owner, repo.Repo, &gh.NewPullRequest{
		Title: gh.Ptr(input.Title),
		Head:  gh.Ptr(input.Head),
		Base:  gh.Ptr(input.Base),
		Body:  gh.Ptr(input.Body),
	})
	if err != nil {
		return nil, fmt.Errorf("github: create PR from %s: %w", input.Head, err)
	}
	return toPullRequest(pr), nil
}

func toPullRequest(pr *gh.PullRequest) *interfaces.PullRequest {
	return &interfaces.PullRequest{
		Number:  pr.GetNumber(),
		HTMLURL: pr.GetHTMLURL(),
		State:   pr.GetState(),
		Merged:  pr.GetMerged(),
	}
}
