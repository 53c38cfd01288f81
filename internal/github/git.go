package github

import (
	"context"
	"encoding/base64"
	"fmt"

	gh "github.com/google/go-github/v68/github"

	"github.com/goliatone/go-blog-intake/pkg/interfaces"
)

const blobFileMode = "100644"

type gitService struct {
	api *gh.Client
}

func (s *gitService) DefaultBranch(ctx context.Context, repo interfaces.RepoRef) (string, error) {
	repository, _, err := s.api.Repositories.Get(ctx, repo.Owner, repo.Repo)
	if err != nil {
		return "", fmt.Errorf("github: get repository %s/%s: %w", repo.Owner, repo.Repo, err)
	}
	return repository.GetDefaultBranch(), nil
}

func (s *gitService) BranchHead(ctx context.Context, repo interfaces.RepoRef, branch string) (string, error) {
	ref, _, err := s.api.Git.GetRef(ctx, repo.Owner, repo.Repo, "heads/"+branch)
	if err != nil {
		return "", fmt.Errorf("github: get ref heads/%s: %w", branch, asRefNotFound(err))
	}
	return ref.GetObject().GetSHA(), nil
}

func (s *gitService) CreateBranch(ctx context.Context, repo interfaces.RepoRef, branch, sha string) error {
	ref := &gh.Reference{
		Ref:    gh.Ptr("refs/heads/" + branch),
		Object: &gh.GitObject{SHA: gh.Ptr(sha)},
	}
	if _, _, err := s.api.Git.CreateRef(ctx, repo.Owner, repo.Repo, ref); err != nil {
		return fmt.Errorf("github: create ref heads/%s: %w", branch, err)
	}
	return nil
}

func (s *gitService) ResetBranch(ctx context.Context, repo interfaces.RepoRef, branch, sha string) error {
	ref := &gh.Reference{
		Ref:    gh.Ptr("refs/heads/" + branch),
		Object: &gh.GitObject{SHA: gh.Ptr(sha)},
	}
	if _, _, err := s.api.Git.UpdateRef(ctx, repo.Owner, repo.Repo, ref, true); err != nil {
		return fmt.Errorf("github: update ref heads/%s: %w", branch, asRefNotFound(err))
	}
	return nil
}

func (s *gitService) CommitTreeSHA(ctx context.Context, repo interfaces.RepoRef, commitSHA string) (string, error) {
	commit, _, err := s.api.Git.GetCommit(ctx, repo.Owner, repo.Repo, commitSHA)
	if err != nil {
		return "", fmt.Errorf("github: get commit %s: %w", commitSHA, err)
	}
	return commit.GetTree().GetSHA(), nil
}

func (s *gitService) CreateBlob(ctx context.Context, repo interfaces.RepoRef, content []byte) (string, error) {
	blob := &gh.Blob{
		Content:  gh.Ptr(base64.StdEncoding.EncodeToString(content)),
		Encoding: gh.Ptr("base64"),
	}
	created, _, err := s.api.Git.CreateBlob(ctx, repo.Owner, repo.Repo, blob)
	if err != nil {
		return "", fmt.Errorf("github: create blob: %w", err)
	}
	return created.GetSHA(), nil
}

func (s *gitService) CreateTree(ctx context.Context, repo interfaces.RepoRef, baseTreeSHA string, blobs []interfaces.TreeBlobRef) (string, error) {
	entries := make([]*gh.TreeEntry, 0, len(blobs))
	for _, blob := range blobs {
		entries = append(entries, &gh.TreeEntry{
			Path: gh.Ptr(blob.Path),
			Mode: gh.Ptr(blobFileMode),
			Type: gh.Ptr("blob"),
			SHA:  gh.Ptr(blob.SHA),
		})
	}
	tree, _, err := s.api.Git.CreateTree(ctx, repo.Owner, repo.Repo, baseTreeSHA, entries)
	if err != nil {
		return "", fmt.Errorf("github: create tree: %w", err)
	}
	return tree.GetSHA(), nil
}

func (s *gitService) CreateCommit(ctx context.Context, repo interfaces.RepoRef, message, treeSHA, parentSHA string) (string, error) {
	commit := &gh.Commit{
		Message: gh.Ptr(message),
		Tree:    &gh.Tree{SHA: gh.Ptr(treeSHA)},
		Parents: []*gh.Commit{{SHA: gh.Ptr(parentSHA)}},
	}
	created, _, err := s.api.Git.CreateCommit(ctx, repo.Owner, repo.Repo, commit, nil)
	if err != nil {
		return "", fmt.Errorf("github: create commit: %w", err)
	}
	return created.GetSHA(), nil
}
