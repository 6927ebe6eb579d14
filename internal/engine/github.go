package engine

import (
	"context"
	"time"
)

// Repo is a lightweight handle to a hosted repository. Steps receive one per
// call and never own it.
type Repo struct {
	Org           string
	Name          string
	HTMLURL       string
	CloneURL      string
	SSHURL        string
	DefaultBranch string
}

// FullName returns the "org/name" form used by the GitHub API.
func (r *Repo) FullName() string { return r.Org + "/" + r.Name }

// Commit is one entry of a repository's commit history.
type Commit struct {
	SHA        string
	Message    string
	AuthoredAt time.Time
}

// GitHubClient is the facade over the hosted git provider that steps and
// module bootstraps operate through. The production implementation wraps an
// authenticated GitHub App installation client; tests substitute an
// in-memory fake.
type GitHubClient interface {
	CreateRepo(ctx context.Context, org, name string) (*Repo, error)
	CreateRepoFromTemplate(ctx context.Context, org, name, template string) (*Repo, error)
	GetRepo(ctx context.Context, org, name string) (*Repo, error)
	// DeleteRepo is best-effort; callers log failures rather than abort.
	DeleteRepo(ctx context.Context, repo *Repo) error
	CreateFile(ctx context.Context, repo *Repo, path, message, content string) error
	GetReadme(ctx context.Context, repo *Repo) (string, error)
	// ListCommits returns the repository's commits most-recent-first.
	ListCommits(ctx context.Context, repo *Repo) ([]Commit, error)
}
