// Package enginetest provides an in-memory fake of engine.GitHubClient for
// tests of the step engine, the shipped modules, and the web layer.
package enginetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cs334f24/git-learner/internal/domain"
	"github.com/cs334f24/git-learner/internal/engine"
)

// FakeRepo is the in-memory state of one repository.
type FakeRepo struct {
	Repo    engine.Repo
	Files   map[string]string
	Commits []engine.Commit // most-recent-first, like the real API
}

// FakeClient implements engine.GitHubClient against in-memory state. The
// zero value is not usable; call NewFakeClient.
type FakeClient struct {
	mu    sync.Mutex
	repos map[string]*FakeRepo
	seq   int

	// Deleted records full names passed to DeleteRepo, successful or not.
	Deleted []string

	// Optional error injection.
	CreateErr      error
	DeleteErr      error
	ListCommitsErr error
}

var _ engine.GitHubClient = (*FakeClient)(nil)

// NewFakeClient returns an empty fake.
func NewFakeClient() *FakeClient {
	return &FakeClient{repos: make(map[string]*FakeRepo)}
}

func key(org, name string) string { return org + "/" + name }

func (c *FakeClient) nextSHA() string {
	c.seq++
	return fmt.Sprintf("sha-%04d", c.seq)
}

func (c *FakeClient) CreateRepo(ctx context.Context, org, name string) (*engine.Repo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.CreateErr != nil {
		return nil, &domain.ProvisioningError{Op: "create", Err: c.CreateErr}
	}
	if _, ok := c.repos[key(org, name)]; ok {
		return nil, &domain.ProvisioningError{Op: "create", Err: fmt.Errorf("name already exists")}
	}

	repo := engine.Repo{
		Org:           org,
		Name:          name,
		HTMLURL:       "https://github.test/" + org + "/" + name,
		CloneURL:      "https://github.test/" + org + "/" + name + ".git",
		SSHURL:        "git@github.test:" + org + "/" + name + ".git",
		DefaultBranch: "main",
	}
	c.repos[key(org, name)] = &FakeRepo{Repo: repo, Files: make(map[string]string)}
	return &repo, nil
}

func (c *FakeClient) CreateRepoFromTemplate(ctx context.Context, org, name, template string) (*engine.Repo, error) {
	repo, err := c.CreateRepo(ctx, org, name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if tpl, ok := c.repos[key(org, template)]; ok {
		fresh := c.repos[key(org, name)]
		for path, content := range tpl.Files {
			fresh.Files[path] = content
		}
		fresh.Commits = append(fresh.Commits, engine.Commit{
			SHA:        c.nextSHA(),
			Message:    "Initial commit from template",
			AuthoredAt: time.Now(),
		})
	}
	return repo, nil
}

func (c *FakeClient) GetRepo(ctx context.Context, org, name string) (*engine.Repo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	repo, ok := c.repos[key(org, name)]
	if !ok {
		return nil, fmt.Errorf("repository %s/%s: %w", org, name, domain.ErrNotFound)
	}
	r := repo.Repo
	return &r, nil
}

func (c *FakeClient) DeleteRepo(ctx context.Context, repo *engine.Repo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Deleted = append(c.Deleted, repo.FullName())
	if c.DeleteErr != nil {
		return &domain.ProvisioningError{Op: "delete", Err: c.DeleteErr}
	}
	delete(c.repos, key(repo.Org, repo.Name))
	return nil
}

func (c *FakeClient) CreateFile(ctx context.Context, repo *engine.Repo, path, message, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.repos[key(repo.Org, repo.Name)]
	if !ok {
		return fmt.Errorf("repository %s: %w", repo.FullName(), domain.ErrNotFound)
	}
	r.Files[path] = content
	r.Commits = append([]engine.Commit{{
		SHA:        c.nextSHA(),
		Message:    message,
		AuthoredAt: time.Now(),
	}}, r.Commits...)
	return nil
}

func (c *FakeClient) GetReadme(ctx context.Context, repo *engine.Repo) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.repos[key(repo.Org, repo.Name)]
	if !ok {
		return "", fmt.Errorf("repository %s: %w", repo.FullName(), domain.ErrNotFound)
	}
	content, ok := r.Files["README.md"]
	if !ok {
		return "", fmt.Errorf("readme in %s: %w", repo.FullName(), domain.ErrNotFound)
	}
	return content, nil
}

func (c *FakeClient) ListCommits(ctx context.Context, repo *engine.Repo) ([]engine.Commit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ListCommitsErr != nil {
		return nil, c.ListCommitsErr
	}
	r, ok := c.repos[key(repo.Org, repo.Name)]
	if !ok {
		return nil, fmt.Errorf("repository %s: %w", repo.FullName(), domain.ErrNotFound)
	}
	out := make([]engine.Commit, len(r.Commits))
	copy(out, r.Commits)
	return out, nil
}

// Push simulates the learner pushing a commit to the repository.
func (c *FakeClient) Push(org, name, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.repos[key(org, name)]
	if !ok {
		return
	}
	r.Commits = append([]engine.Commit{{
		SHA:        c.nextSHA(),
		Message:    message,
		AuthoredAt: time.Now(),
	}}, r.Commits...)
}

// HasFile reports whether the repository contains the file.
func (c *FakeClient) HasFile(org, name, path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.repos[key(org, name)]
	if !ok {
		return false
	}
	_, ok = r.Files[path]
	return ok
}

// RepoCount returns how many repositories currently exist.
func (c *FakeClient) RepoCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.repos)
}
