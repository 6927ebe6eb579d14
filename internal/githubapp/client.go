// Package githubapp implements the engine.GitHubClient facade on top of the
// GitHub REST API, authenticated as a GitHub App installation. Token minting
// and refresh are handled entirely by the installation transport; nothing in
// here ever sees a token.
package githubapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v66/github"

	"github.com/cs334f24/git-learner/internal/domain"
	"github.com/cs334f24/git-learner/internal/engine"
)

// apiTimeout bounds every outbound GitHub call so a hung request cannot
// block a learner's check indefinitely.
const apiTimeout = 10 * time.Second

// Client wraps an installation-authenticated GitHub API client.
type Client struct {
	gh *github.Client
}

var _ engine.GitHubClient = (*Client)(nil)

// New builds a Client authenticated as the app's installation on org. The
// installation is resolved once at startup; the returned client's transport
// refreshes installation tokens transparently.
func New(appID int64, privateKeyPath, org string) (*Client, error) {
	appTransport, err := ghinstallation.NewAppsTransportKeyFromFile(http.DefaultTransport, appID, privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load app private key: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	appClient := github.NewClient(&http.Client{Transport: appTransport})
	installation, _, err := appClient.Apps.FindOrganizationInstallation(ctx, org)
	if err != nil {
		return nil, fmt.Errorf("find installation for organization %q: %w", org, err)
	}

	transport := ghinstallation.NewFromAppsTransport(appTransport, installation.GetID())
	return &Client{gh: github.NewClient(&http.Client{Transport: transport})}, nil
}

func (c *Client) CreateRepo(ctx context.Context, org, name string) (*engine.Repo, error) {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	repo, _, err := c.gh.Repositories.Create(ctx, org, &github.Repository{
		Name: github.String(name),
	})
	if err != nil {
		return nil, &domain.ProvisioningError{Op: "create", Err: err}
	}
	return toRepo(org, repo), nil
}

func (c *Client) CreateRepoFromTemplate(ctx context.Context, org, name, template string) (*engine.Repo, error) {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	repo, _, err := c.gh.Repositories.CreateFromTemplate(ctx, org, template, &github.TemplateRepoRequest{
		Name:  github.String(name),
		Owner: github.String(org),
	})
	if err != nil {
		return nil, &domain.ProvisioningError{Op: "create from template", Err: err}
	}
	return toRepo(org, repo), nil
}

func (c *Client) GetRepo(ctx context.Context, org, name string) (*engine.Repo, error) {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	repo, _, err := c.gh.Repositories.Get(ctx, org, name)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("repository %s/%s: %w", org, name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get repository %s/%s: %w", org, name, err)
	}
	return toRepo(org, repo), nil
}

func (c *Client) DeleteRepo(ctx context.Context, repo *engine.Repo) error {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	if _, err := c.gh.Repositories.Delete(ctx, repo.Org, repo.Name); err != nil {
		return &domain.ProvisioningError{Op: "delete", Err: err}
	}
	return nil
}

func (c *Client) CreateFile(ctx context.Context, repo *engine.Repo, path, message, content string) error {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	_, _, err := c.gh.Repositories.CreateFile(ctx, repo.Org, repo.Name, path, &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: []byte(content),
	})
	if err != nil {
		return fmt.Errorf("create file %s in %s: %w", path, repo.FullName(), err)
	}
	return nil
}

func (c *Client) GetReadme(ctx context.Context, repo *engine.Repo) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	readme, _, err := c.gh.Repositories.GetReadme(ctx, repo.Org, repo.Name, nil)
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("readme in %s: %w", repo.FullName(), domain.ErrNotFound)
		}
		return "", fmt.Errorf("get readme in %s: %w", repo.FullName(), err)
	}

	content, err := readme.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode readme in %s: %w", repo.FullName(), err)
	}
	return content, nil
}

func (c *Client) ListCommits(ctx context.Context, repo *engine.Repo) ([]engine.Commit, error) {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	commits, _, err := c.gh.Repositories.ListCommits(ctx, repo.Org, repo.Name, nil)
	if err != nil {
		return nil, fmt.Errorf("list commits in %s: %w", repo.FullName(), err)
	}

	out := make([]engine.Commit, 0, len(commits))
	for _, rc := range commits {
		out = append(out, engine.Commit{
			SHA:        rc.GetSHA(),
			Message:    rc.GetCommit().GetMessage(),
			AuthoredAt: rc.GetCommit().GetAuthor().GetDate().Time,
		})
	}
	return out, nil
}

func toRepo(org string, repo *github.Repository) *engine.Repo {
	return &engine.Repo{
		Org:           org,
		Name:          repo.GetName(),
		HTMLURL:       repo.GetHTMLURL(),
		CloneURL:      repo.GetCloneURL(),
		SSHURL:        repo.GetSSHURL(),
		DefaultBranch: repo.GetDefaultBranch(),
	}
}

func isNotFound(err error) bool {
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) &&
		errResp.Response != nil &&
		errResp.Response.StatusCode == http.StatusNotFound
}
