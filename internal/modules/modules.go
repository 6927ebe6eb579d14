// Package modules defines the teaching modules shipped with git-learner and
// the steps they are built from. Modules are constructed once at startup and
// registered into an engine.Registry.
package modules

import (
	"context"
	"strings"

	petname "github.com/dustinkirkland/golang-petname"

	"github.com/cs334f24/git-learner/internal/engine"
)

// RandomRepoName returns a human-readable adjective-noun repository name.
func RandomRepoName() string {
	return petname.Generate(2, "-")
}

// createRepo provisions an empty repository with a random name under org.
func createRepo(ctx context.Context, gh engine.GitHubClient, org string) (*engine.Repo, error) {
	return gh.CreateRepo(ctx, org, RandomRepoName())
}

// randomWords returns n random lowercase words, one per line.
func randomWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = petname.Name()
	}
	return strings.Join(words, "\n")
}

// BuildRegistry constructs every active module and registers it by name.
func BuildRegistry() (*engine.Registry, error) {
	basic, err := BasicModule()
	if err != nil {
		return nil, err
	}
	push, err := PushAfterUpdateModule()
	if err != nil {
		return nil, err
	}
	return engine.NewRegistry(basic, push)
}
