package modules

import (
	"context"
	"fmt"

	"github.com/cs334f24/git-learner/internal/engine"
)

// BasicModule builds the introductory "basic module": seed a README, one
// dummy step, and the terminal step.
func BasicModule() (*engine.Module, error) {
	steps := []engine.Step{
		&AddReadme{},
		&DummyStep{Text: "this step does nothing"},
		&EndStep{},
	}
	return engine.NewModule("basic module", createRepo, steps)
}

// AddReadme seeds the fresh repository with a README. Its check always passes;
// the step exists so the learner's repository has content to look at.
type AddReadme struct{}

func (s *AddReadme) Action(ctx context.Context, gh engine.GitHubClient, repo *engine.Repo) error {
	return gh.CreateFile(ctx, repo, "README.md", "Initialize repository",
		"# README\n\nWelcome to git-learner!")
}

func (s *AddReadme) Check(ctx context.Context, gh engine.GitHubClient, repo *engine.Repo) engine.CheckResult {
	return engine.CheckResult{Outcome: engine.OutcomeGood}
}

func (s *AddReadme) Instructions(repo *engine.Repo) string {
	return `
## Welcome to Git Learner!

This is an introductory step meant exclusively for testing

* here is
* a bulleted
* list

` + "```bash" + `
mkdir testing
cd a_code_block
` + "```" + `

here is some syntax highlighted python code
` + "```python" + `
name = input("What is your name?")
if name:
    print(f"Hello {name}!")
else:
    print("Hello World!")
` + "```" + `
`
}

// DummyStep does nothing and always passes. Useful as filler while authoring
// a module.
type DummyStep struct {
	Text string
}

func (s *DummyStep) Action(ctx context.Context, gh engine.GitHubClient, repo *engine.Repo) error {
	return nil
}

func (s *DummyStep) Check(ctx context.Context, gh engine.GitHubClient, repo *engine.Repo) engine.CheckResult {
	return engine.CheckResult{Outcome: engine.OutcomeGood}
}

func (s *DummyStep) Instructions(repo *engine.Repo) string {
	return fmt.Sprintf("Instructions: %s", s.Text)
}

// EndStep is the terminal step of every module. The session cursor clamps
// here; its instructions are the completion screen.
type EndStep struct{}

func (s *EndStep) Action(ctx context.Context, gh engine.GitHubClient, repo *engine.Repo) error {
	return nil
}

func (s *EndStep) Check(ctx context.Context, gh engine.GitHubClient, repo *engine.Repo) engine.CheckResult {
	return engine.CheckResult{Outcome: engine.OutcomeGood}
}

func (s *EndStep) Instructions(repo *engine.Repo) string {
	return "You have completed this module!"
}
