package modules

import (
	"context"
	"fmt"

	"github.com/cs334f24/git-learner/internal/engine"
)

// PushAfterUpdateModule builds the "push-after-update" module: clone the
// repo, push a commit, then push again after pulling a non-conflicting
// remote update.
func PushAfterUpdateModule() (*engine.Module, error) {
	steps := []engine.Step{
		&CloneStep{},
		&PushNoConflict{},
		&PushAfterUpdate{},
		&EndStep{},
	}
	return engine.NewModule("push-after-update", createRepo, steps)
}

// CloneStep seeds the repository with a README and a favorite-colors file and
// walks the learner through cloning it.
type CloneStep struct{}

func (s *CloneStep) Action(ctx context.Context, gh engine.GitHubClient, repo *engine.Repo) error {
	readme := `# README

It is good practice to include a README.md file within your repository.

## Contributors

- Contributor1
`
	if err := gh.CreateFile(ctx, repo, "README.md", "Add README", readme); err != nil {
		return err
	}
	return gh.CreateFile(ctx, repo, "favorite_colors.txt", "Create favorite colors file", "red")
}

func (s *CloneStep) Check(ctx context.Context, gh engine.GitHubClient, repo *engine.Repo) engine.CheckResult {
	return engine.CheckResult{Outcome: engine.OutcomeGood}
}

func (s *CloneStep) Instructions(repo *engine.Repo) string {
	return fmt.Sprintf(`
## Cloning the Repo

The first step to working with a git repo is creating a local copy.
This is done by using `+"`clone`"+` on repo. The repo you clone is called `+"`origin`"+`.

To get started, open a terminal and navigate to where you would like to store your copy of the repo.

`+"```bash"+`
git clone %s
cd %s
`+"```"+`

You have now created a local copy of %s.
When you have work (commits) you want to someone else to have, you `+"`push`"+` them to `+"`origin`"+`.

To check the url of `+"`origin`"+`, you can run the following command:

`+"```bash"+`
git remote -v
`+"```"+`
In the next step you will create local changes and push them to `+"`origin`"+`.
`, repo.SSHURL, repo.Name, repo.Name)
}

// checkNewCommit grades whether the repository's head commit differs from the
// cached baseline. The baseline is seeded lazily from the second-most-recent
// commit when nothing has been cached for this repository yet: the most
// recent commit may already be the learner's push.
func checkNewCommit(ctx context.Context, gh engine.GitHubClient, repo *engine.Repo, baseline *engine.CommitBaseline, goodMessage func(engine.Commit) string) engine.CheckResult {
	commits, err := gh.ListCommits(ctx, repo)
	if err != nil {
		return engine.CheckResult{
			Outcome: engine.OutcomeRecoverable,
			Message: fmt.Sprintf("something went wrong, %v", err),
		}
	}
	if len(commits) == 0 {
		return engine.CheckResult{
			Outcome: engine.OutcomeUnrecoverable,
			Message: "repository has no commits",
		}
	}

	head := commits[0]

	base, ok := baseline.Get(repo.Name)
	if !ok {
		if len(commits) > 1 {
			base = baseline.Seed(repo.Name, commits[1].SHA)
		} else {
			base = baseline.Seed(repo.Name, head.SHA)
		}
	}

	if base == head.SHA {
		return engine.CheckResult{Outcome: engine.OutcomeUserError, Message: "No new commit pushed"}
	}
	return engine.CheckResult{Outcome: engine.OutcomeGood, Message: goodMessage(head)}
}

// PushNoConflict waits for the learner to push their first commit.
type PushNoConflict struct {
	baseline engine.CommitBaseline
}

func (s *PushNoConflict) Action(ctx context.Context, gh engine.GitHubClient, repo *engine.Repo) error {
	// Record the head CloneStep left behind; only commits after it count.
	// After a process restart the check re-seeds lazily instead.
	commits, err := gh.ListCommits(ctx, repo)
	if err != nil {
		return err
	}
	if len(commits) > 0 {
		s.baseline.Set(repo.Name, commits[0].SHA)
	}
	return nil
}

func (s *PushNoConflict) Check(ctx context.Context, gh engine.GitHubClient, repo *engine.Repo) engine.CheckResult {
	return checkNewCommit(ctx, gh, repo, &s.baseline, func(c engine.Commit) string {
		return fmt.Sprintf("%s %s", c.SHA, c.Message)
	})
}

func (s *PushNoConflict) Instructions(repo *engine.Repo) string {
	return `
## Adding Changes Locally

Changes to a repo are stored in ` + "`commits`" + `.
You can check if you have any uncommited changes by running the command ` + "`git status`" + ` in your terminal.

Let's start by editting the ` + "`README.md`" + ` in your terminal.

` + "```bash" + `
nano README.md
` + "```" + `

Add your name to the list of contributors.
Make sure to save the file before exiting your editor.

Run ` + "`git status`" + ` again.
You should now see uncommited changes in ` + "`README.md`" + `.

## Staging Changes

You can stage changed files to be commited by running ` + "`git add`" + ` along with their path.
So, to stage ` + "`README.md`" + ` you should run the following.

` + "```bash" + `
git add README.md
` + "```" + `
Now that you have staged changes, you can create a commit.

## Committing Changes Locally

Staged changes are commited using ` + "`git commit`" + `.
Running the command below

` + "```bash" + `
git commit
` + "```" + `

You editor (likely nano) should open.
The first line of the file is used as commit message, and the rest of the file is used as the body.

After you save the file the commit is created.
Run ` + "`git status`" + ` again to see that you are one commit locally that ` + "`origin`" + ` does not.

## Pushing To ` + "`origin`" + `

To push local commits to a remote repository you can use the command ` + "`git push`" + `.
It is best practice to specify which remote to push to.
For this repository you can run the command below

` + "```bash" + `
git push origin
` + "```" + `
`
}

// PushAfterUpdate pushes a server-side commit on entry so the learner has to
// pull before their next push succeeds.
type PushAfterUpdate struct {
	baseline engine.CommitBaseline
}

func (s *PushAfterUpdate) Action(ctx context.Context, gh engine.GitHubClient, repo *engine.Repo) error {
	if err := gh.CreateFile(ctx, repo, "random_words.txt", "Add random words", randomWords(10)); err != nil {
		return err
	}

	// Record the head we just created as the baseline, so only a commit the
	// learner pushes afterwards counts as new.
	commits, err := gh.ListCommits(ctx, repo)
	if err != nil {
		return err
	}
	if len(commits) > 0 {
		s.baseline.Set(repo.Name, commits[0].SHA)
	}
	return nil
}

func (s *PushAfterUpdate) Check(ctx context.Context, gh engine.GitHubClient, repo *engine.Repo) engine.CheckResult {
	return checkNewCommit(ctx, gh, repo, &s.baseline, func(engine.Commit) string {
		return "All good!"
	})
}

func (s *PushAfterUpdate) Instructions(repo *engine.Repo) string {
	return `
This step goes over how to handle the remote repository having non-conflicting changes.

## Adding more changes

Start by adding your favorite color to ` + "`favorite_colors.txt`" + `.
After you have added your color, stage then commit the file.
The ` + "`-m`" + ` flag can be used with commit to specify a commit message without opening a text editor.

` + "```bash" + `
git add favorite_colors.txt
git commit -m "Add a favorite color"
` + "```" + `

Now try to push using ` + "`git push origin`" + `.
You should see a message in your terminal about your local repo not being up to date.
To resolve this, you will need to pull the remote changes.

### Pulling Non-Conflicting Remote Updates

Another user has pushed changes before you!
Changes are downloaded from a remote repository using ` + "`git pull`" + `.

To download the changes from ` + "`origin`" + ` you can run

` + "```bash" + `
git pull origin
` + "```" + `

To resolve the changes you will need to create a merge commit.
Since there are no conflicting changes, git can do this automatically.

Now that your repo is up to date with origin, you are ready to push.

### Pushing Changes

To push your updated repository, use ` + "`git push origin`" + `.
`
}
