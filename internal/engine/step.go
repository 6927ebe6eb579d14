package engine

import (
	"context"
	"sync"
)

// CheckOutcome classifies the result of a step's check.
type CheckOutcome string

const (
	// OutcomeGood means the condition is satisfied and the session may advance.
	OutcomeGood CheckOutcome = "Good"
	// OutcomeUserError means the learner still has work to do; the message
	// tells them what.
	OutcomeUserError CheckOutcome = "User Error"
	// OutcomeRecoverable is a transient system-side problem, safe to retry.
	OutcomeRecoverable CheckOutcome = "Recoverable"
	// OutcomeUnrecoverable is a permanent system-side problem. Session.Next
	// converts it into a *domain.UnrecoverableError.
	OutcomeUnrecoverable CheckOutcome = "Unrecoverable"
)

// CheckResult pairs an outcome with a learner-facing message.
type CheckResult struct {
	Outcome CheckOutcome
	Message string
}

// Step is a single teaching unit within a module.
//
// Action runs exactly once per step entry, immediately after the previous
// step's check came back good (or after module bootstrap for step one); it is
// not required to be idempotent. Check must be safe to call repeatedly and
// must not mutate repository state. Instructions must be deterministic for
// the same repository state.
type Step interface {
	Instructions(repo *Repo) string
	Action(ctx context.Context, gh GitHubClient, repo *Repo) error
	Check(ctx context.Context, gh GitHubClient, repo *Repo) CheckResult
}

// CommitBaseline remembers, per repository name, the most recently observed
// commit SHA. Steps that must detect "the learner pushed a new commit" seed
// it from Action or lazily on first Check, then compare the head SHA against
// it. Entries are never evicted: repository names are unique per session, so
// growth is bounded by the number of sessions created.
//
// A step instance is shared by every session of its module, so the cache is
// guarded by a mutex. Concurrent checks of the same repository race
// last-write-wins, which at worst yields one extra "no new commit" response.
type CommitBaseline struct {
	mu   sync.Mutex
	seen map[string]string // repo name -> commit SHA
}

// Set records the baseline SHA for a repository.
func (b *CommitBaseline) Set(repoName, sha string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.seen == nil {
		b.seen = make(map[string]string)
	}
	b.seen[repoName] = sha
}

// Seed stores the SHA only if no baseline exists yet for the repository, and
// returns the baseline now in effect.
func (b *CommitBaseline) Seed(repoName, sha string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.seen == nil {
		b.seen = make(map[string]string)
	}
	if existing, ok := b.seen[repoName]; ok {
		return existing
	}
	b.seen[repoName] = sha
	return sha
}

// Get returns the baseline SHA for a repository, if one has been recorded.
func (b *CommitBaseline) Get(repoName string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sha, ok := b.seen[repoName]
	return sha, ok
}
