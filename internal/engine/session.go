package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cs334f24/git-learner/internal/domain"
)

// Session binds a learner, a module, and a concrete backing repository, and
// owns the 1-based current-step cursor. It holds no locks of its own: the web
// layer resolves one session per request and persistence is the caller's job.
type Session struct {
	gh        GitHubClient
	user      string
	org       string
	module    *Module
	repo      *Repo
	current   int // 1-based, clamped to [1, module.Len()]
	toast     string
	lastCheck CheckResult
}

// NewSession starts a fresh attempt at a module: it bootstraps a new
// repository and runs step one's action against it, so the learner arrives
// with the first step already acted out. Bootstrap failures surface as a
// *domain.ProvisioningError from the module's bootstrap; nothing is persisted
// by this constructor.
func NewSession(ctx context.Context, gh GitHubClient, user, org string, module *Module) (*Session, error) {
	repo, err := module.Bootstrap(ctx, gh, org)
	if err != nil {
		return nil, fmt.Errorf("bootstrap module %q: %w", module.Name(), err)
	}

	s := &Session{
		gh:      gh,
		user:    user,
		org:     org,
		module:  module,
		repo:    repo,
		current: 1,
	}

	step, err := module.Step(0)
	if err != nil {
		return nil, err
	}
	if err := step.Action(ctx, gh, repo); err != nil {
		return nil, fmt.Errorf("run step 1 action: %w", err)
	}

	return s, nil
}

// ResumeSession rebuilds a session from persisted state. The repository is
// resolved from org/repoName; no step action is re-run. A cursor outside
// [1, module.Len()] is rejected with domain.ErrInvalidStep.
func ResumeSession(ctx context.Context, gh GitHubClient, user, org string, module *Module, repoName string, currentStep int) (*Session, error) {
	if currentStep < 1 || currentStep > module.Len() {
		return nil, fmt.Errorf("%w: step %d outside module %q with %d steps",
			domain.ErrInvalidStep, currentStep, module.Name(), module.Len())
	}

	repo, err := gh.GetRepo(ctx, org, repoName)
	if err != nil {
		return nil, fmt.Errorf("resolve repository %s/%s: %w", org, repoName, err)
	}

	return &Session{
		gh:      gh,
		user:    user,
		org:     org,
		module:  module,
		repo:    repo,
		current: currentStep,
	}, nil
}

// User returns the learner's GitHub login.
func (s *Session) User() string { return s.user }

// Module returns the module this session is an attempt at.
func (s *Session) Module() *Module { return s.module }

// Repo returns the backing repository handle.
func (s *Session) Repo() *Repo { return s.repo }

// CurrentStep returns the 1-based step cursor.
func (s *Session) CurrentStep() int { return s.current }

// Toast returns the message attached to the last non-advancing check, if any.
func (s *Session) Toast() string { return s.toast }

// LastCheck returns the result of the most recent check run by Next.
func (s *Session) LastCheck() CheckResult { return s.lastCheck }

// Completed reports whether the session is on the final step. The cursor
// clamps there: a good check of the final step finishes the module without
// attempting a step beyond the end.
func (s *Session) Completed() bool { return s.current == s.module.Len() }

func (s *Session) currentStep() Step {
	step, err := s.module.Step(s.current - 1)
	if err != nil {
		// Unreachable while the cursor invariant holds; constructors and
		// Next keep it in [1, Len()].
		panic(err)
	}
	return step
}

// Instructions returns the current step's instructions as raw Markdown.
func (s *Session) Instructions() string {
	return s.currentStep().Instructions(s.repo)
}

// Check grades the current step's state without moving the cursor.
func (s *Session) Check(ctx context.Context) CheckResult {
	return s.currentStep().Check(ctx, s.gh, s.repo)
}

// Next checks the current step and advances on a good outcome, running the
// newly entered step's action. It returns true when the cursor moved (the
// caller must persist the new cursor).
//
// User errors and recoverable problems leave the cursor alone and record the
// message as the toast. An unrecoverable outcome returns a
// *domain.UnrecoverableError with the cursor unchanged.
func (s *Session) Next(ctx context.Context) (bool, error) {
	result := s.Check(ctx)
	s.lastCheck = result

	switch result.Outcome {
	case OutcomeGood:
		if s.current == s.module.Len() {
			// Final step passed: terminal completion, nothing left to act.
			s.toast = ""
			return false, nil
		}
		s.current++
		s.toast = ""
		step := s.currentStep()
		if err := step.Action(ctx, s.gh, s.repo); err != nil {
			return true, fmt.Errorf("run step %d action: %w", s.current, err)
		}
		return true, nil
	case OutcomeUserError, OutcomeRecoverable:
		s.toast = result.Message
		return false, nil
	case OutcomeUnrecoverable:
		return false, &domain.UnrecoverableError{Message: result.Message}
	default:
		return false, fmt.Errorf("step %d returned unknown check outcome %q", s.current, result.Outcome)
	}
}

// Cleanup deletes the backing repository. It is called when the session is
// superseded by a restart; failure to delete only orphans the old repository,
// so errors are logged and swallowed.
func (s *Session) Cleanup(ctx context.Context) {
	if err := s.gh.DeleteRepo(ctx, s.repo); err != nil {
		slog.Warn("cleanup: delete repository failed",
			"repo", s.repo.FullName(), "user", s.user, "error", err)
	}
}
