package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/cs334f24/git-learner/internal/domain"
	"github.com/cs334f24/git-learner/internal/engine"
)

// SessionService drives learner sessions: starting and restarting modules,
// checking and advancing steps, and rendering instructions. It owns the glue
// between the module registry, the live engine sessions, and the store.
type SessionService struct {
	registry *engine.Registry
	gh       engine.GitHubClient
	org      string
	modules  domain.ModuleRepository
	sessions domain.SessionRepository
	renderer *Renderer
}

// NewSessionService creates a new SessionService.
func NewSessionService(registry *engine.Registry, gh engine.GitHubClient, org string, modules domain.ModuleRepository, sessions domain.SessionRepository) *SessionService {
	return &SessionService{
		registry: registry,
		gh:       gh,
		org:      org,
		modules:  modules,
		sessions: sessions,
		renderer: NewRenderer(),
	}
}

// SeedModules mirrors every registered module into the modules table so
// sessions can reference module rows. Run once at startup; upserts are
// idempotent.
func (s *SessionService) SeedModules(ctx context.Context) error {
	for _, m := range s.registry.List() {
		row := &domain.ModuleRow{
			Name:       m.Name(),
			BaseRepo:   m.BaseRepo(),
			TotalSteps: m.Len(),
		}
		if err := s.modules.Upsert(ctx, row); err != nil {
			return fmt.Errorf("seed module %q: %w", m.Name(), err)
		}
	}
	return nil
}

// ListModules returns the persisted module rows for the home page.
func (s *SessionService) ListModules(ctx context.Context) ([]domain.ModuleRow, error) {
	return s.modules.List(ctx)
}

// StartSession begins a fresh attempt at a module for the user. Any prior
// session for the same (user, module) pair is removed first: its row is
// deleted and its backing repository is deleted best-effort, so an orphaned
// repository never blocks a restart. Returns the redirect target for the
// first step.
func (s *SessionService) StartSession(ctx context.Context, user *domain.User, moduleName string) (string, error) {
	module, err := s.registry.Lookup(moduleName)
	if err != nil {
		return "", err
	}
	row, err := s.modules.GetByName(ctx, moduleName)
	if err != nil {
		return "", err
	}

	if existing, err := s.sessions.Get(ctx, user.ID, row.ID); err == nil {
		s.cleanupRepo(ctx, user, existing.Repo)
		if err := s.sessions.Delete(ctx, user.ID, row.ID); err != nil {
			return "", fmt.Errorf("delete superseded session: %w", err)
		}
	} else if !errors.Is(err, domain.ErrSessionNotFound) {
		return "", err
	}

	sess, err := engine.NewSession(ctx, s.gh, user.GithubLogin, s.org, module)
	if err != nil {
		return "", err
	}

	if err := s.sessions.Create(ctx, &domain.SessionRow{
		UserID:      user.ID,
		ModuleID:    row.ID,
		Repo:        sess.Repo().Name,
		CurrentStep: sess.CurrentStep(),
	}); err != nil {
		// The session row never existed; the fresh repository is orphaned
		// rather than rolled back.
		return "", fmt.Errorf("persist session: %w", err)
	}

	return stepURL(moduleName, sess.CurrentStep()), nil
}

// cleanupRepo deletes an old backing repository, logging rather than failing:
// an orphan is acceptable, a blocked restart is not.
func (s *SessionService) cleanupRepo(ctx context.Context, user *domain.User, repoName string) {
	repo := &engine.Repo{Org: s.org, Name: repoName}
	if err := s.gh.DeleteRepo(ctx, repo); err != nil {
		slog.Warn("delete superseded repository failed",
			"repo", repo.FullName(), "user", user.GithubLogin, "error", err)
	}
}

// resume rebuilds the live session for (user, module) from the stored row.
func (s *SessionService) resume(ctx context.Context, user *domain.User, moduleName string) (*engine.Session, *domain.ModuleRow, error) {
	module, err := s.registry.Lookup(moduleName)
	if err != nil {
		return nil, nil, err
	}
	row, err := s.modules.GetByName(ctx, moduleName)
	if err != nil {
		return nil, nil, err
	}
	stored, err := s.sessions.Get(ctx, user.ID, row.ID)
	if err != nil {
		return nil, nil, err
	}

	sess, err := engine.ResumeSession(ctx, s.gh, user.GithubLogin, s.org, module, stored.Repo, stored.CurrentStep)
	if err != nil {
		return nil, nil, err
	}
	return sess, row, nil
}

// validateStep checks the requested 1-based step against the module's range
// and the session's stored cursor. Out-of-range steps are ErrInvalidStep; a
// valid step that isn't the cursor is ErrStepMismatch.
func validateStep(sess *engine.Session, step int) error {
	if step < 1 || step > sess.Module().Len() {
		return fmt.Errorf("%w: step %d outside module %q with %d steps",
			domain.ErrInvalidStep, step, sess.Module().Name(), sess.Module().Len())
	}
	if step != sess.CurrentStep() {
		return fmt.Errorf("%w: currently on step %d, not %d",
			domain.ErrStepMismatch, sess.CurrentStep(), step)
	}
	return nil
}

// CheckCurrentStep grades the user's current step without advancing.
func (s *SessionService) CheckCurrentStep(ctx context.Context, user *domain.User, moduleName string, step int) (engine.CheckResult, error) {
	sess, _, err := s.resume(ctx, user, moduleName)
	if err != nil {
		return engine.CheckResult{}, err
	}
	if err := validateStep(sess, step); err != nil {
		return engine.CheckResult{}, err
	}
	return sess.Check(ctx), nil
}

// AdvanceResult is the outcome of an advance attempt.
type AdvanceResult struct {
	Advanced bool
	NextStep int                 // the cursor after the attempt, 1-based
	Status   engine.CheckOutcome // outcome of the check that gated the advance
	Toast    string              // message for non-advancing outcomes
	URL      string              // redirect target when Advanced
}

// AdvanceStep runs the current step's check and, on a good outcome, moves the
// session forward and persists the new cursor. Non-advancing outcomes come
// back as a toast. An unrecoverable check surfaces as
// *domain.UnrecoverableError with nothing persisted.
func (s *SessionService) AdvanceStep(ctx context.Context, user *domain.User, moduleName string, step int) (AdvanceResult, error) {
	sess, row, err := s.resume(ctx, user, moduleName)
	if err != nil {
		return AdvanceResult{}, err
	}
	if err := validateStep(sess, step); err != nil {
		return AdvanceResult{}, err
	}

	advanced, nextErr := sess.Next(ctx)
	if advanced {
		// Persist the cursor even if the entered step's action failed part
		// way: the check and the write are deliberately uncoupled, and the
		// learner can re-check from the new step.
		if err := s.sessions.UpdateStep(ctx, user.ID, row.ID, sess.CurrentStep()); err != nil {
			return AdvanceResult{}, fmt.Errorf("persist step: %w", err)
		}
	}
	if nextErr != nil {
		return AdvanceResult{}, nextErr
	}

	result := AdvanceResult{
		Advanced: advanced,
		NextStep: sess.CurrentStep(),
		Status:   sess.LastCheck().Outcome,
		Toast:    sess.Toast(),
	}
	if advanced {
		result.URL = stepURL(moduleName, sess.CurrentStep())
	}
	return result, nil
}

// StepView is everything the step page needs to render.
type StepView struct {
	ModuleName       string
	Step             int
	TotalSteps       int
	RepoName         string
	RepoURL          string
	InstructionsHTML string
	Completed        bool
}

// RenderInstructions returns the current step's instructions rendered to
// HTML, along with the surrounding page context.
func (s *SessionService) RenderInstructions(ctx context.Context, user *domain.User, moduleName string, step int) (StepView, error) {
	sess, _, err := s.resume(ctx, user, moduleName)
	if err != nil {
		return StepView{}, err
	}
	if err := validateStep(sess, step); err != nil {
		return StepView{}, err
	}

	html, err := s.renderer.Render(sess.Instructions())
	if err != nil {
		return StepView{}, err
	}

	return StepView{
		ModuleName:       moduleName,
		Step:             sess.CurrentStep(),
		TotalSteps:       sess.Module().Len(),
		RepoName:         sess.Repo().Name,
		RepoURL:          sess.Repo().HTMLURL,
		InstructionsHTML: html,
		Completed:        sess.Completed(),
	}, nil
}

// CurrentStep returns the stored cursor for (user, module), for redirecting a
// mismatched step URL back to where the learner actually is.
func (s *SessionService) CurrentStep(ctx context.Context, user *domain.User, moduleName string) (int, error) {
	row, err := s.modules.GetByName(ctx, moduleName)
	if err != nil {
		return 0, err
	}
	stored, err := s.sessions.Get(ctx, user.ID, row.ID)
	if err != nil {
		return 0, err
	}
	return stored.CurrentStep, nil
}

func stepURL(moduleName string, step int) string {
	return fmt.Sprintf("/modules/%s/step/%d", url.PathEscape(moduleName), step)
}
