package service_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cs334f24/git-learner/internal/domain"
	"github.com/cs334f24/git-learner/internal/engine"
	"github.com/cs334f24/git-learner/internal/engine/enginetest"
	"github.com/cs334f24/git-learner/internal/repository/sqlite"
	"github.com/cs334f24/git-learner/internal/service"
)

const testOrg = "cs334f24"

// fakeStep has a mutable check result so tests can flip outcomes mid-session.
type fakeStep struct {
	text   string
	result engine.CheckResult
}

func (s *fakeStep) Action(ctx context.Context, gh engine.GitHubClient, repo *engine.Repo) error {
	return nil
}

func (s *fakeStep) Check(ctx context.Context, gh engine.GitHubClient, repo *engine.Repo) engine.CheckResult {
	return s.result
}

func (s *fakeStep) Instructions(repo *engine.Repo) string {
	return s.text
}

// sequencedBootstrap hands out distinct repository names so a restart gets a
// fresh repository.
func sequencedBootstrap() engine.BootstrapFunc {
	n := 0
	return func(ctx context.Context, gh engine.GitHubClient, org string) (*engine.Repo, error) {
		n++
		return gh.CreateRepo(ctx, org, fmt.Sprintf("lesson-repo-%d", n))
	}
}

type fixture struct {
	gh       *enginetest.FakeClient
	service  *service.SessionService
	sessions *sqlite.SessionRepository
	user     *domain.User
	moduleID int64
	steps    []*fakeStep
}

// newFixture builds a service around one three-step module backed by a
// temporary database and the fake GitHub client.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	steps := []*fakeStep{
		{text: "step one", result: engine.CheckResult{Outcome: engine.OutcomeGood}},
		{text: "## step two\n\n```bash\ngit status\n```", result: engine.CheckResult{Outcome: engine.OutcomeGood}},
		{text: "done", result: engine.CheckResult{Outcome: engine.OutcomeGood}},
	}
	module, err := engine.NewModule("test module", sequencedBootstrap(),
		[]engine.Step{steps[0], steps[1], steps[2]})
	if err != nil {
		t.Fatalf("NewModule: %v", err)
	}
	registry, err := engine.NewRegistry(module)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	gh := enginetest.NewFakeClient()
	svc := service.NewSessionService(registry, gh, testOrg, db.Modules(), db.Sessions())
	if err := svc.SeedModules(ctx); err != nil {
		t.Fatalf("SeedModules: %v", err)
	}

	user := &domain.User{GithubLogin: "octocat"}
	if err := db.Users().Upsert(ctx, user); err != nil {
		t.Fatalf("Upsert user: %v", err)
	}

	row, err := db.Modules().GetByName(ctx, "test module")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}

	return &fixture{
		gh:       gh,
		service:  svc,
		sessions: db.Sessions(),
		user:     user,
		moduleID: row.ID,
		steps:    steps,
	}
}

func (f *fixture) storedStep(t *testing.T) int {
	t.Helper()
	row, err := f.sessions.Get(context.Background(), f.user.ID, f.moduleID)
	if err != nil {
		t.Fatalf("Get session: %v", err)
	}
	return row.CurrentStep
}

func TestStartSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	target, err := f.service.StartSession(ctx, f.user, "test module")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if target != "/modules/test%20module/step/1" {
		t.Fatalf("unexpected redirect target %q", target)
	}
	if got := f.storedStep(t); got != 1 {
		t.Fatalf("expected stored step 1, got %d", got)
	}
	if f.gh.RepoCount() != 1 {
		t.Fatalf("expected one provisioned repository, got %d", f.gh.RepoCount())
	}
}

func TestStartSession_UnknownModule(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.StartSession(context.Background(), f.user, "no such module")
	if !errors.Is(err, domain.ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}
}

func TestStartSession_ReplacesExistingSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.StartSession(ctx, f.user, "test module"); err != nil {
		t.Fatalf("first StartSession: %v", err)
	}
	if _, err := f.service.StartSession(ctx, f.user, "test module"); err != nil {
		t.Fatalf("second StartSession: %v", err)
	}

	// The old repository was deleted and exactly one session row remains.
	if len(f.gh.Deleted) != 1 || f.gh.Deleted[0] != testOrg+"/lesson-repo-1" {
		t.Fatalf("expected old repository deleted, got %v", f.gh.Deleted)
	}
	if f.gh.RepoCount() != 1 {
		t.Fatalf("expected one live repository, got %d", f.gh.RepoCount())
	}
	row, err := f.sessions.Get(ctx, f.user.ID, f.moduleID)
	if err != nil {
		t.Fatalf("Get session: %v", err)
	}
	if row.Repo != "lesson-repo-2" || row.CurrentStep != 1 {
		t.Fatalf("unexpected replacement row %+v", row)
	}
}

func TestStartSession_RestartSurvivesDeleteFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.StartSession(ctx, f.user, "test module"); err != nil {
		t.Fatalf("first StartSession: %v", err)
	}

	// An orphaned old repository must not block the restart.
	f.gh.DeleteErr = errors.New("api unavailable")
	if _, err := f.service.StartSession(ctx, f.user, "test module"); err != nil {
		t.Fatalf("second StartSession: %v", err)
	}
	if got := f.storedStep(t); got != 1 {
		t.Fatalf("expected fresh session at step 1, got %d", got)
	}
}

func TestStartSession_ProvisioningFailure(t *testing.T) {
	f := newFixture(t)
	f.gh.CreateErr = errors.New("organization quota exceeded")

	_, err := f.service.StartSession(context.Background(), f.user, "test module")
	var provErr *domain.ProvisioningError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProvisioningError, got %v", err)
	}

	// No session row was persisted.
	if _, err := f.sessions.Get(context.Background(), f.user.ID, f.moduleID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected no session row, got %v", err)
	}
}

func TestAdvanceStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.StartSession(ctx, f.user, "test module"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	result, err := f.service.AdvanceStep(ctx, f.user, "test module", 1)
	if err != nil {
		t.Fatalf("AdvanceStep: %v", err)
	}
	if !result.Advanced || result.NextStep != 2 {
		t.Fatalf("expected advance to step 2, got %+v", result)
	}
	if result.URL != "/modules/test%20module/step/2" {
		t.Fatalf("unexpected url %q", result.URL)
	}
	if got := f.storedStep(t); got != 2 {
		t.Fatalf("expected persisted step 2, got %d", got)
	}
}

func TestAdvanceStep_Mismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.StartSession(ctx, f.user, "test module"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	_, err := f.service.AdvanceStep(ctx, f.user, "test module", 2)
	if !errors.Is(err, domain.ErrStepMismatch) {
		t.Fatalf("expected ErrStepMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "currently on step 1, not 2") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if got := f.storedStep(t); got != 1 {
		t.Fatalf("cursor must be unchanged, got %d", got)
	}
}

func TestCheckCurrentStep_OutOfRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.StartSession(ctx, f.user, "test module"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	_, err := f.service.CheckCurrentStep(ctx, f.user, "test module", 4)
	if !errors.Is(err, domain.ErrInvalidStep) {
		t.Fatalf("expected ErrInvalidStep, got %v", err)
	}
}

func TestAdvanceStep_UserErrorToast(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.steps[0].result = engine.CheckResult{Outcome: engine.OutcomeUserError, Message: "No new commit pushed"}
	if _, err := f.service.StartSession(ctx, f.user, "test module"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	result, err := f.service.AdvanceStep(ctx, f.user, "test module", 1)
	if err != nil {
		t.Fatalf("AdvanceStep: %v", err)
	}
	if result.Advanced {
		t.Fatal("must not advance on user error")
	}
	if result.Status != engine.OutcomeUserError || result.Toast != "No new commit pushed" {
		t.Fatalf("unexpected result %+v", result)
	}
	if got := f.storedStep(t); got != 1 {
		t.Fatalf("cursor must be unchanged, got %d", got)
	}
}

func TestAdvanceStep_Unrecoverable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.steps[0].result = engine.CheckResult{Outcome: engine.OutcomeUnrecoverable, Message: "repository corrupted"}
	if _, err := f.service.StartSession(ctx, f.user, "test module"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	_, err := f.service.AdvanceStep(ctx, f.user, "test module", 1)
	var unrecoverable *domain.UnrecoverableError
	if !errors.As(err, &unrecoverable) {
		t.Fatalf("expected UnrecoverableError, got %v", err)
	}
	if unrecoverable.Message != "repository corrupted" {
		t.Fatalf("unexpected message %q", unrecoverable.Message)
	}
	if got := f.storedStep(t); got != 1 {
		t.Fatalf("no session update must be persisted, got step %d", got)
	}
}

func TestAdvanceStep_TerminalCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.StartSession(ctx, f.user, "test module"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	for step := 1; step <= 2; step++ {
		if _, err := f.service.AdvanceStep(ctx, f.user, "test module", step); err != nil {
			t.Fatalf("AdvanceStep(%d): %v", step, err)
		}
	}

	// On the final step a good check completes without moving the cursor.
	result, err := f.service.AdvanceStep(ctx, f.user, "test module", 3)
	if err != nil {
		t.Fatalf("AdvanceStep at end: %v", err)
	}
	if result.Advanced {
		t.Fatal("must not advance past the final step")
	}
	if result.NextStep != 3 || result.Status != engine.OutcomeGood {
		t.Fatalf("unexpected result %+v", result)
	}
	if got := f.storedStep(t); got != 3 {
		t.Fatalf("expected stored step 3, got %d", got)
	}
}

func TestRenderInstructions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.StartSession(ctx, f.user, "test module"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := f.service.AdvanceStep(ctx, f.user, "test module", 1); err != nil {
		t.Fatalf("AdvanceStep: %v", err)
	}

	view, err := f.service.RenderInstructions(ctx, f.user, "test module", 2)
	if err != nil {
		t.Fatalf("RenderInstructions: %v", err)
	}
	if view.Step != 2 || view.TotalSteps != 3 {
		t.Fatalf("unexpected view %+v", view)
	}
	if !strings.Contains(view.InstructionsHTML, "<h2") {
		t.Fatalf("expected rendered heading, got %q", view.InstructionsHTML)
	}
	if !strings.Contains(view.InstructionsHTML, "<code") {
		t.Fatalf("expected fenced code block, got %q", view.InstructionsHTML)
	}
	if view.RepoName == "" {
		t.Fatal("expected repository name in view")
	}
}
