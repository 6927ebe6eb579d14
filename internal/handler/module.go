package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cs334f24/git-learner/internal/domain"
	"github.com/cs334f24/git-learner/internal/service"
)

// ModuleHandler handles module listing, session start, and the step page
// with its check/next endpoints.
type ModuleHandler struct {
	sessions *service.SessionService
}

// NewModuleHandler creates a new ModuleHandler.
func NewModuleHandler(sessions *service.SessionService) *ModuleHandler {
	return &ModuleHandler{sessions: sessions}
}

// HandleHome renders the module listing.
// GET /
func (h *ModuleHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	modules, err := h.sessions.ListModules(r.Context())
	if err != nil {
		slog.Error("list modules", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	renderPage(w, "home.html", map[string]any{
		"User":    UserFromContext(r.Context()),
		"Modules": modules,
	})
}

// HandleStart starts (or restarts) a session for a module and redirects into
// its first step.
// POST /modules/{module}/start
func (h *ModuleHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	moduleName := r.PathValue("module")

	target, err := h.sessions.StartSession(r.Context(), user, moduleName)
	if err != nil {
		if errors.Is(err, domain.ErrModuleNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		var provErr *domain.ProvisioningError
		if errors.As(err, &provErr) {
			slog.Error("provision repository", "module", moduleName, "user", user.GithubLogin, "error", err)
			http.Error(w, "Could not provision a repository. Please try again.", http.StatusBadGateway)
			return
		}
		slog.Error("start session", "module", moduleName, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
}

// HandleStepPage renders the instructions for a step. A step URL that does
// not match the stored cursor redirects to where the learner actually is.
// GET /modules/{module}/step/{step}
func (h *ModuleHandler) HandleStepPage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	moduleName := r.PathValue("module")

	step, err := strconv.Atoi(r.PathValue("step"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	view, err := h.sessions.RenderInstructions(r.Context(), user, moduleName, step)
	if err != nil {
		if errors.Is(err, domain.ErrStepMismatch) {
			current, cerr := h.sessions.CurrentStep(r.Context(), user, moduleName)
			if cerr == nil {
				http.Redirect(w, r, stepPath(moduleName, current), http.StatusSeeOther)
				return
			}
		}
		handleModuleError(w, err)
		return
	}

	renderPage(w, "step.html", map[string]any{
		"User":         user,
		"View":         view,
		"Instructions": template.HTML(view.InstructionsHTML),
	})
}

// HandleCheck grades the current step and reports the outcome.
// POST /modules/{module}/step/{step}
// Response: {"status": "...", "message": "..."}
func (h *ModuleHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	moduleName := r.PathValue("module")

	step, err := strconv.Atoi(r.PathValue("step"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid step.")
		return
	}

	result, err := h.sessions.CheckCurrentStep(r.Context(), user, moduleName, step)
	if err != nil {
		writeModuleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  string(result.Outcome),
		"message": result.Message,
	})
}

// HandleNext attempts to advance past the current step.
// POST /modules/{module}/step/{step}/next
// Response: {"url": "..."} on advance, {"status": "...", "toast": "..."} otherwise.
func (h *ModuleHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	moduleName := r.PathValue("module")

	step, err := strconv.Atoi(r.PathValue("step"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid step.")
		return
	}

	result, err := h.sessions.AdvanceStep(r.Context(), user, moduleName, step)
	if err != nil {
		var unrecoverable *domain.UnrecoverableError
		if errors.As(err, &unrecoverable) {
			// Fatal for this session; the cursor was left untouched.
			writeJSON(w, http.StatusOK, map[string]string{
				"status": "Unrecoverable",
				"toast":  unrecoverable.Message,
			})
			return
		}
		writeModuleError(w, err)
		return
	}

	if result.Advanced {
		writeJSON(w, http.StatusOK, map[string]string{"url": result.URL})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": string(result.Status),
		"toast":  result.Toast,
	})
}

func stepPath(moduleName string, step int) string {
	return "/modules/" + url.PathEscape(moduleName) + "/step/" + strconv.Itoa(step)
}

// handleModuleError maps domain errors to plain-text HTTP responses for page
// requests.
func handleModuleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrModuleNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrInvalidStep),
		errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	case errors.Is(err, domain.ErrStepMismatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("module operation", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// writeModuleError maps domain errors to JSON responses for the check/next
// endpoints.
func writeModuleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrModuleNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrInvalidStep),
		errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, domain.ErrStepMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("module operation", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
