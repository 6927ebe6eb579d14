package handler

import (
	"net/http"

	"github.com/cs334f24/git-learner/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, sessions *service.SessionService, cookieSecure bool) {
	authHandler := NewAuthHandler(auth, cookieSecure)
	moduleHandler := NewModuleHandler(sessions)

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.Handle("GET /", OptionalAuth(auth, http.HandlerFunc(moduleHandler.HandleHome)))
	mux.Handle("GET /login", OptionalAuth(auth, http.HandlerFunc(authHandler.HandleLoginPage)))
	mux.HandleFunc("GET /auth/login", authHandler.HandleLogin)
	mux.HandleFunc("GET /auth/callback", authHandler.HandleCallback)
	mux.HandleFunc("POST /logout", authHandler.HandleLogout)

	mux.Handle("POST /modules/{module}/start",
		RequireAuth(auth, http.HandlerFunc(moduleHandler.HandleStart)))
	mux.Handle("GET /modules/{module}/step/{step}",
		RequireAuth(auth, http.HandlerFunc(moduleHandler.HandleStepPage)))
	mux.Handle("POST /modules/{module}/step/{step}",
		RequireAuth(auth, http.HandlerFunc(moduleHandler.HandleCheck)))
	mux.Handle("POST /modules/{module}/step/{step}/next",
		RequireAuth(auth, http.HandlerFunc(moduleHandler.HandleNext)))
}
