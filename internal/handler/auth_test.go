package handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/cs334f24/git-learner/internal/handler"
)

func TestHandleLogin_SetsStateAndRedirects(t *testing.T) {
	auth, _ := newAuthService(t)
	h := handler.NewAuthHandler(auth, false)

	rec := httptest.NewRecorder()
	h.HandleLogin(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}

	var state string
	for _, c := range rec.Result().Cookies() {
		if c.Name == "oauth_state" {
			state = c.Value
		}
	}
	if state == "" {
		t.Fatal("oauth_state cookie not set")
	}

	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	if !strings.Contains(loc.Host, "github.com") {
		t.Fatalf("redirect host = %q", loc.Host)
	}
	if got := loc.Query().Get("state"); got != state {
		t.Fatalf("state in URL %q does not match cookie %q", got, state)
	}
}

func TestHandleCallback_RejectsBadState(t *testing.T) {
	auth, _ := newAuthService(t)
	h := handler.NewAuthHandler(auth, false)

	tests := []struct {
		name   string
		cookie string
		query  string
	}{
		{"no state cookie", "", "state=abc&code=xyz"},
		{"mismatched state", "abc", "state=def&code=xyz"},
		{"missing code", "abc", "state=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/callback?"+tt.query, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "oauth_state", Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.HandleCallback(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleLogout_ClearsCookie(t *testing.T) {
	auth, _ := newAuthService(t)
	h := handler.NewAuthHandler(auth, false)

	rec := httptest.NewRecorder()
	h.HandleLogout(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "auth_token" {
			if c.MaxAge >= 0 || c.Value != "" {
				t.Fatalf("auth_token not cleared: %+v", c)
			}
			return
		}
	}
	t.Fatal("auth_token cookie not touched")
}
