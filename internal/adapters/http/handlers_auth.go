package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"pefitness/internal/adapters/http/middleware"
	"pefitness/internal/application/orchestrators"
)

type loginPage struct {
	Email          string
	Error          string
	GoogleClientID string
}

func (s *Server) newLoginPage() loginPage {
	p := loginPage{}
	if s.deps.Verifier != nil {
		p.GoogleClientID = s.deps.GoogleClientID
	}
	return p
}

// handleLoginForm handles GET /login
func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if middleware.IsStaff(r.Context()) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", "老師登入", s.newLoginPage())
}

// handleLogin handles POST /login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.LoginInput{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		AccountStore: s.deps.Accounts,
		Now:          s.deps.Now,
	})
	if err != nil {
		if !errors.Is(err, orchestrators.ErrInvalidCredentials) && !errors.Is(err, orchestrators.ErrAccountLocked) {
			internalError(w, err)
			return
		}
		page := s.newLoginPage()
		page.Email = input.Email
		page.Error = err.Error()
		s.render(w, r, http.StatusUnauthorized, "login.html", "老師登入", page)
		return
	}

	if err := s.startSession(w, result); err != nil {
		internalError(w, err)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleLogout handles POST /logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		s.sessions.Delete(cookie.Value)
	}
	s.cookies.ClearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type googleSignInRequest struct {
	Credential string `json:"credential"`
}

// handleGoogleSignIn handles POST /auth/google with the ID token returned by
// the Google Sign-In client.
func (s *Server) handleGoogleSignIn(w http.ResponseWriter, r *http.Request) {
	if s.deps.Verifier == nil {
		writeJSONError(w, http.StatusNotFound, "Google Sign-In is not enabled")
		return
	}
	var req googleSignInRequest
	if err := strictDecode(w, r, &req); err != nil || strings.TrimSpace(req.Credential) == "" {
		writeJSONError(w, http.StatusBadRequest, "credential is required")
		return
	}

	result, err := orchestrators.ExecuteGoogleSignIn(r.Context(), req.Credential, orchestrators.GoogleSignInDeps{
		Verifier:     s.deps.Verifier,
		AccountStore: s.deps.Accounts,
	})
	switch {
	case errors.Is(err, orchestrators.ErrInvalidCredentials), errors.Is(err, orchestrators.ErrNotStaff):
		writeJSONError(w, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		internalError(w, err)
		return
	}

	if err := s.startSession(w, result); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect": "/dashboard"})
}

func (s *Server) startSession(w http.ResponseWriter, result orchestrators.LoginResult) error {
	token, err := s.sessions.Create(middleware.Session{
		AccountID:   result.AccountID,
		Email:       result.Email,
		DisplayName: result.DisplayName,
		Role:        result.Role,
	})
	if err != nil {
		return err
	}
	s.cookies.SetSession(w, token)
	return nil
}

// handleDashboard handles GET /dashboard. Without a staff session it
// answers 403 with the access notice.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok || !middleware.IsStaff(r.Context()) {
		s.render(w, r, http.StatusForbidden, "forbidden.html", "存取權限不足", nil)
		return
	}
	s.render(w, r, http.StatusOK, "dashboard.html", "老師管理後台", sess)
}

// handleOpsStats handles GET /api/ops/stats (staff only).
func (s *Server) handleOpsStats(w http.ResponseWriter, r *http.Request) {
	if s.deps.Collector == nil {
		writeJSONError(w, http.StatusNotFound, "instrumentation disabled")
		return
	}
	window := time.Hour
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeJSONError(w, http.StatusBadRequest, "window must be a positive duration")
			return
		}
		window = d
	}
	writeJSON(w, http.StatusOK, s.deps.Collector.Snapshot(s.deps.Now().Add(-window), 10))
}
