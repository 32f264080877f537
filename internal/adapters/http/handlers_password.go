package web

import (
	"errors"
	"net/http"

	"pefitness/internal/adapters/http/middleware"
	"pefitness/internal/application/orchestrators"
	"pefitness/internal/domain/account"
)

type passwordPage struct {
	Error string
	Done  bool
}

// handlePasswordForm handles GET /account/password (staff only).
func (s *Server) handlePasswordForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "password.html", "更改密碼", passwordPage{})
}

// handlePasswordChange handles POST /account/password (staff only).
func (s *Server) handlePasswordChange(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       sess.AccountID,
		CurrentPassword: r.PostFormValue("current_password"),
		NewPassword:     r.PostFormValue("new_password"),
	}, orchestrators.ChangePasswordDeps{AccountStore: s.deps.Accounts})

	switch {
	case err == nil:
		s.render(w, r, http.StatusOK, "password.html", "更改密碼", passwordPage{Done: true})
	case errors.Is(err, orchestrators.ErrPasswordFieldsRequired),
		errors.Is(err, orchestrators.ErrCurrentPasswordWrong),
		errors.Is(err, orchestrators.ErrNewPasswordSame):
		s.render(w, r, http.StatusBadRequest, "password.html", "更改密碼", passwordPage{Error: err.Error()})
	case errors.Is(err, account.ErrPasswordTooShort):
		s.render(w, r, http.StatusBadRequest, "password.html", "更改密碼", passwordPage{Error: "新密碼最少需要 12 個字元"})
	default:
		internalError(w, err)
	}
}
