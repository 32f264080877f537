package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"pefitness/internal/adapters/identity"
	"pefitness/internal/domain/account"
)

// AccountStoreForGoogle defines the store interface needed by Google sign-in.
type AccountStoreForGoogle interface {
	GetByGoogleSubject(ctx context.Context, subject string) (account.Account, error)
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// GoogleSignInDeps holds dependencies for ExecuteGoogleSignIn.
type GoogleSignInDeps struct {
	Verifier     identity.TokenVerifier
	AccountStore AccountStoreForGoogle
}

var ErrNotStaff = errors.New("此 Google 帳戶未獲授權")

// ExecuteGoogleSignIn signs in a staff member with a Google ID token.
// Only existing accounts are admitted; the first sign-in links the Google
// subject to the account with the same email.
// PRE: idToken is non-empty
// POST: returns account info or ErrInvalidCredentials / ErrNotStaff
func ExecuteGoogleSignIn(ctx context.Context, idToken string, deps GoogleSignInDeps) (LoginResult, error) {
	claims, err := deps.Verifier.Verify(ctx, idToken)
	if err != nil {
		slog.Info("auth_event", "event", "google_login_failed", "reason", "invalid_token", "error", err)
		return LoginResult{}, ErrInvalidCredentials
	}

	if acct, err := deps.AccountStore.GetByGoogleSubject(ctx, claims.Subject); err == nil {
		slog.Info("auth_event", "event", "login_success", "email", acct.Email, "role", acct.Role, "method", "google")
		return resultFor(acct), nil
	}

	email := strings.TrimSpace(claims.Email)
	if email == "" {
		return LoginResult{}, ErrNotStaff
	}
	acct, err := deps.AccountStore.GetByEmail(ctx, email)
	if err != nil {
		slog.Info("auth_event", "event", "google_login_failed", "email", email, "reason", "not_staff")
		return LoginResult{}, ErrNotStaff
	}

	acct.GoogleSubject = claims.Subject
	if acct.DisplayName == "" {
		acct.DisplayName = claims.Name
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return LoginResult{}, err
	}
	slog.Info("auth_event", "event", "google_linked", "email", acct.Email)
	return resultFor(acct), nil
}
