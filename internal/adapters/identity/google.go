package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
)

// Identity errors
var (
	ErrNotConfigured = errors.New("google sign-in is not configured")
	ErrInvalidToken  = errors.New("invalid google id token")
)

// Claims are the identity fields taken from a verified token.
type Claims struct {
	Subject string
	Email   string
	Name    string
}

// TokenVerifier checks an ID token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (Claims, error)
}

// GoogleVerifier verifies Google Sign-In ID tokens for one OAuth client.
type GoogleVerifier struct {
	clientID string
	verifier googleAuthIDTokenVerifier.Verifier
}

var _ TokenVerifier = (*GoogleVerifier)(nil)

// NewGoogleVerifier creates a verifier bound to clientID.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: strings.TrimSpace(clientID)}
}

// Verify checks signature, audience and expiry, then decodes the claims.
// PRE: idToken is the credential posted by the Google Sign-In button
// POST: Claims.Subject is non-empty on success
func (g *GoogleVerifier) Verify(ctx context.Context, idToken string) (Claims, error) {
	if g.clientID == "" {
		return Claims{}, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return Claims{}, err
	}
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return Claims{}, ErrInvalidToken
	}
	if err := g.verifier.VerifyIDToken(idToken, []string{g.clientID}); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: decode: %w", ErrInvalidToken, err)
	}
	if claimSet.Sub == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{Subject: claimSet.Sub, Email: claimSet.Email, Name: claimSet.Name}, nil
}
