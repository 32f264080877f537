package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const visitorContextKey contextKey = "visitor"

// VisitorCookieName names the anonymous visitor cookie.
const VisitorCookieName = "pe_visitor"

const visitorMaxAge = 365 * 24 * 60 * 60

// Visitor returns middleware that gives every browser a stable anonymous id.
// The id tags stored records and keys the narrative in-flight guard.
func Visitor(cookies Cookies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(VisitorCookieName); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookieName,
					Value:    id,
					HttpOnly: true,
					Secure:   cookies.Secure,
					SameSite: http.SameSiteLaxMode,
					Path:     "/",
					MaxAge:   visitorMaxAge,
				})
			}
			next.ServeHTTP(w, r.WithContext(ContextWithVisitor(r.Context(), id)))
		})
	}
}

// VisitorFromContext returns the anonymous visitor id, or "".
func VisitorFromContext(ctx context.Context) string {
	id, _ := ctx.Value(visitorContextKey).(string)
	return id
}

// ContextWithVisitor returns a context carrying the visitor id.
func ContextWithVisitor(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, visitorContextKey, id)
}

// OwnerID returns the id records are tagged with: the staff account when
// signed in, else the visitor id.
func OwnerID(ctx context.Context) string {
	if s, ok := GetSessionFromContext(ctx); ok {
		return s.AccountID
	}
	return VisitorFromContext(ctx)
}
