package middleware

import (
	"context"
	"net/http"
	"net/url"

	"finance/internal/auth"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	sessionIDKey contextKey = "session_id"
)

type SessionLookup interface {
	Get(id string) (auth.Session, bool)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionIDKey).(string)
	return sessionID, ok && sessionID != ""
}

// WithSession attaches an authenticated identity to ctx.
func WithSession(ctx context.Context, sessionID, userID string) context.Context {
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return context.WithValue(ctx, userIDKey, userID)
}

// LoadSession resolves the session cookie. Requests with a missing, forged,
// expired or revoked cookie pass through anonymous.
func LoadSession(sessions SessionLookup, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.CookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := auth.ParseToken(secret, cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			session, ok := sessions.Get(claims.SessionID)
			if !ok || session.UserID != claims.UserID {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session.ID, session.UserID)))
		})
	}
}

// RequireLogin redirects anonymous requests to the login page, remembering
// where they were headed.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
