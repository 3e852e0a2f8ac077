package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

const (
	SessionCookieName = "session"
	HookKeyHeader     = "X-Hook-Key"
)

// SessionVerifier reports whether a session token is live.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// ErrorWriter renders err as the API error response.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// SessionToken returns the token from the session cookie or, failing that,
// from a bearer Authorization header.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}

	return ""
}

// RequireSession rejects requests without a live session with
// unauthorizedErr.
func RequireSession(verifier SessionVerifier, unauthorizedErr error, writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := verifier.Verify(r.Context(), SessionToken(r))
			if err != nil {
				writeErr(w, r, err)
				return
			}
			if !ok {
				writeErr(w, r, unauthorizedErr)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireHookKey admits requests whose X-Hook-Key equals secret. An empty
// secret rejects every request.
func RequireHookKey(secret string, unauthorizedErr error, writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HookKeyHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
				writeErr(w, r, unauthorizedErr)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
