package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"groupregistration/internal/domain"
)

type contextKey string

const (
	identityKey   contextKey = "identity"
	tenantKey     contextKey = "tenant"
	requestLogKey contextKey = "requestLog"
)

// SetIdentity returns a context carrying the caller's identity.
func SetIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller's identity, or NoIdentity when the
// request was not authenticated.
func IdentityFromContext(ctx context.Context) domain.Identity {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	if !ok {
		return domain.NoIdentity()
	}
	return id
}

// OptionalAuth reads a token from the Authorization Bearer header or, failing
// that, from cookieName and stores the verified identity in the request
// context. Missing or invalid tokens leave the request anonymous; deciding
// what anonymous callers may do is up to the handler.
func OptionalAuth(verifier domain.IdentityVerifier, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" && cookieName != "" {
				if c, err := r.Cookie(cookieName); err == nil {
					token = c.Value
				}
			}
			if token != "" {
				id, err := verifier.Verify(token)
				if err != nil {
					logger.Debug("ignoring invalid token", "error", err)
				} else {
					r = r.WithContext(SetIdentity(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// LoginRedirect sends anonymous GET requests to loginURL with the original
// request URL in the url query parameter. Other anonymous requests pass
// through unchanged. An empty loginURL disables the redirect.
func LoginRedirect(loginURL string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if loginURL == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				if _, ok := IdentityFromContext(r.Context()).Username(); !ok {
					logger.Info("redirecting to login", "path", r.URL.Path)
					http.Redirect(w, r, loginURL+"?url="+url.QueryEscape(requestURL(r)), http.StatusFound)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
