package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/campus-market-auth/internal/infrastructure/jwt"
)

type contextKey string

const (
	claimsKey contextKey = "claims"
	tokenKey  contextKey = "token"
)

// TokenVerifier validates a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

// Auth returns middleware that requires a valid session token, taken from the
// Bearer header or else the session cookie, and injects its claims into context.
func Auth(verifier TokenVerifier, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r, cookieName)
			if tokenStr == "" {
				writeJSONError(w, http.StatusUnauthorized, kindUnauthorized, "missing session token")
				return
			}
			claims, err := verifier.Verify(tokenStr)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, kindUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims, tokenStr)))
		})
	}
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*jwtinfra.Claims)
	return c, ok
}

// TokenFromContext returns the raw token the claims were read from.
func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok && t != ""
}

func withClaims(ctx context.Context, claims *jwtinfra.Claims, token string) context.Context {
	ctx = context.WithValue(ctx, claimsKey, claims)
	return context.WithValue(ctx, tokenKey, token)
}

// tokenFromRequest prefers the Authorization header over the cookie.
func tokenFromRequest(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookieName == "" {
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}
