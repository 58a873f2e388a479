package middleware

import (
	"log/slog"
	"net/http"

	"github.com/campus-market-auth/internal/gate"
)

// Gate enforces the sign-up gate on page routes. A missing or invalid token
// is the unauthenticated state; the gate itself never fails a request.
func Gate(g *gate.Gate, verifier TokenVerifier, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g.Exempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			var state gate.State
			ctx := r.Context()
			if tokenStr := tokenFromRequest(r, cookieName); tokenStr != "" {
				if claims, err := verifier.Verify(tokenStr); err == nil {
					state = gate.State{
						Authenticated:    true,
						UFEmailVerified:  claims.UFEmailVerified,
						ProfileCompleted: claims.ProfileCompleted,
					}
					ctx = withClaims(ctx, claims, tokenStr)
				}
			}

			d := g.Evaluate(state, r.URL.Path)
			if d.Action == gate.Redirect {
				slog.Debug("gate redirect", "path", r.URL.Path, "rule", d.Rule, "target", d.Target)
				http.Redirect(w, r, d.Target, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
