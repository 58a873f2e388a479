package handler

import (
	"net/http"
	"path"

	"github.com/campus-market-auth/internal/transport/http/middleware"
)

// Page answers page routes the gate let through. Rendering lives in the web
// client; this only confirms the page and the claims it was served under.
func Page(w http.ResponseWriter, r *http.Request) {
	env := PageEnvelope{Page: path.Clean("/" + r.URL.Path)}
	if c, ok := middleware.ClaimsFromContext(r.Context()); ok {
		sc := c.Session()
		env.Claims = &sc
	}
	writeJSON(w, http.StatusOK, env)
}
