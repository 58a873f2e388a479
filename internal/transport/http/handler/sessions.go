package handler

import (
	"net/http"

	"github.com/campus-market-auth/internal/application/session"
	"github.com/campus-market-auth/internal/application/user"
	"github.com/campus-market-auth/internal/config"
	"github.com/campus-market-auth/internal/transport/http/middleware"
)

// SessionHandler handles session endpoints.
type SessionHandler struct {
	svc    session.Service
	users  user.Service
	cookie config.Cookie
}

func NewSessionHandler(svc session.Service, users user.Service, cookie config.Cookie) *SessionHandler {
	return &SessionHandler{svc: svc, users: users, cookie: cookie}
}

// GetCurrent returns the claims of the presented token alongside the stored
// account, which may already be ahead of the token.
func (h *SessionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if _, err := h.svc.Current(r.Context(), claims.SessionID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	u, err := h.users.Get(r.Context(), claims.Subject)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{
		SessionID: claims.SessionID,
		Claims:    claims.Session(),
		User:      toSafeUser(u),
	})
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Logout(r.Context(), claims.SessionID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	clearSessionCookie(w, h.cookie)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}
