package handler

import (
	"encoding/json"
	"net/http"

	"github.com/campus-market-auth/internal/application/auth"
	"github.com/campus-market-auth/internal/config"
	"github.com/campus-market-auth/internal/domain"
	"github.com/campus-market-auth/internal/transport/http/middleware"
)

// ProfileHandler completes the profile and hands back a token carrying the
// updated claims.
type ProfileHandler struct {
	svc    auth.Service
	cookie config.Cookie
}

func NewProfileHandler(svc auth.Service, cookie config.Cookie) *ProfileHandler {
	return &ProfileHandler{svc: svc, cookie: cookie}
}

func (h *ProfileHandler) Complete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	token, hasToken := middleware.TokenFromContext(r.Context())
	if !ok || !hasToken {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CompleteProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Error: "invalid request body", Kind: kindValidation})
		return
	}
	res, err := h.svc.CompleteProfile(r.Context(), token, claims.Subject, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	setSessionCookie(w, h.cookie, res.Session.Token, res.Session.ExpiresAt)
	writeJSON(w, http.StatusOK, signInEnvelope(res, "profile completed"))
}
