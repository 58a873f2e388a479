package handler

import (
	"encoding/json"
	"net/http"

	"github.com/campus-market-auth/internal/application/auth"
	"github.com/campus-market-auth/internal/application/otp"
	"github.com/campus-market-auth/internal/config"
	"github.com/campus-market-auth/internal/domain"
	"github.com/campus-market-auth/internal/pkg/validate"
)

// AuthHandler handles code issuance, code sign-in and Google sign-in.
type AuthHandler struct {
	svc    auth.Service
	cookie config.Cookie
}

func NewAuthHandler(svc auth.Service, cookie config.Cookie) *AuthHandler {
	return &AuthHandler{svc: svc, cookie: cookie}
}

func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req otp.IssueCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Error: "invalid request body", Kind: kindValidation})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Error: err.Error(), Kind: kindValidation})
		return
	}
	if err := h.svc.RequestCode(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "code sent"})
}

func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req otp.VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Error: "invalid request body", Kind: kindValidation})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Error: err.Error(), Kind: kindValidation})
		return
	}
	res, err := h.svc.SignIn(r.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeSignIn(w, res, "email verified")
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	var req auth.GoogleSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Error: "invalid request body", Kind: kindValidation})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Error: err.Error(), Kind: kindValidation})
		return
	}
	res, err := h.svc.GoogleSignIn(r.Context(), req.IDToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeSignIn(w, res, "signed in")
}

func (h *AuthHandler) writeSignIn(w http.ResponseWriter, res *auth.SignInResult, msg string) {
	setSessionCookie(w, h.cookie, res.Session.Token, res.Session.ExpiresAt)
	writeJSON(w, http.StatusOK, signInEnvelope(res, msg))
}

func signInEnvelope(res *auth.SignInResult, msg string) AuthEnvelope {
	expires := res.Session.ExpiresAt
	var claims *domain.SessionClaims
	if res.Session.Session != nil {
		c := res.Session.Session.Claims
		claims = &c
	}
	return AuthEnvelope{
		Bearer:    res.Session.Token,
		ExpiresAt: &expires,
		Claims:    claims,
		User:      toSafeUser(res.User),
		Message:   msg,
	}
}
