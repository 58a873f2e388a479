package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/campus-market-auth/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// AuthEnvelope wraps sign-in and token refresh responses.
type AuthEnvelope struct {
	Bearer    string                `json:"Bearer,omitempty"`
	ExpiresAt *time.Time            `json:"expires_at,omitempty"`
	Claims    *domain.SessionClaims `json:"claims,omitempty"`
	User      *SafeUser             `json:"user,omitempty"`
	Message   string                `json:"message,omitempty"`
}

// SessionEnvelope wraps current-session responses.
type SessionEnvelope struct {
	SessionID string               `json:"session_id"`
	Claims    domain.SessionClaims `json:"claims"`
	User      *SafeUser            `json:"user,omitempty"`
}

// PageEnvelope describes a page the gate let through.
type PageEnvelope struct {
	Page   string                `json:"page"`
	Claims *domain.SessionClaims `json:"claims,omitempty"`
}

// SafeUser is the public view of an account.
type SafeUser struct {
	ID               string  `json:"id"`
	Email            string  `json:"email"`
	FirstName        string  `json:"first_name,omitempty"`
	LastName         string  `json:"last_name,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	UFEmailVerified  bool    `json:"uf_email_verified"`
	ProfileCompleted bool    `json:"profile_completed"`
}

func toSafeUser(u *domain.User) *SafeUser {
	if u == nil {
		return nil
	}
	return &SafeUser{
		ID:               u.UserID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Phone:            u.Phone,
		UFEmailVerified:  u.UFEmailVerified,
		ProfileCompleted: u.ProfileCompleted,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
