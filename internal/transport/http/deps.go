package http

import (
	"context"
	"time"

	"github.com/campus-market-auth/internal/application/otp"
	"github.com/campus-market-auth/internal/domain"
	"github.com/campus-market-auth/internal/infrastructure/google"
	jwtinfra "github.com/campus-market-auth/internal/infrastructure/jwt"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	SessionRepo SessionRepository
	CodeRepo    otp.CodeStore
	CodeSender  otp.CodeSender
	Tokens      TokenProvider
	Google      *google.Verifier // nil disables Google sign-in
}

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) (*domain.User, error)
}

// SessionRepository is the minimal interface the router requires from a session store.
type SessionRepository interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	UpdateClaims(ctx context.Context, sessionID string, claims domain.SessionClaims, expiresAt int64) error
	Disable(ctx context.Context, sessionID string) error
}

// TokenProvider signs and verifies session tokens.
type TokenProvider interface {
	Sign(userID, sessionID string, sc domain.SessionClaims) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
	Expiry() time.Duration
}
