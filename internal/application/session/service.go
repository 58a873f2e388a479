package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campus-market-auth/internal/domain"
	jwtinfra "github.com/campus-market-auth/internal/infrastructure/jwt"
	"github.com/campus-market-auth/internal/pkg/id"
)

// Result is a freshly minted session token.
type Result struct {
	Token     string
	ExpiresAt time.Time
	Session   *domain.Session
}

// Service mints and refreshes session tokens.
//
// The gate reads claims from the token and never from the store, so every
// change to a user's ufEmailVerified or profileCompleted flag must be followed
// by RefreshSession. Until then the gate acts on the old claims.
type Service interface {
	IssueSession(ctx context.Context, subjectID string, claims domain.SessionClaims) (*Result, error)
	RefreshSession(ctx context.Context, existingToken string, updated domain.SessionClaims) (*Result, error)
	Current(ctx context.Context, sessionID string) (*domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	UpdateClaims(ctx context.Context, sessionID string, claims domain.SessionClaims, expiresAt int64) error
	Disable(ctx context.Context, sessionID string) error
}

type tokenProvider interface {
	Sign(userID, sessionID string, sc domain.SessionClaims) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
	Expiry() time.Duration
}

type service struct {
	store  sessionStore
	tokens tokenProvider
	now    func() time.Time
}

func NewService(store sessionStore, tokens tokenProvider) Service {
	return &service{store: store, tokens: tokens, now: time.Now}
}

func (s *service) IssueSession(ctx context.Context, subjectID string, claims domain.SessionClaims) (*Result, error) {
	if subjectID == "" {
		return nil, fmt.Errorf("subject required: %w", domain.ErrBadRequest)
	}
	now := s.now().UTC()
	expiresAt := now.Add(s.tokens.Expiry())
	sess := &domain.Session{
		SessionID: id.New(),
		UserID:    subjectID,
		Claims:    claims,
		Enable:    true,
		ExpiresAt: expiresAt.Unix(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("%w: store session: %w", domain.ErrPersistence, err)
	}
	token, err := s.tokens.Sign(subjectID, sess.SessionID, claims)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	slog.Info("session issued", "user_id", subjectID, "session_id", sess.SessionID)
	return &Result{Token: token, ExpiresAt: expiresAt, Session: sess}, nil
}

func (s *service) RefreshSession(ctx context.Context, existingToken string, updated domain.SessionClaims) (*Result, error) {
	c, err := s.tokens.Verify(existingToken)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", domain.ErrUnauthorized)
	}
	expiresAt := s.now().UTC().Add(s.tokens.Expiry())
	if err := s.store.UpdateClaims(ctx, c.SessionID, updated, expiresAt.Unix()); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: update session: %w", domain.ErrPersistence, err)
	}
	token, err := s.tokens.Sign(c.Subject, c.SessionID, updated)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	slog.Info("session refreshed", "user_id", c.Subject, "session_id", c.SessionID,
		"uf_email_verified", updated.UFEmailVerified, "profile_completed", updated.ProfileCompleted)
	return &Result{
		Token:     token,
		ExpiresAt: expiresAt,
		Session: &domain.Session{
			SessionID: c.SessionID,
			UserID:    c.Subject,
			Claims:    updated,
			Enable:    true,
			ExpiresAt: expiresAt.Unix(),
		},
	}, nil
}

func (s *service) Current(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Enable {
		return nil, fmt.Errorf("session ended: %w", domain.ErrUnauthorized)
	}
	return sess, nil
}

// Logout disables the session so it can no longer be refreshed. Tokens already
// handed out keep passing the gate until they expire.
func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.store.Disable(ctx, sessionID)
}
