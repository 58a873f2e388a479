package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campus-market-auth/internal/application/session"
	"github.com/campus-market-auth/internal/application/user"
	"github.com/campus-market-auth/internal/domain"
	"github.com/campus-market-auth/internal/infrastructure/google"
	pkgemail "github.com/campus-market-auth/internal/pkg/email"
)

type GoogleSignInRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// SignInResult is a signed-in user with a fresh session token.
type SignInResult struct {
	Session *session.Result
	User    *domain.User
}

// Service ties code verification, account state and sessions together.
type Service interface {
	RequestCode(ctx context.Context, email string) error
	SignIn(ctx context.Context, email, code string) (*SignInResult, error)
	GoogleSignIn(ctx context.Context, idToken string) (*SignInResult, error)
	// CompleteProfile stores the profile and re-signs token with the new claims.
	CompleteProfile(ctx context.Context, token, userID string, req domain.CompleteProfileRequest) (*SignInResult, error)
}

type codeService interface {
	IssueCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) (*domain.SessionClaims, error)
}

type accountService interface {
	MarkEmailVerified(ctx context.Context, email string, ident user.Identity) (*domain.User, error)
	CompleteProfile(ctx context.Context, userID string, req domain.CompleteProfileRequest) (*domain.User, error)
}

type sessionService interface {
	IssueSession(ctx context.Context, subjectID string, claims domain.SessionClaims) (*session.Result, error)
	RefreshSession(ctx context.Context, existingToken string, updated domain.SessionClaims) (*session.Result, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Identity, error)
}

type ServiceDeps struct {
	Codes    codeService
	Accounts accountService
	Sessions sessionService
	Google   googleVerifier // optional
	// InstitutionalDomains restricts Google sign-in the same way codes are restricted.
	InstitutionalDomains []string
}

type service struct {
	codes    codeService
	accounts accountService
	sessions sessionService
	google   googleVerifier
	allow    pkgemail.AllowList
}

func NewService(deps ServiceDeps) Service {
	return &service{
		codes:    deps.Codes,
		accounts: deps.Accounts,
		sessions: deps.Sessions,
		google:   deps.Google,
		allow:    pkgemail.NewAllowList(deps.InstitutionalDomains),
	}
}

func (s *service) RequestCode(ctx context.Context, email string) error {
	return s.codes.IssueCode(ctx, email)
}

func (s *service) SignIn(ctx context.Context, email, code string) (*SignInResult, error) {
	if _, err := s.codes.VerifyCode(ctx, email, code); err != nil {
		return nil, err
	}
	return s.signIn(ctx, pkgemail.Normalize(email), user.Identity{Provider: user.ProviderOTP})
}

func (s *service) GoogleSignIn(ctx context.Context, idToken string) (*SignInResult, error) {
	if s.google == nil {
		return nil, fmt.Errorf("google sign-in disabled: %w", domain.ErrUnauthorized)
	}
	id, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	addr := pkgemail.Normalize(id.Email)
	if !id.EmailVerified {
		return nil, fmt.Errorf("google email not verified: %w", domain.ErrUnauthorized)
	}
	if !s.allow.Allows(addr) {
		slog.Info("google sign-in rejected", "reason", "non-institutional", "domain", pkgemail.Domain(addr))
		return nil, domain.NewValidationError("invalid or non-institutional email")
	}
	return s.signIn(ctx, addr, user.Identity{Provider: user.ProviderGoogle, GoogleSub: id.Sub})
}

func (s *service) signIn(ctx context.Context, addr string, ident user.Identity) (*SignInResult, error) {
	u, err := s.accounts.MarkEmailVerified(ctx, addr, ident)
	if err != nil {
		return nil, err
	}
	res, err := s.sessions.IssueSession(ctx, u.UserID, u.Claims())
	if err != nil {
		return nil, err
	}
	res.Session.User = u
	return &SignInResult{Session: res, User: u}, nil
}

func (s *service) CompleteProfile(ctx context.Context, token, userID string, req domain.CompleteProfileRequest) (*SignInResult, error) {
	u, err := s.accounts.CompleteProfile(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	res, err := s.sessions.RefreshSession(ctx, token, u.Claims())
	if err != nil {
		return nil, err
	}
	res.Session.User = u
	return &SignInResult{Session: res, User: u}, nil
}
