package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/campus-market-auth/internal/domain"
	"github.com/campus-market-auth/internal/pkg/id"
	"github.com/campus-market-auth/internal/pkg/validate"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldFirstName        = "first_name"
	fieldLastName         = "last_name"
	fieldPhone            = "phone"
	fieldUFEmailVerified  = "uf_email_verified"
	fieldProfileCompleted = "profile_completed"
	fieldGoogleSub        = "google_sub"
)

// Sign-in providers recorded on the account.
const (
	ProviderOTP    = "otp"
	ProviderGoogle = "google"
)

type Service interface {
	// MarkEmailVerified returns the account for email, creating it if needed,
	// with ufEmailVerified set. email must already be normalized.
	MarkEmailVerified(ctx context.Context, email string, ident Identity) (*domain.User, error)
	CompleteProfile(ctx context.Context, userID string, req domain.CompleteProfileRequest) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// Identity describes how the caller proved ownership of the address.
type Identity struct {
	Provider  string
	GoogleSub string
}

// userStore must reject a Put whose email is already owned with ErrConflict.
type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) (*domain.User, error)
}

type service struct {
	repo userStore
	now  func() time.Time
}

func NewService(repo userStore) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) MarkEmailVerified(ctx context.Context, email string, ident Identity) (*domain.User, error) {
	if ident.Provider == "" {
		ident.Provider = ProviderOTP
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		created, cerr := s.create(ctx, email, ident)
		if !errors.Is(cerr, domain.ErrConflict) {
			return created, cerr
		}
		// A concurrent first sign-in claimed the email first; join its account.
		slog.Info("user created concurrently, reloading", "email", email, "provider", ident.Provider)
		u, err = s.repo.GetByEmail(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load user: %w", domain.ErrPersistence, err)
	}

	updates := map[string]interface{}{}
	if !u.UFEmailVerified {
		updates[fieldUFEmailVerified] = true
	}
	if ident.GoogleSub != "" && u.GoogleSub != ident.GoogleSub {
		updates[fieldGoogleSub] = ident.GoogleSub
	}
	if len(updates) == 0 {
		return u, nil
	}
	updated, err := s.repo.Update(ctx, u.UserID, updates)
	if err != nil {
		return nil, fmt.Errorf("%w: mark verified: %w", domain.ErrPersistence, err)
	}
	slog.Info("user email verified", "user_id", u.UserID, "provider", ident.Provider)
	return updated, nil
}

func (s *service) create(ctx context.Context, email string, ident Identity) (*domain.User, error) {
	now := s.now().UTC()
	u := &domain.User{
		UserID:          id.New(),
		Email:           email,
		UFEmailVerified: true,
		AuthProvider:    ident.Provider,
		GoogleSub:       ident.GoogleSub,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: create user: %w", domain.ErrPersistence, err)
	}
	slog.Info("user created", "user_id", u.UserID, "provider", ident.Provider)
	return u, nil
}

func (s *service) CompleteProfile(ctx context.Context, userID string, req domain.CompleteProfileRequest) (*domain.User, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := validate.Struct(req); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	current, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !current.UFEmailVerified {
		return nil, fmt.Errorf("email not verified: %w", domain.ErrUnauthorized)
	}

	updates := map[string]interface{}{
		fieldFirstName:        req.FirstName,
		fieldLastName:         req.LastName,
		fieldProfileCompleted: true,
	}
	if req.Phone != nil {
		updates[fieldPhone] = *req.Phone
	}
	u, err := s.repo.Update(ctx, userID, updates)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: complete profile: %w", domain.ErrPersistence, err)
	}
	slog.Info("profile completed", "user_id", userID)
	return u, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}
