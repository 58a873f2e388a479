package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/campus-market-auth/internal/domain"
	pkgemail "github.com/campus-market-auth/internal/pkg/email"
	"github.com/campus-market-auth/internal/pkg/id"
	"github.com/campus-market-auth/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

const (
	codeMin = 100000
	codeMax = 999999
)

const msgInvalidEmail = "invalid or non-institutional email"

type IssueCodeRequest struct {
	Email string `json:"email" validate:"required"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// Service issues and verifies one-time codes.
type Service interface {
	IssueCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) (*domain.SessionClaims, error)
}

// CodeStore is the credential store. Every method except Replace and Get is a
// single conditional write keyed on the code id.
type CodeStore interface {
	Replace(ctx context.Context, c *domain.OneTimeCode) error
	Get(ctx context.Context, email string) (*domain.OneTimeCode, error)
	IncrementAttempts(ctx context.Context, email, codeID string) (int, error)
	Consume(ctx context.Context, email, codeID string, maxAttempts int) error
	Delete(ctx context.Context, email, codeID string) error
}

// CodeSender hands a freshly issued code to the delivery channel.
type CodeSender interface {
	SendCode(ctx context.Context, to, code string, ttl time.Duration) error
}

type Config struct {
	TTL                  time.Duration
	MaxAttempts          int
	InstitutionalDomains []string
	HashCost             int
}

type ServiceDeps struct {
	Store  CodeStore
	Sender CodeSender // optional
	Config Config
	Now    func() time.Time // optional, defaults to time.Now
}

type service struct {
	store       CodeStore
	sender      CodeSender
	allow       pkgemail.AllowList
	ttl         time.Duration
	maxAttempts int
	hashCost    int
	now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	cost := deps.Config.HashCost
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &service{
		store:       deps.Store,
		sender:      deps.Sender,
		allow:       pkgemail.NewAllowList(deps.Config.InstitutionalDomains),
		ttl:         deps.Config.TTL,
		maxAttempts: deps.Config.MaxAttempts,
		hashCost:    cost,
		now:         now,
	}
}

func (s *service) IssueCode(ctx context.Context, email string) error {
	addr, err := s.checkEmail(email)
	if err != nil {
		return err
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}

	now := s.now().UTC()
	c := &domain.OneTimeCode{
		Email:     addr,
		CodeID:    id.New(),
		CodeHash:  string(hash),
		Attempts:  0,
		ExpiresAt: expiryUnix(now.Add(s.ttl)),
		CreatedAt: now,
	}
	if err := s.store.Replace(ctx, c); err != nil {
		return fmt.Errorf("%w: store code: %w", domain.ErrPersistence, err)
	}
	slog.Info("one-time code issued", "email", addr, "code_id", c.CodeID)

	if s.sender == nil {
		return nil
	}
	if err := s.sender.SendCode(ctx, addr, code, s.ttl); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDelivery, err)
	}
	return nil
}

func (s *service) VerifyCode(ctx context.Context, email, code string) (*domain.SessionClaims, error) {
	addr, err := s.checkEmail(email)
	if err != nil {
		return nil, err
	}

	c, err := s.store.Get(ctx, addr)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("%w: load code: %w", domain.ErrPersistence, err)
	}

	if c.Expired(s.now()) {
		if err := s.store.Delete(ctx, addr, c.CodeID); err != nil {
			slog.Warn("failed to delete expired one-time code", "email", addr, "code_id", c.CodeID, "err", err)
		}
		return nil, domain.ErrCodeExpired
	}
	// A record left over from an exhausted code whose delete failed.
	if c.Attempts >= s.maxAttempts {
		s.discard(ctx, c)
		return nil, domain.ErrTooManyAttempts
	}

	if bcrypt.CompareHashAndPassword([]byte(c.CodeHash), []byte(code)) != nil {
		return nil, s.recordMismatch(ctx, c)
	}

	if err := s.store.Consume(ctx, addr, c.CodeID, s.maxAttempts); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Another request consumed, replaced or exhausted this code first.
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("%w: consume code: %w", domain.ErrPersistence, err)
	}
	slog.Info("one-time code verified", "email", addr, "code_id", c.CodeID)
	return &domain.SessionClaims{UFEmailVerified: true}, nil
}

func (s *service) recordMismatch(ctx context.Context, c *domain.OneTimeCode) error {
	attempts, err := s.store.IncrementAttempts(ctx, c.Email, c.CodeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCodeNotFound
		}
		return fmt.Errorf("%w: record attempt: %w", domain.ErrPersistence, err)
	}
	if attempts >= s.maxAttempts {
		s.discard(ctx, c)
		slog.Warn("one-time code exhausted", "email", c.Email, "code_id", c.CodeID, "attempts", attempts)
		return domain.ErrTooManyAttempts
	}
	return domain.ErrCodeMismatch
}

// discard deletes an exhausted code. Consume refuses exhausted codes anyway,
// so a failed delete is logged rather than surfaced.
func (s *service) discard(ctx context.Context, c *domain.OneTimeCode) {
	if err := s.store.Delete(ctx, c.Email, c.CodeID); err != nil {
		slog.Warn("failed to delete exhausted one-time code", "email", c.Email, "code_id", c.CodeID, "err", err)
	}
}

func (s *service) checkEmail(email string) (string, error) {
	addr := pkgemail.Normalize(email)
	if !validate.Email(addr) || !s.allow.Allows(addr) {
		return "", domain.NewValidationError(msgInvalidEmail)
	}
	return addr, nil
}

// expiryUnix rounds t up to a whole second so a code never expires before
// creation+TTL.
func expiryUnix(t time.Time) int64 {
	sec := t.Unix()
	if t.Nanosecond() > 0 {
		sec++
	}
	return sec
}

// generateCode returns a uniformly random code in [codeMin, codeMax].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}
