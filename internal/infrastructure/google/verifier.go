package google

import (
	"context"
	"fmt"

	"github.com/campus-market-auth/internal/domain"
	"google.golang.org/api/idtoken"
)

// Identity holds the verified claims extracted from a Google ID token.
type Identity struct {
	Sub           string
	Email         string
	EmailVerified bool
	HostedDomain  string // "hd" claim, set for Workspace accounts
	FirstName     string
	LastName      string
}

type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// Verifier verifies Google ID tokens against a specific client ID.
type Verifier struct {
	clientID string
	validate validateFunc
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID, validate: idtoken.Validate}
}

// Verify validates the ID token signature, audience and expiry.
// An invalid token is reported as domain.ErrUnauthorized.
func (v *Verifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if v.clientID == "" {
		return nil, fmt.Errorf("google sign-in not configured: %w", domain.ErrUnauthorized)
	}
	p, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("invalid google token: %w", domain.ErrUnauthorized)
	}
	return identityFromPayload(p), nil
}

func identityFromPayload(p *idtoken.Payload) *Identity {
	email, _ := p.Claims["email"].(string)
	emailVerified, _ := p.Claims["email_verified"].(bool)
	hd, _ := p.Claims["hd"].(string)
	firstName, _ := p.Claims["given_name"].(string)
	lastName, _ := p.Claims["family_name"].(string)
	return &Identity{
		Sub:           p.Subject,
		Email:         email,
		EmailVerified: emailVerified,
		HostedDomain:  hd,
		FirstName:     firstName,
		LastName:      lastName,
	}
}
