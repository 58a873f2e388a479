package google

import (
	"context"
	"errors"
	"testing"

	"github.com/campus-market-auth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func TestVerify_ExtractsClaims(t *testing.T) {
	v := &Verifier{clientID: "client", validate: func(_ context.Context, token, aud string) (*idtoken.Payload, error) {
		assert.Equal(t, "tok", token)
		assert.Equal(t, "client", aud)
		return &idtoken.Payload{Subject: "g-1", Claims: map[string]interface{}{
			"email":          "albert@ufl.edu",
			"email_verified": true,
			"hd":             "ufl.edu",
			"given_name":     "Albert",
			"family_name":    "Gator",
		}}, nil
	}}

	id, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, &Identity{
		Sub: "g-1", Email: "albert@ufl.edu", EmailVerified: true,
		HostedDomain: "ufl.edu", FirstName: "Albert", LastName: "Gator",
	}, id)
}

func TestVerify_InvalidToken(t *testing.T) {
	v := &Verifier{clientID: "client", validate: func(context.Context, string, string) (*idtoken.Payload, error) {
		return nil, errors.New("idtoken: token expired")
	}}

	_, err := v.Verify(context.Background(), "tok")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerify_NotConfigured(t *testing.T) {
	_, err := NewVerifier("").Verify(context.Background(), "tok")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}
