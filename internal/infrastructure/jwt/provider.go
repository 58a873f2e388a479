package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/campus-market-auth/internal/config"
	"github.com/campus-market-auth/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the JWT payload fields. Subject is the user id.
type Claims struct {
	SessionID        string `json:"sid"`
	UFEmailVerified  bool   `json:"ufEmailVerified"`
	ProfileCompleted bool   `json:"profileCompleted"`
	jwt.RegisteredClaims
}

// Session returns the gate-relevant claims.
func (c *Claims) Session() domain.SessionClaims {
	return domain.SessionClaims{UFEmailVerified: c.UFEmailVerified, ProfileCompleted: c.ProfileCompleted}
}

// Provider signs and verifies RS256 JWTs.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	expiry     time.Duration
	now        func() time.Time
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &Provider{
		privateKey: privKey,
		publicKey:  pubKey,
		issuer:     cfg.JWTIssuer,
		expiry:     cfg.JWTExpiry,
		now:        time.Now,
	}, nil
}

// Expiry is the lifetime of tokens minted by Sign.
func (p *Provider) Expiry() time.Duration { return p.expiry }

func (p *Provider) Sign(userID, sessionID string, sc domain.SessionClaims) (string, error) {
	now := p.now()
	claims := Claims{
		SessionID:        sessionID,
		UFEmailVerified:  sc.UFEmailVerified,
		ProfileCompleted: sc.ProfileCompleted,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    p.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()})}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Subject == "" || claims.SessionID == "" {
		return nil, errors.New("token missing subject or session")
	}
	return claims, nil
}
