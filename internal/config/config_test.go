package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, 10*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 5, cfg.OTP.MaxAttempts)
	assert.Equal(t, []string{"ufl.edu", "shands.ufl.edu"}, cfg.OTP.InstitutionalDomains)
	assert.Equal(t, "/verify", cfg.Gate.VerifyPath)
	assert.Equal(t, "/complete-profile", cfg.Gate.CompleteProfilePath)
	assert.Equal(t, "/buy", cfg.Gate.LandingPath)
	assert.Equal(t, []string{"/"}, cfg.Gate.PublicPaths)
	assert.False(t, cfg.Cookie.Secure)
	assert.False(t, cfg.RateTrustProxy)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("OTP_TTL", "2m")
	t.Setenv("OTP_MAX_ATTEMPTS", "3")
	t.Setenv("INSTITUTIONAL_DOMAINS", " example.edu , ,other.edu")
	t.Setenv("GATE_RESTRICTED_PATHS", "/sell,/listings/new")
	t.Setenv("RATE_LIMIT_TRUST_PROXY", "true")

	cfg := Load()

	assert.Equal(t, 2*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 3, cfg.OTP.MaxAttempts)
	assert.Equal(t, []string{"example.edu", "other.edu"}, cfg.OTP.InstitutionalDomains)
	assert.Equal(t, []string{"/sell", "/listings/new"}, cfg.Gate.RestrictedPaths)
	assert.True(t, cfg.Cookie.Secure)
	assert.True(t, cfg.RateTrustProxy)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("OTP_TTL", "ten minutes")
	t.Setenv("OTP_MAX_ATTEMPTS", "five")
	t.Setenv("SESSION_COOKIE_SECURE", "maybe")

	cfg := Load()

	assert.Equal(t, 10*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 5, cfg.OTP.MaxAttempts)
	assert.False(t, cfg.Cookie.Secure)
}
