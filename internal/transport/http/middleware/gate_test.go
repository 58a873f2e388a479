package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campus-market-auth/internal/domain"
	"github.com/campus-market-auth/internal/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGate() *gate.Gate {
	return gate.New(gate.Config{
		PublicPaths:         []string{"/"},
		ExemptPrefixes:      []string{"/verify", "/auth", "/static"},
		RestrictedPaths:     []string{"/sell"},
		VerifyPath:          "/verify",
		CompleteProfilePath: "/complete-profile",
		LandingPath:         "/buy",
	})
}

func serveGate(t *testing.T, p TokenVerifier, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	}
	rr := httptest.NewRecorder()
	Gate(testGate(), p, testCookie)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	return rr
}

func TestGate_UnauthenticatedSell(t *testing.T) {
	rr := serveGate(t, newTestProvider(t), "/sell", "")
	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	assert.Equal(t, "/verify", rr.Header().Get("Location"))
}

func TestGate_InvalidTokenIsUnauthenticated(t *testing.T) {
	rr := serveGate(t, newTestProvider(t), "/sell", "garbage")
	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	assert.Equal(t, "/verify", rr.Header().Get("Location"))
}

func TestGate_UnverifiedSell(t *testing.T) {
	p := newTestProvider(t)
	tok, err := p.Sign("u1", "s1", domain.SessionClaims{})
	require.NoError(t, err)

	rr := serveGate(t, p, "/sell", tok)
	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	assert.Equal(t, "/verify", rr.Header().Get("Location"))
}

func TestGate_ProfileIncomplete(t *testing.T) {
	p := newTestProvider(t)
	tok, err := p.Sign("u1", "s1", domain.SessionClaims{UFEmailVerified: true})
	require.NoError(t, err)

	rr := serveGate(t, p, "/buy", tok)
	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	assert.Equal(t, "/complete-profile", rr.Header().Get("Location"))

	rr = serveGate(t, p, "/complete-profile", tok)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGate_ProfileCompleteOnCompleteProfile(t *testing.T) {
	p := newTestProvider(t)
	tok, err := p.Sign("u1", "s1", domain.SessionClaims{UFEmailVerified: true, ProfileCompleted: true})
	require.NoError(t, err)

	rr := serveGate(t, p, "/complete-profile", tok)
	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	assert.Equal(t, "/buy", rr.Header().Get("Location"))
}

func TestGate_AllowedRequestCarriesClaims(t *testing.T) {
	p := newTestProvider(t)
	tok, err := p.Sign("u1", "s1", domain.SessionClaims{UFEmailVerified: true, ProfileCompleted: true})
	require.NoError(t, err)

	var subject string
	h := Gate(testGate(), p, testCookie)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, ok := ClaimsFromContext(r.Context()); ok {
			subject = c.Subject
		}
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/sell", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u1", subject)
}

func TestGate_PublicPathAnyState(t *testing.T) {
	p := newTestProvider(t)
	unverified, err := p.Sign("u1", "s1", domain.SessionClaims{})
	require.NoError(t, err)
	complete, err := p.Sign("u1", "s1", domain.SessionClaims{UFEmailVerified: true, ProfileCompleted: true})
	require.NoError(t, err)

	for _, tok := range []string{"", "garbage", unverified, complete} {
		rr := serveGate(t, p, "/", tok)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get("Location"))
	}
}

func TestGate_RedirectPreservesMethod(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/sell", nil)
	rr := httptest.NewRecorder()
	Gate(testGate(), newTestProvider(t), testCookie)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
}
