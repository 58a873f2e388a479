package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campus-market-auth/internal/application/auth"
	"github.com/campus-market-auth/internal/application/session"
	"github.com/campus-market-auth/internal/config"
	"github.com/campus-market-auth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) RequestCode(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockAuthSvc) SignIn(ctx context.Context, email, code string) (*auth.SignInResult, error) {
	args := m.Called(ctx, email, code)
	if r, _ := args.Get(0).(*auth.SignInResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthSvc) GoogleSignIn(ctx context.Context, idToken string) (*auth.SignInResult, error) {
	args := m.Called(ctx, idToken)
	if r, _ := args.Get(0).(*auth.SignInResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthSvc) CompleteProfile(ctx context.Context, token, userID string, req domain.CompleteProfileRequest) (*auth.SignInResult, error) {
	args := m.Called(ctx, token, userID, req)
	if r, _ := args.Get(0).(*auth.SignInResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

var testCookie = config.Cookie{Name: "session", Secure: true}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) MessageEnvelope {
	t.Helper()
	var env MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

func signInResult(token string, u *domain.User) *auth.SignInResult {
	return &auth.SignInResult{
		Session: &session.Result{
			Token:     token,
			ExpiresAt: time.Now().Add(time.Hour),
			Session:   &domain.Session{SessionID: "s1", UserID: u.UserID, Claims: u.Claims()},
		},
		User: u,
	}
}

// --- RequestCode ---

func TestRequestCode_Success(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RequestCode", mock.Anything, "albert@ufl.edu").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/otp/request", jsonBody(t, map[string]string{"email": "albert@ufl.edu"}))
	rr := httptest.NewRecorder()
	NewAuthHandler(svc, testCookie).RequestCode(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	env := decodeMessage(t, rr)
	assert.True(t, env.Success)
	assert.Equal(t, "code sent", env.Message)
}

func TestRequestCode_NonInstitutional(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RequestCode", mock.Anything, "user@gmail.com").Return(domain.NewValidationError("invalid or non-institutional email"))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/otp/request", jsonBody(t, map[string]string{"email": "user@gmail.com"}))
	rr := httptest.NewRecorder()
	NewAuthHandler(svc, testCookie).RequestCode(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	env := decodeMessage(t, rr)
	assert.Equal(t, "invalid or non-institutional email", env.Error)
	assert.Equal(t, kindValidation, env.Kind)
}

func TestRequestCode_MissingEmail(t *testing.T) {
	svc := &mockAuthSvc{}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/otp/request", jsonBody(t, map[string]string{}))
	rr := httptest.NewRecorder()
	NewAuthHandler(svc, testCookie).RequestCode(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "RequestCode", mock.Anything, mock.Anything)
}

func TestRequestCode_StorageDetailHidden(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RequestCode", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: store code: %w", domain.ErrPersistence, errors.New("dynamodb: ProvisionedThroughputExceeded")))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/otp/request", jsonBody(t, map[string]string{"email": "albert@ufl.edu"}))
	rr := httptest.NewRecorder()
	NewAuthHandler(svc, testCookie).RequestCode(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.NotContains(t, rr.Body.String(), "dynamodb")
	assert.Equal(t, kindUnavailable, decodeMessage(t, rr).Kind)
}

// --- VerifyCode ---

func TestVerifyCode_SetsCookie(t *testing.T) {
	svc := &mockAuthSvc{}
	u := &domain.User{UserID: "u1", Email: "albert@ufl.edu", UFEmailVerified: true}
	svc.On("SignIn", mock.Anything, "albert@ufl.edu", "123456").Return(signInResult("tok", u), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/otp/verify",
		jsonBody(t, map[string]string{"email": "albert@ufl.edu", "code": "123456"}))
	rr := httptest.NewRecorder()
	NewAuthHandler(svc, testCookie).VerifyCode(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var env AuthEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.Equal(t, "tok", env.Bearer)
	require.NotNil(t, env.Claims)
	assert.True(t, env.Claims.UFEmailVerified)
	assert.Equal(t, "u1", env.User.ID)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
}

func TestVerifyCode_MalformedCodeRejected(t *testing.T) {
	svc := &mockAuthSvc{}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/otp/verify",
		jsonBody(t, map[string]string{"email": "albert@ufl.edu", "code": "12ab"}))
	rr := httptest.NewRecorder()
	NewAuthHandler(svc, testCookie).VerifyCode(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyCode_ErrorKinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{domain.ErrCodeNotFound, http.StatusNotFound, kindNotFound},
		{domain.ErrCodeExpired, http.StatusGone, kindExpired},
		{domain.ErrCodeMismatch, http.StatusUnauthorized, kindMismatch},
		{domain.ErrTooManyAttempts, http.StatusTooManyRequests, kindTooManyAttempts},
		{fmt.Errorf("%w: load code: timeout", domain.ErrPersistence), http.StatusServiceUnavailable, kindUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			svc := &mockAuthSvc{}
			svc.On("SignIn", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/otp/verify",
				jsonBody(t, map[string]string{"email": "albert@ufl.edu", "code": "123456"}))
			rr := httptest.NewRecorder()
			NewAuthHandler(svc, testCookie).VerifyCode(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.kind, decodeMessage(t, rr).Kind)
			assert.Empty(t, rr.Result().Cookies())
		})
	}
}

// --- GoogleCallback ---

func TestGoogleCallback_Success(t *testing.T) {
	svc := &mockAuthSvc{}
	u := &domain.User{UserID: "u1", UFEmailVerified: true}
	svc.On("GoogleSignIn", mock.Anything, "idt").Return(signInResult("tok", u), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/google", jsonBody(t, map[string]string{"id_token": "idt"}))
	rr := httptest.NewRecorder()
	NewAuthHandler(svc, testCookie).GoogleCallback(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, rr.Result().Cookies(), 1)
}

func TestGoogleCallback_InvalidToken(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("GoogleSignIn", mock.Anything, "bad").Return(nil, fmt.Errorf("invalid google token: %w", domain.ErrUnauthorized))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/google", jsonBody(t, map[string]string{"id_token": "bad"}))
	rr := httptest.NewRecorder()
	NewAuthHandler(svc, testCookie).GoogleCallback(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, kindUnauthorized, decodeMessage(t, rr).Kind)
}
