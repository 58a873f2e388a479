package smtp

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/campus-market-auth/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{SMTPHost: "mail.local", SMTPPort: "1025", SMTPFrom: "noreply@market.local"}
}

func TestSendCode_ComposesMessage(t *testing.T) {
	m := NewMailer(testConfig())
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg string
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		assert.Nil(t, a)
		return nil
	}

	require.NoError(t, m.SendCode(context.Background(), "albert@ufl.edu", "123456", 10*time.Minute))
	assert.Equal(t, "mail.local:1025", gotAddr)
	assert.Equal(t, "noreply@market.local", gotFrom)
	assert.Equal(t, []string{"albert@ufl.edu"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: "+codeSubject)
	assert.Contains(t, gotMsg, "123456")
	assert.Contains(t, gotMsg, "10 minutes")
}

func TestSendCode_UsesAuthWhenConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.SMTPUsername, cfg.SMTPPassword = "user", "pass"
	m := NewMailer(cfg)
	m.send = func(_ string, a smtp.Auth, _ string, _ []string, _ []byte) error {
		assert.NotNil(t, a)
		return nil
	}
	require.NoError(t, m.SendCode(context.Background(), "albert@ufl.edu", "123456", time.Minute))
}

func TestSendCode_WrapsFailure(t *testing.T) {
	m := NewMailer(testConfig())
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") }

	err := m.SendCode(context.Background(), "albert@ufl.edu", "123456", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSendCode_CanceledContext(t *testing.T) {
	m := NewMailer(testConfig())
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send called after cancel")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.SendCode(ctx, "albert@ufl.edu", "123456", time.Minute), context.Canceled)
}
