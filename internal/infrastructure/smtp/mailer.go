package smtp

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/smtp"
	"time"

	"github.com/campus-market-auth/internal/config"
)

const codeSubject = "Your campus marketplace verification code"

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer delivers one-time codes by email.
type Mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
	send     sendMailFunc
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		send:     smtp.SendMail,
	}
}

// SendCode emails code to the given address. net/smtp has no context support,
// so ctx is only checked before dialing.
func (m *Mailer) SendCode(ctx context.Context, to, code string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := fmt.Sprintf("Your verification code is %s.\r\n\r\nIt expires in %d minutes. "+
		"If you did not request it, ignore this email.", code, int(math.Ceil(ttl.Minutes())))
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, codeSubject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := m.send(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	slog.Debug("verification code emailed", "to", to)
	return nil
}
