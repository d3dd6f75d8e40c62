// Package mailer sends transactional email for the portal.
package mailer

import (
	"context"
	"fmt"
	"html"

	mail "github.com/wneessen/go-mail"
)

// Mailer delivers account emails.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// Config carries SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends mail over authenticated SMTP.
type SMTPMailer struct {
	cfg Config

	// send is a seam for tests.
	send func(ctx context.Context, msg *mail.Msg) error
}

// NewSMTPMailer returns a mailer that dials the configured SMTP server
// per message.
func NewSMTPMailer(cfg Config) *SMTPMailer {
	m := &SMTPMailer{cfg: cfg}
	m.send = func(ctx context.Context, msg *mail.Msg) error {
		client, err := mail.NewClient(cfg.Host,
			mail.WithPort(cfg.Port),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
		if err != nil {
			return fmt.Errorf("smtp client: %w", err)
		}
		return client.DialAndSendWithContext(ctx, msg)
	}
	return m
}

// SendPasswordReset emails a single-use password reset link.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject("Reset your password")
	msg.SetBodyString(mail.TypeTextHTML, resetBody(resetURL))

	if err := m.send(ctx, msg); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

func resetBody(resetURL string) string {
	u := html.EscapeString(resetURL)
	return fmt.Sprintf(`<p>We received a request to reset the password for your account.</p>
<p><a href="%s">Click here to choose a new password.</a></p>
<p>The link expires in 30 minutes. If you did not request a reset you can ignore this email.</p>`, u)
}
