package smtp

import (
	"context"
	"fmt"
	"net/smtp"
	"time"
)

// SendFunc matches net/smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer delivers verification codes by email.
type Mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
	ttl      time.Duration
	send     SendFunc
}

type Option func(*Mailer)

// WithSendFunc replaces the transport, mainly for tests.
func WithSendFunc(f SendFunc) Option {
	return func(m *Mailer) { m.send = f }
}

func NewMailer(host, port, from, username, password string, codeTTL time.Duration, opts ...Option) *Mailer {
	m := &Mailer{
		host:     host,
		port:     port,
		from:     from,
		username: username,
		password: password,
		ttl:      codeTTL,
		send:     smtp.SendMail,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// SendOTP emails code to the recipient. net/smtp has no context support, so
// ctx is only checked before dialing.
func (m *Mailer) SendOTP(ctx context.Context, to, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := fmt.Sprintf("Your verification code is %s.\r\n\r\nIt expires in %d minutes. If you did not request it, ignore this email.",
		code, int(m.ttl.Minutes()))
	return m.sendEmail(to, "Your verification code", body)
}

func (m *Mailer) sendEmail(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := m.send(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
