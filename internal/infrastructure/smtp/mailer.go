package smtp

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/peachlease/edu-verify/internal/config"
	"github.com/peachlease/edu-verify/internal/domain"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
	Deliver(ctx context.Context, msg domain.Message) error
}

// sendFunc matches net/smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
	send     sendFunc
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		send:     smtp.SendMail,
	}
}

// SendEmail hands the message to the SMTP server. net/smtp has no context
// support, so the send runs in its own goroutine and ctx only bounds how long
// the caller waits for it.
func (m *mailer) SendEmail(ctx context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s", m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	done := make(chan error, 1)
	go func() {
		done <- m.send(addr, auth, m.from, []string{to}, []byte(msg))
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}

func (m *mailer) Deliver(ctx context.Context, msg domain.Message) error {
	return m.SendEmail(ctx, msg.To, msg.Subject, msg.Body)
}
