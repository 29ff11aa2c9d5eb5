package smtp

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/peachlease/edu-verify/internal/config"
	"github.com/peachlease/edu-verify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMailer(send sendFunc, username string) *mailer {
	m := NewMailer(&config.Config{
		SMTPHost:     "mail.local",
		SMTPPort:     "1025",
		SMTPFrom:     "noreply@peachlease.com",
		SMTPUsername: username,
		SMTPPassword: "secret",
	}).(*mailer)
	m.send = send
	return m
}

func TestDeliver_ComposesMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg string
	var gotAuth smtp.Auth
	m := newTestMailer(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, string(msg)
		return nil
	}, "")

	err := m.Deliver(context.Background(), domain.Message{To: "student@uga.edu", Subject: "Hi", Body: "Code: 123456"})
	require.NoError(t, err)
	assert.Equal(t, "mail.local:1025", gotAddr)
	assert.Nil(t, gotAuth)
	assert.Equal(t, "noreply@peachlease.com", gotFrom)
	assert.Equal(t, []string{"student@uga.edu"}, gotTo)
	assert.Contains(t, gotMsg, "To: student@uga.edu\r\n")
	assert.Contains(t, gotMsg, "Subject: Hi\r\n")
	assert.Contains(t, gotMsg, "\r\n\r\nCode: 123456")
}

func TestDeliver_UsesPlainAuthWhenUsernameSet(t *testing.T) {
	var gotAuth smtp.Auth
	m := newTestMailer(func(_ string, a smtp.Auth, _ string, _ []string, _ []byte) error {
		gotAuth = a
		return nil
	}, "user")

	require.NoError(t, m.Deliver(context.Background(), domain.Message{To: "a@uga.edu"}))
	assert.NotNil(t, gotAuth)
}

func TestDeliver_SendErrorIsWrapped(t *testing.T) {
	boom := errors.New("550 mailbox unavailable")
	m := newTestMailer(func(string, smtp.Auth, string, []string, []byte) error { return boom }, "")

	err := m.Deliver(context.Background(), domain.Message{To: "a@uga.edu"})
	assert.ErrorIs(t, err, boom)
}

func TestDeliver_ContextDeadlineBoundsWait(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	m := newTestMailer(func(string, smtp.Auth, string, []string, []byte) error {
		<-release
		return nil
	}, "")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := m.Deliver(ctx, domain.Message{To: "a@uga.edu"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
