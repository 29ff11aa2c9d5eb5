package verification

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/peachlease/edu-verify/internal/domain"
)

// DefaultSubject is the subject line of every verification email.
const DefaultSubject = "Peach Lease - Verify Your University Email"

// DefaultBody is used unless a template is loaded from object storage.
const DefaultBody = `Hello!

Welcome to Peach Lease! To complete your registration and verify that you're a student at {{.University}}, please use this verification code:

{{.Code}}

This code will expire in {{.ExpiresInMinutes}} minutes.

If you didn't request this verification, please ignore this email.

Thanks,
The Peach Lease Team
`

// templateData is what a body template may reference.
type templateData struct {
	Email            string
	University       string
	Code             string
	ExpiresInMinutes int
	ExpiresAt        time.Time
}

// Renderer turns an issued verification into an email.
type Renderer struct {
	subject string
	body    *template.Template
}

// NewRenderer parses body as a text/template. Templates missing {{.Code}}
// would send useless mail, so they are rejected.
func NewRenderer(body string) (*Renderer, error) {
	tmpl, err := template.New("verification").Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse email template: %w", err)
	}
	r := &Renderer{subject: DefaultSubject, body: tmpl}

	probe, err := r.render(templateData{Code: "\x00code\x00"})
	if err != nil {
		return nil, fmt.Errorf("execute email template: %w", err)
	}
	if !bytes.Contains([]byte(probe), []byte("\x00code\x00")) {
		return nil, fmt.Errorf("email template never prints {{.Code}}")
	}
	return r, nil
}

// MustDefaultRenderer returns a renderer for DefaultBody.
func MustDefaultRenderer() *Renderer {
	r, err := NewRenderer(DefaultBody)
	if err != nil {
		panic(err)
	}
	return r
}

// Render builds the message for v. ttl is the validity window stated in the body.
func (r *Renderer) Render(v *domain.EmailVerification, ttl time.Duration) (domain.Message, error) {
	university := v.University
	if university == "" {
		university = "your university"
	}
	body, err := r.render(templateData{
		Email:            v.Email,
		University:       university,
		Code:             v.Code,
		ExpiresInMinutes: int(ttl / time.Minute),
		ExpiresAt:        v.ExpiryTime().UTC(),
	})
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{To: v.Email, Subject: r.subject, Body: body}, nil
}

func (r *Renderer) render(data templateData) (string, error) {
	var buf bytes.Buffer
	if err := r.body.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
