// Package mailer delivers the transactional email the account lifecycle
// produces: verification codes, welcome notes, password reset links and
// reset confirmations. Bodies are rendered from embedded templates.
package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/django/v3"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Config carries SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	// From is the sender address stamped on every message.
	From string
}

// Sender delivers rendered messages over SMTP.
type Sender struct {
	dialer *gomail.Dialer
	from   string
	engine *django.Engine
}

// New builds a Sender with the embedded templates loaded.
func New(cfg Config) (*Sender, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("unable to scope embedded templates: %w", err)
	}

	engine := django.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("unable to load email templates: %w", err)
	}

	return &Sender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		engine: engine,
	}, nil
}

func (s *Sender) SendVerificationEmail(to, code string) error {
	return s.send(to, "Verify your email address", "verification_email", map[string]any{
		"code": code,
	})
}

func (s *Sender) SendWelcomeEmail(to, username string) error {
	return s.send(to, "Welcome to Connectify", "welcome_email", map[string]any{
		"username": username,
	})
}

func (s *Sender) SendPasswordResetEmail(to, link string) error {
	return s.send(to, "Reset your password", "password_reset_email", map[string]any{
		"link": link,
	})
}

func (s *Sender) SendResetSuccessEmail(to string) error {
	return s.send(to, "Your password has been changed", "reset_success_email", map[string]any{
		"email": to,
	})
}

func (s *Sender) send(to, subject, template string, binding map[string]any) error {
	body, err := s.render(template, binding)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	return s.dialer.DialAndSend(m)
}

func (s *Sender) render(template string, binding map[string]any) (string, error) {
	buf := new(bytes.Buffer)
	if err := s.engine.Render(buf, template, binding); err != nil {
		return "", fmt.Errorf("unable to render template %s: %w", template, err)
	}
	return buf.String(), nil
}
