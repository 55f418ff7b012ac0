package utils

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/Kariqs/amexan-checkout/config"
)

const (
	TemplateVerifyEmail       = "verify_email"
	TemplateOrderConfirmation = "order_confirmation"
	TemplateAdminNewOrder     = "admin_new_order"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var ErrMailNotConfigured = errors.New("smtp is not configured")

// Message is one transactional email. Locale selects the translation used
// for the subject and the template's static text.
type Message struct {
	Template string
	To       string
	Locale   string
	Data     any
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type emailView struct {
	T    map[string]string
	Data any
}

// Render executes the named template in the given locale and returns the
// subject and HTML body.
func Render(name, locale string, data any) (string, string, error) {
	t := Translations(locale)
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name+".html", emailView{T: t, Data: data}); err != nil {
		return "", "", fmt.Errorf("template execution error: %w", err)
	}
	return t["subject."+name], body.String(), nil
}

type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.cfg.Address == "" || m.cfg.From == "" {
		return ErrMailNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, body, err := Render(msg.Template, msg.Locale, msg.Data)
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)
	raw := buildMessage(m.cfg.From, msg.To, subject, body)
	if err := smtp.SendMail(m.cfg.Address, auth, m.cfg.From, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	return []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		from, to, subject, body,
	))
}
