// Package mail delivers login-link messages.
package mail

import (
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/99minutos/admin-api/internal/core/ports"
)

const subject = "Your sign-in link"

var htmlBody = template.Must(template.New("login-link").Parse(
	`<p>Hello {{.Name}},</p>
<p><a href="{{.Link}}">Sign in to the admin console</a></p>
<p>The link expires shortly and can only be used to start a new session.</p>`))

// Config captures the SMTP settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// LinkURL is the frontend page that exchanges ?token= for a session.
	LinkURL string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends login links over SMTP.
type SMTPMailer struct {
	dialer  dialer
	from    string
	linkURL string
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	return &SMTPMailer{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:    cfg.From,
		linkURL: cfg.LinkURL,
	}
}

func (m *SMTPMailer) SendLoginLink(ctx context.Context, job ports.LoginLinkJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := m.message(job)
	if err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send login link: %w", err)
	}
	return nil
}

func (m *SMTPMailer) message(job ports.LoginLinkJob) (*gomail.Message, error) {
	link, err := LoginLink(m.linkURL, job.Token)
	if err != nil {
		return nil, err
	}

	var html strings.Builder
	if err := htmlBody.Execute(&html, struct{ Name, Link string }{job.Name, link}); err != nil {
		return nil, fmt.Errorf("render login link: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", job.Email)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", fmt.Sprintf("Hello %s,\n\nSign in here: %s\n", job.Name, link))
	msg.AddAlternative("text/html", html.String())
	return msg, nil
}

// LoginLink appends token as the token query parameter of base.
func LoginLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("login link url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// LogMailer writes login links to the log instead of sending them. Used when
// no SMTP host is configured.
type LogMailer struct {
	linkURL string
	log     zerolog.Logger
}

func NewLogMailer(linkURL string, log zerolog.Logger) *LogMailer {
	return &LogMailer{linkURL: linkURL, log: log}
}

func (m *LogMailer) SendLoginLink(_ context.Context, job ports.LoginLinkJob) error {
	link, err := LoginLink(m.linkURL, job.Token)
	if err != nil {
		return err
	}
	m.log.Info().Str("email", job.Email).Str("link", link).Msg("login link (smtp disabled)")
	return nil
}
