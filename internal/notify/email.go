package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/jordan-wright/email"
	"github.com/yingtu35/doombot/internal/config"
	"github.com/yingtu35/doombot/internal/report"
)

// Email sends the Markdown report as a plain-text message.
type Email struct {
	cfg  config.EmailConfig
	send func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewEmail(cfg config.EmailConfig) *Email {
	return &Email{
		cfg: cfg,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

func (m *Email) Name() string { return "email" }

func (m *Email) Notify(ctx context.Context, rep *report.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = m.cfg.To
	subject := m.cfg.Subject
	if subject == "" {
		subject = rep.Title
	}
	e.Subject = fmt.Sprintf("%s — %d broken links, %d grammar issues",
		subject, rep.BrokenLinkCount(), rep.GrammarIssueCount())
	e.Text = []byte(report.Format(rep, report.StyleMarkdown))

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := m.cfg.Host + ":" + strconv.Itoa(m.cfg.Port)
	if err := m.send(e, addr, auth); err != nil {
		return fmt.Errorf("send email via %s: %w", addr, err)
	}
	return nil
}
