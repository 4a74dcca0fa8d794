package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/mail"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFiles embed.FS

const sendTimeout = 30 * time.Second

var subjects = map[mail.Template]string{
	mail.TemplateConfirmation:  "Please confirm your email",
	mail.TemplateWelcome:       "Welcome",
	mail.TemplateGoodbye:       "Your account has been deleted",
	mail.TemplateResetPassword: "Reset your password",
}

// Mailer renders templated mail and hands it to a Sender. Notify is
// asynchronous; call Wait before shutdown to flush pending sends.
type Mailer struct {
	sender    mail.Sender
	log       *zap.Logger
	templates *template.Template
	wg        sync.WaitGroup
}

func NewMailer(sender mail.Sender, log *zap.Logger) (*Mailer, error) {
	t, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &Mailer{sender: sender, log: log, templates: t}, nil
}

func (m *Mailer) Render(tmpl mail.Template, to mail.Recipient) (mail.Message, error) {
	if !tmpl.Valid() {
		return mail.Message{}, fmt.Errorf("unknown mail template %q", tmpl)
	}
	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, string(tmpl)+".html", to); err != nil {
		return mail.Message{}, fmt.Errorf("render %s: %w", tmpl, err)
	}
	return mail.Message{To: to.Email, Subject: subjects[tmpl], HTML: buf.String()}, nil
}

// Send renders and delivers synchronously.
func (m *Mailer) Send(ctx context.Context, tmpl mail.Template, to mail.Recipient) error {
	msg, err := m.Render(tmpl, to)
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, msg)
}

func (m *Mailer) Notify(ctx context.Context, tmpl mail.Template, to mail.Recipient) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
		defer cancel()

		if err := m.Send(ctx, tmpl, to); err != nil {
			m.log.Warn("mail not sent",
				zap.String("template", string(tmpl)),
				zap.String("to", to.Email),
				zap.Error(err),
			)
			return
		}
		m.log.Debug("mail sent", zap.String("template", string(tmpl)), zap.String("to", to.Email))
	}()
}

func (m *Mailer) Wait() {
	m.wg.Wait()
}
