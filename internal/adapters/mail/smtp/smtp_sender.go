package smtp

import (
	"context"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/mail"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPSender struct {
	dialer dialer
	from   string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg mail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.dialer.DialAndSend(s.build(msg))
}

func (s *SMTPSender) build(msg mail.Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	return m
}

// LogSender stands in for SMTP when no mail host is configured.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (l *LogSender) Send(_ context.Context, msg mail.Message) error {
	l.log.Info("mail delivery disabled, message dropped",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
