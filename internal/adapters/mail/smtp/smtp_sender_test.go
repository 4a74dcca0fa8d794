package smtp

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/mail"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/gomail.v2"
)

type dialerStub struct {
	got []*gomail.Message
	err error
}

func (d *dialerStub) DialAndSend(m ...*gomail.Message) error {
	d.got = append(d.got, m...)
	return d.err
}

func testMessage() mail.Message {
	return mail.Message{To: "john@x.com", Subject: "Welcome", HTML: "<p>Hello John</p>"}
}

func TestSMTPSender_Send(t *testing.T) {
	d := &dialerStub{}
	s := &SMTPSender{dialer: d, from: "noreply@example.com"}

	require.NoError(t, s.Send(context.Background(), testMessage()))
	require.Len(t, d.got, 1)

	var buf bytes.Buffer
	_, err := d.got[0].WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	require.Contains(t, raw, "From: noreply@example.com")
	require.Contains(t, raw, "To: john@x.com")
	require.Contains(t, raw, "Subject: Welcome")
	require.Contains(t, raw, "text/html")
}

func TestSMTPSender_Errors(t *testing.T) {
	d := &dialerStub{err: errors.New("connection refused")}
	s := &SMTPSender{dialer: d, from: "noreply@example.com"}
	require.Error(t, s.Send(context.Background(), testMessage()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.got = nil
	require.ErrorIs(t, s.Send(ctx, testMessage()), context.Canceled)
	require.Empty(t, d.got)
}

func TestNewSMTPSender(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "user", "pass", "noreply@example.com")
	require.NotNil(t, s.dialer)
	require.Equal(t, "noreply@example.com", s.from)
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewLogSender(zap.New(core))

	require.NoError(t, s.Send(context.Background(), testMessage()))
	require.Equal(t, 1, logs.Len())
	require.Equal(t, "john@x.com", logs.All()[0].ContextMap()["to"])
}
