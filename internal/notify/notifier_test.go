package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/account-service/internal/domain/event"
	mailtpl "github.com/oksasatya/account-service/pkg/mailer/templates"
)

type sentMail struct {
	to, subject, text, html string
}

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, text, html})
	return nil
}

func newTestNotifier(s Sender) *Notifier {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return NewNotifier(s, mailtpl.Branding{AppName: "Accounts", CompanyName: "Acme"}, logger)
}

func TestHandle_SendsPasswordChangedEmail(t *testing.T) {
	s := &fakeSender{}
	n := newTestNotifier(s)

	out := n.Handle(context.Background(), []byte(`{"type":"account.password_changed","user_id":"u1","name":"Alice","email":"alice@example.com","occurred_at":"2026-10-18T08:05:00Z"}`))
	assert.Equal(t, Ack, out)
	require.Len(t, s.sent, 1)
	assert.Equal(t, "alice@example.com", s.sent[0].to)
	assert.Equal(t, "Accounts: password changed", s.sent[0].subject)
	assert.Contains(t, s.sent[0].text, "18 October 2026, 08:05")
}

func TestHandle_DeletionIsAckedWithoutEmail(t *testing.T) {
	s := &fakeSender{}
	out := newTestNotifier(s).Handle(context.Background(), []byte(`{"type":"account.deleted","user_id":"u1"}`))
	assert.Equal(t, Ack, out)
	assert.Empty(t, s.sent)
}

func TestHandle_MalformedIsDropped(t *testing.T) {
	s := &fakeSender{}
	assert.Equal(t, Drop, newTestNotifier(s).Handle(context.Background(), []byte(`not json`)))
	assert.Empty(t, s.sent)
}

func TestHandle_SendFailureIsRequeued(t *testing.T) {
	s := &fakeSender{err: errors.New("mailgun down")}
	out := newTestNotifier(s).Handle(context.Background(), []byte(`{"type":"account.created","user_id":"u1","email":"a@example.com"}`))
	assert.Equal(t, Requeue, out)
	assert.Equal(t, "requeue", out.String())
}

func TestJobFromEvent(t *testing.T) {
	b := mailtpl.Branding{AppName: "Accounts"}

	job, ok := JobFromEvent(event.AccountEvent{Type: event.AccountUpdated, UserID: "u1", Name: "Bob", Email: "bob@example.com", OccurredAt: time.Now()}, b)
	require.True(t, ok)
	assert.Equal(t, mailtpl.AccountUpdated, job.Template)
	assert.Equal(t, "bob@example.com", job.To)
	assert.Equal(t, "Bob", job.Data["Name"])
	assert.NotEmpty(t, job.Data["Time"])

	_, ok = JobFromEvent(event.AccountEvent{Type: event.AccountCreated, UserID: "u1"}, b)
	assert.False(t, ok)

	_, ok = JobFromEvent(event.AccountEvent{Type: event.AccountDeleted, UserID: "u1", Email: "x@example.com"}, b)
	assert.False(t, ok)
}
