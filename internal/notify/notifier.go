// Package notify turns account events into customer emails.
package notify

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-service/internal/domain/event"
	"github.com/oksasatya/account-service/internal/infrastructure/events"
	"github.com/oksasatya/account-service/pkg/mailer"
	mailtpl "github.com/oksasatya/account-service/pkg/mailer/templates"
)

// Outcome tells the consumer what to do with a delivery.
type Outcome int

const (
	Ack Outcome = iota
	Drop
	Requeue
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Drop:
		return "drop"
	case Requeue:
		return "requeue"
	}
	return "unknown"
}

type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type Notifier struct {
	Sender   Sender
	Branding mailtpl.Branding
	Logger   *logrus.Logger
}

func NewNotifier(sender Sender, branding mailtpl.Branding, logger *logrus.Logger) *Notifier {
	return &Notifier{Sender: sender, Branding: branding, Logger: logger}
}

var templateFor = map[event.Type]string{
	event.AccountCreated:         mailtpl.AccountCreated,
	event.AccountUpdated:         mailtpl.AccountUpdated,
	event.AccountPasswordChanged: mailtpl.PasswordChanged,
}

// JobFromEvent builds the email for ev. Deletions and events without an
// address produce no job.
func JobFromEvent(ev event.AccountEvent, b mailtpl.Branding) (mailer.EmailJob, bool) {
	name, ok := templateFor[ev.Type]
	if !ok || ev.Email == "" {
		return mailer.EmailJob{}, false
	}
	var opts []mailtpl.Option
	if !ev.OccurredAt.IsZero() {
		opts = append(opts, mailtpl.WithTime(ev.OccurredAt))
	}
	return mailer.EmailJob{
		To:       ev.Email,
		Template: name,
		Data:     mailtpl.NewAccountData(b, name, ev.Name, ev.Email, opts...),
	}, true
}

// Handle processes one delivery body. Malformed bodies and render failures are
// dropped; send failures are requeued.
func (n *Notifier) Handle(ctx context.Context, body []byte) Outcome {
	ev, err := events.Decode(body)
	if err != nil {
		n.Logger.WithError(err).Warn("notify: bad message")
		return Drop
	}
	job, ok := JobFromEvent(ev, n.Branding)
	if !ok {
		n.Logger.WithFields(logrus.Fields{"type": ev.Type, "user_id": ev.UserID}).Debug("notify: nothing to send")
		return Ack
	}
	subject, text, html, err := mailtpl.Render(job.Template, job.Data)
	if err != nil {
		n.Logger.WithError(err).WithField("template", job.Template).Error("notify: render failed")
		return Drop
	}
	if err := n.Sender.Send(ctx, job.To, subject, text, html); err != nil {
		if errors.Is(err, mailer.ErrNoRecipient) {
			return Drop
		}
		n.Logger.WithError(err).WithField("user_id", ev.UserID).Warn("notify: send failed")
		return Requeue
	}
	n.Logger.WithFields(logrus.Fields{"type": ev.Type, "user_id": ev.UserID}).Info("notify: email sent")
	return Ack
}
