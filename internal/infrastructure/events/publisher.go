// Package events moves account events over RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oksasatya/account-service/internal/domain/event"
)

const publishTimeout = 2 * time.Second

// JSONPublisher is satisfied by helpers.RabbitPublisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Publisher implements application.EventPublisher.
type Publisher struct {
	Out JSONPublisher
}

func NewPublisher(out JSONPublisher) *Publisher {
	return &Publisher{Out: out}
}

func (p *Publisher) Publish(ctx context.Context, ev event.AccountEvent) error {
	if err := Validate(ev); err != nil {
		return err
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	c, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.Out.PublishJSON(c, ev); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

var ErrMalformedEvent = errors.New("malformed account event")

// Validate rejects events a consumer could not act on.
func Validate(ev event.AccountEvent) error {
	switch ev.Type {
	case event.AccountCreated, event.AccountUpdated, event.AccountPasswordChanged, event.AccountDeleted:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrMalformedEvent, ev.Type)
	}
	if ev.UserID == "" {
		return fmt.Errorf("%w: missing user_id", ErrMalformedEvent)
	}
	return nil
}

// Decode parses and validates a delivery body.
func Decode(body []byte) (event.AccountEvent, error) {
	var ev event.AccountEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return event.AccountEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := Validate(ev); err != nil {
		return event.AccountEvent{}, err
	}
	return ev, nil
}
