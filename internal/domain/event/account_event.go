package event

import "time"

// Type names an account lifecycle event.
type Type string

const (
	AccountCreated         Type = "account.created"
	AccountUpdated         Type = "account.updated"
	AccountPasswordChanged Type = "account.password_changed"
	AccountDeleted         Type = "account.deleted"
)

// AccountEvent is published after a successful account mutation.
// Name and Email are empty for deletions.
type AccountEvent struct {
	Type       Type      `json:"type"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name,omitempty"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
