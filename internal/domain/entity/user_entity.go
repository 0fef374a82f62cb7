package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password holds the stored bcrypt hash and is never serialized.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser carries the fields needed to create a record; Password is plaintext
// and hashed by the directory before it is stored.
type NewUser struct {
	Name     string
	Email    string
	Password string
}
