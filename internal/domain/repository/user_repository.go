package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/account-service/internal/domain/entity"
)

var (
	// ErrUserNotFound is returned by lookups when no record matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotAffected is returned by mutations that matched no record.
	ErrNotAffected = errors.New("no rows affected")
)

// UserDirectory defines the persistence operations for user records.
// Implementations own password hashing: Create and SetPassword receive plaintext.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	Create(ctx context.Context, u entity.NewUser) (*entity.User, error)
	Update(ctx context.Context, id, name, email string) error
	SetPassword(ctx context.Context, id, newPassword string) error
	Delete(ctx context.Context, id string) error
}

// SecretVerifier compares a plaintext secret against a stored hash.
type SecretVerifier interface {
	Verify(ctx context.Context, plaintext, hash string) (bool, error)
}
