// Package memory provides an in-process UserDirectory for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/account-service/internal/domain/entity"
	"github.com/oksasatya/account-service/internal/domain/repository"
	"github.com/oksasatya/account-service/pkg/helpers"
)

type UserDirectory struct {
	mu    sync.RWMutex
	users map[string]entity.User
	cost  int
	now   func() time.Time
}

// NewUserDirectory returns an empty directory hashing passwords at the given bcrypt cost.
func NewUserDirectory(cost int) *UserDirectory {
	return &UserDirectory{users: map[string]entity.User{}, cost: cost, now: time.Now}
}

func (d *UserDirectory) FindByID(_ context.Context, id string) (*entity.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (d *UserDirectory) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// List returns users ordered by creation time, then id.
func (d *UserDirectory) List(_ context.Context) ([]entity.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]entity.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (d *UserDirectory) Create(_ context.Context, nu entity.NewUser) (*entity.User, error) {
	hash, err := helpers.HashPasswordWithCost(nu.Password, d.cost)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.Email == nu.Email {
			return nil, repository.ErrNotAffected
		}
	}
	now := d.now().UTC()
	u := entity.User{ID: uuid.NewString(), Name: nu.Name, Email: nu.Email, Password: hash, CreatedAt: now, UpdatedAt: now}
	d.users[u.ID] = u
	return &u, nil
}

func (d *UserDirectory) Update(_ context.Context, id, name, email string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[id]
	if !ok {
		return repository.ErrNotAffected
	}
	u.Name, u.Email, u.UpdatedAt = name, email, d.now().UTC()
	d.users[id] = u
	return nil
}

func (d *UserDirectory) SetPassword(_ context.Context, id, newPassword string) error {
	hash, err := helpers.HashPasswordWithCost(newPassword, d.cost)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[id]
	if !ok {
		return repository.ErrNotAffected
	}
	u.Password, u.UpdatedAt = hash, d.now().UTC()
	d.users[id] = u
	return nil
}

func (d *UserDirectory) Delete(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[id]; !ok {
		return repository.ErrNotAffected
	}
	delete(d.users, id)
	return nil
}

var _ repository.UserDirectory = (*UserDirectory)(nil)
