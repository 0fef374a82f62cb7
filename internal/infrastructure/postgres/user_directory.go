package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/account-service/internal/domain/entity"
	"github.com/oksasatya/account-service/internal/domain/repository"
	"github.com/oksasatya/account-service/pkg/helpers"
)

// DBTX is the subset of *pgxpool.Pool used by the directory.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const userColumns = `id, name, email, password_hash, created_at, updated_at`

// UserDirectory stores users in the users table. Passwords are hashed with
// bcrypt before they reach the database.
type UserDirectory struct {
	db   DBTX
	cost int
}

func NewUserDirectory(db DBTX, bcryptCost int) *UserDirectory {
	return &UserDirectory{db: db, cost: bcryptCost}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// parseID returns the canonical form of a uuid id. Malformed ids match no row.
func parseID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func (r *UserDirectory) FindByID(ctx context.Context, id string) (*entity.User, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, key))
}

func (r *UserDirectory) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email))
}

func (r *UserDirectory) List(ctx context.Context) ([]entity.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserDirectory) Create(ctx context.Context, nu entity.NewUser) (*entity.User, error) {
	hash, err := helpers.HashPasswordWithCost(nu.Password, r.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{Name: nu.Name, Email: nu.Email, Password: hash}
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id::text, created_at, updated_at
	`, u.Name, u.Email, u.Password)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserDirectory) Update(ctx context.Context, id, name, email string) error {
	key, ok := parseID(id)
	if !ok {
		return repository.ErrNotAffected
	}
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, updated_at = now()
		WHERE id = $3
	`, name, email, key)
	return affected(res, err)
}

func (r *UserDirectory) SetPassword(ctx context.Context, id, newPassword string) error {
	key, ok := parseID(id)
	if !ok {
		return repository.ErrNotAffected
	}
	hash, err := helpers.HashPasswordWithCost(newPassword, r.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET password_hash = $1, updated_at = now()
		WHERE id = $2
	`, hash, key)
	return affected(res, err)
}

func (r *UserDirectory) Delete(ctx context.Context, id string) error {
	key, ok := parseID(id)
	if !ok {
		return repository.ErrNotAffected
	}
	res, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, key)
	return affected(res, err)
}

func affected(res pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotAffected
	}
	return nil
}

var _ repository.UserDirectory = (*UserDirectory)(nil)
