package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/account-service/internal/domain/entity"
	"github.com/oksasatya/account-service/internal/domain/repository"
	"github.com/oksasatya/account-service/pkg/helpers"
)

const (
	aliceID = "6f1c2d3e-4b5a-4c7d-8e9f-0a1b2c3d4e5f"
	ghostID = "00000000-0000-4000-8000-000000000000"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	row       fakeRow
	querySQL  string
	queryArgs []any
	execTag   pgconn.CommandTag
	execErr   error
	execs     []execCall
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql, args})
	return f.execTag, f.execErr
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.querySQL = sql
	f.queryArgs = args
	return f.row
}

func TestFindByEmail_NoRows(t *testing.T) {
	db := &fakeDB{row: fakeRow{scan: func(...any) error { return pgx.ErrNoRows }}}
	d := NewUserDirectory(db, bcrypt.MinCost)

	_, err := d.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.Equal(t, []any{"nobody@example.com"}, db.queryArgs)
}

func TestFindByID_ScansRecord(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	db := &fakeDB{row: fakeRow{scan: func(dest ...any) error {
		*dest[0].(*string) = aliceID
		*dest[1].(*string) = "Alice"
		*dest[2].(*string) = "alice@example.com"
		*dest[3].(*string) = "hash"
		*dest[4].(*time.Time) = created
		*dest[5].(*time.Time) = created
		return nil
	}}}
	d := NewUserDirectory(db, bcrypt.MinCost)

	u, err := d.FindByID(context.Background(), strings.ToUpper(aliceID))
	require.NoError(t, err)
	assert.Equal(t, []any{aliceID}, db.queryArgs)
	assert.Contains(t, db.querySQL, "WHERE id = $1")
	assert.Equal(t, &entity.User{ID: aliceID, Name: "Alice", Email: "alice@example.com", Password: "hash", CreatedAt: created, UpdatedAt: created}, u)
}

func TestCreate_HashesPassword(t *testing.T) {
	db := &fakeDB{row: fakeRow{scan: func(dest ...any) error {
		*dest[0].(*string) = "u9"
		return nil
	}}}
	d := NewUserDirectory(db, bcrypt.MinCost)

	u, err := d.Create(context.Background(), entity.NewUser{Name: "N", Email: "n@example.com", Password: "plain"})
	require.NoError(t, err)
	assert.Equal(t, "u9", u.ID)

	require.Len(t, db.queryArgs, 3)
	stored := db.queryArgs[2].(string)
	assert.NotEqual(t, "plain", stored)
	assert.True(t, helpers.CompareHashAndPassword(stored, "plain"))
}

func TestMutations_RowsAffected(t *testing.T) {
	ctx := context.Background()

	db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 0")}
	d := NewUserDirectory(db, bcrypt.MinCost)
	assert.ErrorIs(t, d.Update(ctx, ghostID, "n", "e"), repository.ErrNotAffected)
	assert.ErrorIs(t, d.SetPassword(ctx, ghostID, "pw"), repository.ErrNotAffected)

	db.execTag = pgconn.NewCommandTag("DELETE 1")
	assert.NoError(t, d.Delete(ctx, aliceID))

	db.execErr = errors.New("connection reset")
	assert.ErrorIs(t, d.Update(ctx, aliceID, "n", "e"), db.execErr)
}

func TestSetPassword_StoresHash(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 1")}
	d := NewUserDirectory(db, bcrypt.MinCost)

	require.NoError(t, d.SetPassword(context.Background(), aliceID, "next"))
	require.Len(t, db.execs, 1)
	assert.True(t, strings.Contains(db.execs[0].sql, "password_hash"))
	assert.True(t, helpers.CompareHashAndPassword(db.execs[0].args[0].(string), "next"))
	assert.Equal(t, aliceID, db.execs[0].args[1])
}

func TestMalformedIDs_NeverReachDatabase(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 1")}
	d := NewUserDirectory(db, bcrypt.MinCost)

	_, err := d.FindByID(ctx, "42")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.ErrorIs(t, d.Update(ctx, "42", "n", "e"), repository.ErrNotAffected)
	assert.ErrorIs(t, d.SetPassword(ctx, "not-a-uuid", "pw"), repository.ErrNotAffected)
	assert.ErrorIs(t, d.Delete(ctx, ""), repository.ErrNotAffected)

	assert.Nil(t, db.queryArgs)
	assert.Empty(t, db.execs)
}
