package application

import (
	"context"
	"errors"
	"expvar"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-service/internal/domain/entity"
	"github.com/oksasatya/account-service/internal/domain/event"
	repo "github.com/oksasatya/account-service/internal/domain/repository"
	"github.com/oksasatya/account-service/pkg/apperror"
	"github.com/oksasatya/account-service/pkg/helpers"
)

// Client-facing failure messages.
const (
	MsgUnknownUser        = "Unknown user"
	MsgEmailTaken         = "Email already taken"
	MsgPasswordMismatch   = "Password and confirmation is not the same"
	MsgCreateFailed       = "Failed to create user"
	MsgUpdateFailed       = "Failed to update user"
	MsgNotAnUser          = "Not an user"
	MsgOldPasswordWrong   = "Old password is wrong"
	MsgChangeFailed       = "Failed to change password"
	MsgDeleteFailed       = "Failed to delete user"
	MsgExportFailed       = "Failed to export users"
	MsgExportNotAvailable = "Export is not configured"
)

// opCounters is exposed on /debug/vars as account_ops.
var opCounters = expvar.NewMap("account_ops")

// EventPublisher delivers account events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev event.AccountEvent) error
}

// UserIndexer keeps a search index in step with the directory.
type UserIndexer interface {
	Upsert(ctx context.Context, u entity.User) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]entity.User, error)
}

// Exporter stores a snapshot of users and returns where it was written.
type Exporter interface {
	Export(ctx context.Context, users []entity.User) (string, error)
}

// AccountService implements the account operations on top of a UserDirectory
// and a SecretVerifier. It holds no per-request state.
type AccountService struct {
	Directory repo.UserDirectory
	Verifier  repo.SecretVerifier
	Events    EventPublisher
	Index     UserIndexer
	Exporter  Exporter
	Logger    *logrus.Logger

	placeholder string
	now         func() time.Time
}

type Option func(*AccountService)

func WithEvents(p EventPublisher) Option { return func(s *AccountService) { s.Events = p } }
func WithIndexer(i UserIndexer) Option   { return func(s *AccountService) { s.Index = i } }
func WithExporter(e Exporter) Option     { return func(s *AccountService) { s.Exporter = e } }

// WithPlaceholderHash replaces helpers.PlaceholderHash; it should share the
// directory's bcrypt cost.
func WithPlaceholderHash(hash string) Option {
	return func(s *AccountService) { s.placeholder = hash }
}

func NewAccountService(dir repo.UserDirectory, verifier repo.SecretVerifier, logger *logrus.Logger, opts ...Option) *AccountService {
	s := &AccountService{
		Directory: dir,
		Verifier:  verifier,
		Logger:    logger,

		placeholder: helpers.PlaceholderHash,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateUserInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

type UpdateUserInput struct {
	ID    string
	Name  string
	Email string
}

type ChangePasswordInput struct {
	ID              string
	Name            string
	Email           string
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

type CreateUserResult struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserIDResult struct {
	ID string `json:"id"`
}

type ChangePasswordResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ExportResult struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// ListUsers returns every record the directory holds, unmodified.
func (s *AccountService) ListUsers(ctx context.Context) ([]entity.User, error) {
	users, err := s.Directory.List(ctx)
	s.record("list", err)
	return users, err
}

func (s *AccountService) GetUser(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.lookup(ctx, s.Directory.FindByID, id)
	if err == nil && u == nil {
		err = apperror.NotFound(MsgUnknownUser)
	}
	s.record("get", err)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser checks email uniqueness before comparing the password with its
// confirmation, so a taken email wins over a mismatch.
func (s *AccountService) CreateUser(ctx context.Context, in CreateUserInput) (*CreateUserResult, error) {
	res, err := s.createUser(ctx, in)
	s.record("create", err)
	return res, err
}

func (s *AccountService) createUser(ctx context.Context, in CreateUserInput) (*CreateUserResult, error) {
	existing, err := s.lookup(ctx, s.Directory.FindByEmail, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflict(MsgEmailTaken)
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperror.InvalidInput(MsgPasswordMismatch)
	}
	created, err := s.Directory.Create(ctx, entity.NewUser{Name: in.Name, Email: in.Email, Password: in.Password})
	if err != nil {
		s.warn(err, "", "create user failed")
		return nil, apperror.Unprocessable(MsgCreateFailed, err)
	}
	if created != nil {
		s.afterWrite(ctx, event.AccountCreated, *created)
	}
	return &CreateUserResult{Name: in.Name, Email: in.Email}, nil
}

// UpdateUser rejects any email already present in the directory, including
// the caller's own current address.
func (s *AccountService) UpdateUser(ctx context.Context, in UpdateUserInput) (*UserIDResult, error) {
	res, err := s.updateUser(ctx, in)
	s.record("update", err)
	return res, err
}

func (s *AccountService) updateUser(ctx context.Context, in UpdateUserInput) (*UserIDResult, error) {
	existing, err := s.lookup(ctx, s.Directory.FindByEmail, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflict(MsgEmailTaken)
	}
	if err := s.Directory.Update(ctx, in.ID, in.Name, in.Email); err != nil {
		s.warn(err, in.ID, "update user failed")
		return nil, apperror.Unprocessable(MsgUpdateFailed, err)
	}
	s.afterWrite(ctx, event.AccountUpdated, entity.User{ID: in.ID, Name: in.Name, Email: in.Email, UpdatedAt: s.now().UTC()})
	return &UserIDResult{ID: in.ID}, nil
}

// ChangePassword always runs the verifier, against the placeholder hash when the
// email is unknown, and only then reports a missing account.
func (s *AccountService) ChangePassword(ctx context.Context, in ChangePasswordInput) (*ChangePasswordResult, error) {
	res, err := s.changePassword(ctx, in)
	s.record("change_password", err)
	return res, err
}

func (s *AccountService) changePassword(ctx context.Context, in ChangePasswordInput) (*ChangePasswordResult, error) {
	u, err := s.lookup(ctx, s.Directory.FindByEmail, in.Email)
	if err != nil {
		return nil, err
	}
	hash := s.placeholder
	if u != nil {
		hash = u.Password
	}
	ok, verr := s.Verifier.Verify(ctx, in.OldPassword, hash)
	if u == nil {
		return nil, apperror.Unprocessable(MsgNotAnUser, nil)
	}
	if verr != nil {
		return nil, verr
	}
	if !ok {
		return nil, apperror.InvalidInput(MsgOldPasswordWrong)
	}
	if in.NewPassword != in.ConfirmPassword {
		return nil, apperror.InvalidInput(MsgPasswordMismatch)
	}
	if err := s.Directory.SetPassword(ctx, in.ID, in.NewPassword); err != nil {
		s.warn(err, in.ID, "set password failed")
		return nil, apperror.Unprocessable(MsgChangeFailed, err)
	}
	s.publish(ctx, event.AccountEvent{Type: event.AccountPasswordChanged, UserID: in.ID, Name: u.Name, Email: u.Email})
	return &ChangePasswordResult{ID: in.ID, Name: in.Name, Email: in.Email}, nil
}

func (s *AccountService) DeleteUser(ctx context.Context, id string) (*UserIDResult, error) {
	err := s.Directory.Delete(ctx, id)
	if err != nil {
		s.warn(err, id, "delete user failed")
		err = apperror.Unprocessable(MsgDeleteFailed, err)
	}
	s.record("delete", err)
	if err != nil {
		return nil, err
	}
	if s.Index != nil {
		if iErr := s.Index.Remove(ctx, id); iErr != nil {
			s.warn(iErr, id, "search index remove failed")
		}
	}
	s.publish(ctx, event.AccountEvent{Type: event.AccountDeleted, UserID: id})
	return &UserIDResult{ID: id}, nil
}

// SearchUsers queries the search index; without one it returns an empty list.
func (s *AccountService) SearchUsers(ctx context.Context, q string, size int) ([]entity.User, error) {
	if s.Index == nil {
		return []entity.User{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	users, err := s.Index.Search(ctx, q, size)
	s.record("search", err)
	return users, err
}

// ExportUsers writes a snapshot of all users through the configured Exporter.
func (s *AccountService) ExportUsers(ctx context.Context) (*ExportResult, error) {
	if s.Exporter == nil {
		return nil, apperror.Unprocessable(MsgExportNotAvailable, nil)
	}
	users, err := s.Directory.List(ctx)
	if err != nil {
		s.record("export", err)
		return nil, err
	}
	url, err := s.Exporter.Export(ctx, users)
	if err != nil {
		s.warn(err, "", "export users failed")
		err = apperror.Unprocessable(MsgExportFailed, err)
	}
	s.record("export", err)
	if err != nil {
		return nil, err
	}
	return &ExportResult{URL: url, Count: len(users)}, nil
}

// lookup turns ErrUserNotFound into a nil record; other errors pass through.
func (s *AccountService) lookup(ctx context.Context, find func(context.Context, string) (*entity.User, error), key string) (*entity.User, error) {
	u, err := find(ctx, key)
	if errors.Is(err, repo.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AccountService) afterWrite(ctx context.Context, typ event.Type, u entity.User) {
	if s.Index != nil {
		if err := s.Index.Upsert(ctx, u); err != nil {
			s.warn(err, u.ID, "search index upsert failed")
		}
	}
	s.publish(ctx, event.AccountEvent{Type: typ, UserID: u.ID, Name: u.Name, Email: u.Email})
}

func (s *AccountService) publish(ctx context.Context, ev event.AccountEvent) {
	if s.Events == nil {
		return
	}
	ev.OccurredAt = s.now().UTC()
	if err := s.Events.Publish(ctx, ev); err != nil {
		s.warn(err, ev.UserID, "publish account event failed")
	}
}

func (s *AccountService) record(op string, err error) {
	if err != nil {
		opCounters.Add(op+".error", 1)
		return
	}
	opCounters.Add(op+".ok", 1)
}

func (s *AccountService) warn(err error, userID, msg string) {
	if s.Logger == nil {
		return
	}
	entry := s.Logger.WithError(err)
	if userID != "" {
		entry = entry.WithField("user_id", userID)
	}
	entry.Warn(msg)
}
