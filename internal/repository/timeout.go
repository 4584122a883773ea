package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sakif/exercise-tracker/internal/apperror"
	"github.com/sakif/exercise-tracker/internal/model"
)

// DefaultTimeout bounds every store call when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// timeoutStore runs each call of the wrapped store under its own deadline.
type timeoutStore struct {
	next    UserStore
	timeout time.Duration
}

var _ UserStore = (*timeoutStore)(nil)

// WithTimeout wraps store so that no single call can outlive d. A call that
// hits the deadline fails with an apperror.ErrStorage error instead of
// hanging the request. A non-positive d selects DefaultTimeout.
func WithTimeout(store UserStore, d time.Duration) UserStore {
	if d <= 0 {
		d = DefaultTimeout
	}
	return &timeoutStore{next: store, timeout: d}
}

func (s *timeoutStore) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	user, err := s.next.FindUserByID(ctx, id)
	return user, s.check(ctx, "find user by id", err)
}

func (s *timeoutStore) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	user, err := s.next.FindUserByUsername(ctx, username)
	return user, s.check(ctx, "find user by username", err)
}

func (s *timeoutStore) InsertUser(ctx context.Context, user *model.User) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.check(ctx, "insert user", s.next.InsertUser(ctx, user))
}

func (s *timeoutStore) SaveUser(ctx context.Context, user *model.User) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.check(ctx, "save user", s.next.SaveUser(ctx, user))
}

func (s *timeoutStore) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	users, err := s.next.ListUsers(ctx)
	return users, s.check(ctx, "list users", err)
}

func (s *timeoutStore) Close() error {
	return s.next.Close()
}

// check turns deadline failures into storage errors. Errors that already
// carry a kind, such as ErrNotFound, pass through untouched.
func (s *timeoutStore) check(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperror.Storage(op, context.DeadlineExceeded)
	}
	return err
}
