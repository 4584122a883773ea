package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/exercise-tracker/internal/apperror"
	"github.com/sakif/exercise-tracker/internal/model"
)

// stubStore blocks every call until its context is done, unless an error or
// user is configured.
type stubStore struct {
	user   *model.User
	err    error
	block  bool
	closed bool
}

func (s *stubStore) wait(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func (s *stubStore) FindUserByID(ctx context.Context, _ string) (*model.User, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.user, nil
}

func (s *stubStore) FindUserByUsername(ctx context.Context, _ string) (*model.User, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.user, nil
}

func (s *stubStore) InsertUser(ctx context.Context, _ *model.User) error { return s.wait(ctx) }

func (s *stubStore) SaveUser(ctx context.Context, _ *model.User) error { return s.wait(ctx) }

func (s *stubStore) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return []model.UserSummary{}, nil
}

func (s *stubStore) Close() error {
	s.closed = true
	return nil
}

func TestWithTimeout_DeadlineBecomesStorageError(t *testing.T) {
	store := WithTimeout(&stubStore{block: true}, 10*time.Millisecond)

	start := time.Now()
	_, err := store.FindUserByID(context.Background(), "abc")
	require.Error(t, err)

	assert.True(t, errors.Is(err, apperror.ErrStorage), "want ErrStorage, got %v", err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), time.Second)
}

func TestWithTimeout_AllCallsBounded(t *testing.T) {
	store := WithTimeout(&stubStore{block: true}, 5*time.Millisecond)
	ctx := context.Background()

	_, err := store.FindUserByUsername(ctx, "alice")
	assert.ErrorIs(t, err, apperror.ErrStorage)
	assert.ErrorIs(t, store.InsertUser(ctx, &model.User{}), apperror.ErrStorage)
	assert.ErrorIs(t, store.SaveUser(ctx, &model.User{}), apperror.ErrStorage)
	_, err = store.ListUsers(ctx)
	assert.ErrorIs(t, err, apperror.ErrStorage)
}

func TestWithTimeout_PassesDomainErrorsThrough(t *testing.T) {
	store := WithTimeout(&stubStore{err: apperror.UserNotFound()}, time.Second)

	_, err := store.FindUserByID(context.Background(), "abc")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.False(t, errors.Is(err, apperror.ErrStorage))
}

func TestWithTimeout_PassesResultsThrough(t *testing.T) {
	want := &model.User{ID: "abc", Username: "alice"}
	store := WithTimeout(&stubStore{user: want}, 0)

	got, err := store.FindUserByID(context.Background(), "abc")
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestWithTimeout_CloseDelegates(t *testing.T) {
	inner := &stubStore{}
	require.NoError(t, WithTimeout(inner, time.Second).Close())
	assert.True(t, inner.closed)
}
