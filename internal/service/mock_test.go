package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/sakif/exercise-tracker/internal/apperror"
	"github.com/sakif/exercise-tracker/internal/model"
)

// mockStore is an in-memory repository.UserStore. Users are stored as copies
// so tests can detect writes that should not have happened.
type mockStore struct {
	users   map[string]*model.User
	order   []string
	nextID  int
	saves   int
	saveErr error
	findErr error
}

func newMockStore() *mockStore {
	return &mockStore{users: make(map[string]*model.User)}
}

func cloneUser(u *model.User) *model.User {
	c := *u
	c.Activities = append([]model.Activity{}, u.Activities...)
	return &c
}

func (m *mockStore) FindUserByID(_ context.Context, id string) (*model.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.UserNotFound()
	}
	return cloneUser(u), nil
}

func (m *mockStore) FindUserByUsername(_ context.Context, username string) (*model.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (m *mockStore) InsertUser(_ context.Context, user *model.User) error {
	m.nextID++
	user.ID = fmt.Sprintf("mock-%d", m.nextID)
	m.users[user.ID] = cloneUser(user)
	m.order = append(m.order, user.ID)
	return nil
}

func (m *mockStore) SaveUser(_ context.Context, user *model.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.users[user.ID]; !ok {
		return apperror.UserNotFound()
	}
	m.saves++
	m.users[user.ID] = cloneUser(user)
	return nil
}

func (m *mockStore) ListUsers(_ context.Context) ([]model.UserSummary, error) {
	out := make([]model.UserSummary, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.users[id].Summary())
	}
	return out, nil
}

func (m *mockStore) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// seedUser registers username directly in the store.
func seedUser(t *testing.T, store *mockStore, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Activities: []model.Activity{}}
	if err := store.InsertUser(context.Background(), user); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return user
}
