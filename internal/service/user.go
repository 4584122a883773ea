// Package service holds the business rules of the exercise tracker.
//
// Handlers parse HTTP and call into this package; this package validates
// input, enforces the rules, and talks to the record store through the
// repository.UserStore interface. Errors come back as apperror kinds so the
// caller decides how to present them.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/exercise-tracker/internal/apperror"
	"github.com/sakif/exercise-tracker/internal/model"
	"github.com/sakif/exercise-tracker/internal/observability"
	"github.com/sakif/exercise-tracker/internal/repository"
)

// CreateUserInput is the validated form of a registration request.
type CreateUserInput struct {
	Username string `json:"username" validate:"required"`
}

// UserService registers users and resolves them by id.
type UserService struct {
	store  repository.UserStore
	logger *slog.Logger
}

// NewUserService creates a UserService backed by store.
func NewUserService(store repository.UserStore, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
	}
}

// CreateUser registers username with an empty log.
//
// A username that is already registered fails with apperror.ErrConflict and
// nothing is written.
func (s *UserService) CreateUser(ctx context.Context, username string) (*model.UserSummary, error) {
	in := CreateUserInput{Username: strings.TrimSpace(username)}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	_, err := s.store.FindUserByUsername(ctx, in.Username)
	switch {
	case err == nil:
		observability.RecordDuplicateUsername()
		return nil, apperror.DuplicateUsername()
	case !errors.Is(err, apperror.ErrNotFound):
		s.logger.Error("failed to look up username", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating user: %w", err)
	}

	user := &model.User{
		Username:   in.Username,
		Activities: []model.Activity{},
	}
	if err := s.store.InsertUser(ctx, user); err != nil {
		// Another request may have registered the same name in between.
		if errors.Is(err, apperror.ErrConflict) {
			observability.RecordDuplicateUsername()
			return nil, err
		}
		s.logger.Error("failed to insert user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating user: %w", err)
	}

	observability.RecordUserCreated()
	s.logger.Info("user created",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)

	summary := user.Summary()
	return &summary, nil
}

// ListUsers returns the id and username of every registered user.
func (s *UserService) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// FindUser resolves id to a user, activities included.
// Unknown and malformed ids fail with apperror.ErrNotFound.
func (s *UserService) FindUser(ctx context.Context, id string) (*model.User, error) {
	return findUser(ctx, s.store, s.logger, id)
}

// findUser is shared by every service that starts from a user id.
func findUser(ctx context.Context, store repository.UserStore, logger *slog.Logger, id string) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("userId", "userId is required")
	}

	user, err := store.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		logger.Error("failed to load user",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("loading user %s: %w", id, err)
	}
	return user, nil
}
