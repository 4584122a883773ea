// Package repository defines the record store contract the services depend on.
//
// Users are stored as whole documents with their activities embedded. The
// contract is deliberately small so that both the embedded SQLite store and
// the MongoDB store can satisfy it.
package repository

import (
	"context"

	"github.com/sakif/exercise-tracker/internal/model"
)

// UserStore persists users and their embedded activity logs.
//
// Lookups return an error wrapping apperror.ErrNotFound when nothing matches,
// including ids that are not well formed for the backend.
type UserStore interface {
	FindUserByID(ctx context.Context, id string) (*model.User, error)
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
	// InsertUser stores a new user and sets user.ID.
	InsertUser(ctx context.Context, user *model.User) error
	// SaveUser replaces the stored document, activities included.
	SaveUser(ctx context.Context, user *model.User) error
	ListUsers(ctx context.Context) ([]model.UserSummary, error)
	Close() error
}
