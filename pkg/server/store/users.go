package store

import (
	"context"
	"errors"

	"github.com/tictoc/tictoc/pkg/model"
)

var (
	// ErrUserNotFound is returned when no user matches a lookup
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when creating a user whose email is already registered
	ErrEmailTaken = errors.New("email already registered")
)

// UsersStore abstracts user storage operations
type UsersStore interface {
	// ListUsers returns user views ordered by id. A limit of 0 means no limit.
	ListUsers(ctx context.Context, limit, offset int) ([]model.UserView, error)

	// CountUsers returns the total number of users
	CountUsers(ctx context.Context) (int64, error)

	// CreateUser inserts a user and returns its view
	CreateUser(ctx context.Context, name, email, passwordHash string) (*model.UserView, error)

	// FindByEmail returns the full user record, including the password hash
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// DeleteAll removes every user and restarts id numbering
	DeleteAll(ctx context.Context) error
}
