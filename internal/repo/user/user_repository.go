package user

import (
	"context"

	"github.com/mkrupp/campuslink/internal/domain"
)

// Repository defines the interface for user data persistence.
type Repository interface {
	// CreateUser adds a new user to the repository and returns its ID.
	// Returns ErrUserAlreadyExists if the username is already taken.
	CreateUser(ctx context.Context, username string, passwordHash string) (int64, error)

	// GetUserByUsername retrieves a user by their exact username.
	// Returns ErrUserNotFound if no such user exists.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetUserByID retrieves a user by their ID.
	// Returns ErrUserNotFound if no such user exists.
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}
