package domain

import "errors"

var (
	// ErrUserAlreadyExists is returned when trying to create a user with an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmptyUsername is returned when a username is blank.
	ErrEmptyUsername = errors.New("username is empty")
	// ErrEmptyPassword is returned when a password is blank.
	ErrEmptyPassword = errors.New("password is empty")
)

// User represents a registered campus member.
type User struct {
	ID           int64  `json:"id" yaml:"id"`             // Unique identifier
	Username     string `json:"username" yaml:"username"` // Login username, case-sensitive
	PasswordHash string `json:"-" yaml:"-"`               // Hex encoded SHA-256 digest
}
