package domain

import "errors"

var (
	// ErrNoAuthToken is returned when an authentication token is required but not provided.
	ErrNoAuthToken = errors.New("no auth token")
	// ErrInvalidAuthToken is returned when a token's signature is invalid or it has expired.
	ErrInvalidAuthToken = errors.New("invalid auth token")
	// ErrUnauthorized is returned when the authenticated user lacks permission.
	ErrUnauthorized = errors.New("unauthorized")
)

// AuthToken represents a local session with user information and validity period.
type AuthToken struct {
	UserID    int64  `json:"userId" yaml:"userId"`       // Identifier of the authenticated user
	Username  string `json:"username" yaml:"username"`   // Login name of the authenticated user
	IssuedAt  int64  `json:"issuedAt" yaml:"issuedAt"`   // Unix timestamp when the token was created
	ExpiresAt int64  `json:"expiresAt" yaml:"expiresAt"` // Unix timestamp when the token expires
}
