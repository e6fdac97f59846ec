package domain

import "errors"

var (
	// ErrConnection is returned when the backing database file cannot be opened.
	ErrConnection = errors.New("database connection failed")
	// ErrStoreInactive is returned by every operation once the store failed to open or was closed.
	ErrStoreInactive = errors.New("database connection is not active")
	// ErrOwnerNotFound is returned when a task or post references a user that does not exist.
	ErrOwnerNotFound = errors.New("owner does not exist")
	// ErrStorageFault wraps any other engine level failure.
	ErrStorageFault = errors.New("storage fault")
)
