package context

import (
	"context"
)

const contextKeySessionUser = contextKey("sessionUser")

// SessionUser identifies the logged-in user of the current invocation.
type SessionUser struct {
	ID       int64
	Username string
}

// SessionUserFromContext extracts the session user from the context.
// Returns the user and true if present, or the zero value and false if not present.
func SessionUserFromContext(ctx context.Context) (SessionUser, bool) {
	user, ok := ctx.Value(contextKeySessionUser).(SessionUser)

	return user, ok
}

// WithSessionUser creates a new context with the given session user.
// This context can be used to track the authenticated user throughout a command.
func WithSessionUser(ctx context.Context, user SessionUser) context.Context {
	return context.WithValue(ctx, contextKeySessionUser, user)
}
