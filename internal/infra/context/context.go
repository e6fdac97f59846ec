// Package context holds typed accessors for values carried through a command invocation.
package context

type contextKey string
