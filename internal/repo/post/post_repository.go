package post

import (
	"context"

	"github.com/mkrupp/campuslink/internal/domain"
)

// Repository defines the interface for bulletin board persistence.
type Repository interface {
	// CreatePost inserts a post stamped with the current time and returns it with its ID.
	// Returns ErrOwnerNotFound if the author does not exist.
	CreatePost(ctx context.Context, authorID int64, title, content string) (domain.Post, error)

	// GetPost retrieves a post by ID.
	// Returns ErrPostNotFound if no such post exists.
	GetPost(ctx context.Context, id int64) (domain.Post, error)

	// ListPosts returns every post, newest first.
	ListPosts(ctx context.Context) ([]domain.Post, error)

	// DeletePost removes a post regardless of its author. It reports whether
	// a post was removed; a missing ID is not an error.
	DeletePost(ctx context.Context, id int64) (bool, error)
}
