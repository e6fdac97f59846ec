package bulletinsvc

import (
	"context"

	"github.com/mkrupp/campuslink/internal/domain"
)

// BulletinService defines the operations on the shared bulletin board.
type BulletinService interface {
	// AddPost publishes a post stamped with the current time.
	// Returns ErrEmptyPostTitle or ErrEmptyPostContent for blank fields and
	// ErrOwnerNotFound if the author does not exist.
	AddPost(ctx context.Context, authorID int64, title, content string) (domain.Post, error)

	// ListPosts returns every post, newest first.
	ListPosts(ctx context.Context) ([]domain.Post, error)

	// DeletePost removes a post on behalf of requesterID.
	// Returns ErrPostNotFound if the post does not exist and ErrUnauthorized
	// if the requester is not its author.
	DeletePost(ctx context.Context, requesterID, postID int64) error
}
