package bulletinsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkrupp/campuslink/internal/domain"
	"github.com/mkrupp/campuslink/internal/infra/logging"
	"github.com/mkrupp/campuslink/internal/repo/post"
)

// RepoBulletinService implements BulletinService on top of a post repository.
type RepoBulletinService struct {
	repo post.Repository
	log  logging.Logger
}

var _ BulletinService = (*RepoBulletinService)(nil)

// NewRepoBulletinService creates a new RepoBulletinService.
func NewRepoBulletinService(repo post.Repository) *RepoBulletinService {
	return &RepoBulletinService{
		repo: repo,
		log:  logging.GetLogger("svc.bulletinsvc.repo_bulletin_service"),
	}
}

// ValidatePost checks that title and content are not blank.
func ValidatePost(title, content string) error {
	var errs []error

	if strings.TrimSpace(title) == "" {
		errs = append(errs, domain.ErrEmptyPostTitle)
	}

	if strings.TrimSpace(content) == "" {
		errs = append(errs, domain.ErrEmptyPostContent)
	}

	return errors.Join(errs...)
}

// AddPost implements BulletinService.AddPost.
func (s *RepoBulletinService) AddPost(
	ctx context.Context,
	authorID int64,
	title, content string,
) (created domain.Post, err error) {
	log := s.log.With(logging.Group("post", "authorId", authorID, "title", title))

	defer func() {
		switch {
		case err == nil:
			log.DebugContext(ctx, "post added", "id", created.ID)
		case errors.Is(err, domain.ErrEmptyPostTitle), errors.Is(err, domain.ErrEmptyPostContent):
			log.WarnContext(ctx, "post rejected", "error", err)
		default:
			log.ErrorContext(ctx, "add post failed", "error", err)
		}
	}()

	if err = ValidatePost(title, content); err != nil {
		return domain.Post{}, err
	}

	created, err = s.repo.CreatePost(ctx, authorID, title, content)
	if err != nil {
		return domain.Post{}, fmt.Errorf("create post: %w", err)
	}

	return created, nil
}

// ListPosts implements BulletinService.ListPosts.
func (s *RepoBulletinService) ListPosts(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "list posts failed", "error", err)

		return nil, fmt.Errorf("list posts: %w", err)
	}

	return posts, nil
}

// DeletePost implements BulletinService.DeletePost.
func (s *RepoBulletinService) DeletePost(ctx context.Context, requesterID, postID int64) (err error) {
	log := s.log.With(logging.Group("post", "id", postID, "requesterId", requesterID))

	defer func() {
		switch {
		case err == nil:
			log.DebugContext(ctx, "post deleted")
		case errors.Is(err, domain.ErrPostNotFound), errors.Is(err, domain.ErrUnauthorized):
			log.WarnContext(ctx, "post not deleted", "error", err)
		default:
			log.ErrorContext(ctx, "delete post failed", "error", err)
		}
	}()

	existing, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("get post: %w", err)
	}

	if existing.AuthorID != requesterID {
		return domain.ErrUnauthorized
	}

	found, err := s.repo.DeletePost(ctx, postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	// removed between lookup and delete
	if !found {
		return domain.ErrPostNotFound
	}

	return nil
}
