package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/campuslink/internal/domain"
	"github.com/mkrupp/campuslink/internal/infra/logging"
	"github.com/mkrupp/campuslink/internal/repo/database"
)

// TimestampLayout is how post timestamps are stored. Lexical order of the
// stored text equals chronological order.
const TimestampLayout = "2006-01-02 15:04:05"

const postSelect = `
	SELECT p.id, p.user_id, COALESCE(u.username, ''), p.title, p.content, p.timestamp
	FROM posts p
	LEFT JOIN users u ON u.id = p.user_id`

// SQLiteRepositoryOption customizes a SQLitePostRepository.
type SQLiteRepositoryOption func(*SQLitePostRepository)

// WithClock replaces time.Now as the source of post timestamps.
func WithClock(now func() time.Time) SQLiteRepositoryOption {
	return func(r *SQLitePostRepository) {
		r.now = now
	}
}

// SQLitePostRepository implements Repository using SQLite as the storage backend.
type SQLitePostRepository struct {
	db  *database.Database
	log logging.Logger
	now func() time.Time
}

var _ Repository = (*SQLitePostRepository)(nil)

// NewSQLitePostRepository creates a new SQLitePostRepository on the shared database.
func NewSQLitePostRepository(db *database.Database, opts ...SQLiteRepositoryOption) *SQLitePostRepository {
	repo := &SQLitePostRepository{
		db:  db,
		log: logging.GetLogger("repo.post.sqlite_post_repository"),
		now: time.Now,
	}

	for _, opt := range opts {
		opt(repo)
	}

	return repo
}

// CreatePost implements Repository.CreatePost using SQLite.
func (r *SQLitePostRepository) CreatePost(ctx context.Context, authorID int64, title, content string) (domain.Post, error) {
	var (
		id int64
		ts = r.now().Local().Truncate(time.Second)
	)

	err := r.db.Write(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx,
			"INSERT INTO posts (user_id, title, content, timestamp) VALUES (?, ?, ?, ?)",
			authorID, title, content, ts.Format(TimestampLayout),
		)
		if err != nil {
			return err
		}

		id, err = res.LastInsertId()

		return err
	})
	if err != nil {
		return domain.Post{}, fmt.Errorf("insert post: %w", database.Classify(err))
	}

	r.log.DebugContext(ctx, "post inserted", logging.Group("post", "id", id, "authorId", authorID))

	return domain.Post{
		ID:        id,
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		Timestamp: ts,
	}, nil
}

// GetPost implements Repository.GetPost using SQLite.
func (r *SQLitePostRepository) GetPost(ctx context.Context, id int64) (domain.Post, error) {
	db, err := r.db.Conn(ctx)
	if err != nil {
		return domain.Post{}, fmt.Errorf("query post: %w", err)
	}

	post, err := scanPost(db.QueryRowContext(ctx, postSelect+" WHERE p.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, fmt.Errorf("query post: %w", errors.Join(domain.ErrPostNotFound, err))
		}

		return domain.Post{}, fmt.Errorf("query post: %w", database.Classify(err))
	}

	return post, nil
}

// ListPosts implements Repository.ListPosts using SQLite.
// Posts sharing a timestamp are ordered by descending insertion.
func (r *SQLitePostRepository) ListPosts(ctx context.Context) ([]domain.Post, error) {
	db, err := r.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}

	rows, err := db.QueryContext(ctx, postSelect+" ORDER BY p.timestamp DESC, p.id DESC")
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", database.Classify(err))
	}
	defer rows.Close()

	posts := make([]domain.Post, 0)

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", database.Classify(err))
		}

		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", database.Classify(err))
	}

	return posts, nil
}

// DeletePost implements Repository.DeletePost using SQLite.
func (r *SQLitePostRepository) DeletePost(ctx context.Context, id int64) (bool, error) {
	var affected int64

	err := r.db.Write(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
		if err != nil {
			return err
		}

		affected, err = res.RowsAffected()

		return err
	})
	if err != nil {
		return false, fmt.Errorf("delete post: %w", database.Classify(err))
	}

	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (domain.Post, error) {
	var (
		post domain.Post
		ts   string
	)

	if err := row.Scan(&post.ID, &post.AuthorID, &post.AuthorUsername, &post.Title, &post.Content, &ts); err != nil {
		return domain.Post{}, err //nolint:wrapcheck
	}

	parsed, err := time.ParseInLocation(TimestampLayout, ts, time.Local)
	if err != nil {
		return domain.Post{}, fmt.Errorf("parse timestamp %q: %w", ts, err)
	}

	post.Timestamp = parsed

	return post, nil
}
