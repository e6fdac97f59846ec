package post_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/campuslink/internal/domain"
	"github.com/mkrupp/campuslink/internal/repo/user"
	"github.com/mkrupp/campuslink/internal/testutil"

	. "github.com/mkrupp/campuslink/internal/repo/post"
)

// fakeClock returns a fixed time that tests can advance.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func setupPostRepo(t *testing.T) (*SQLitePostRepository, *fakeClock, int64) {
	t.Helper()

	db := testutil.OpenDatabase(t)
	clock := &fakeClock{now: time.Date(2025, 5, 1, 9, 30, 0, 0, time.Local)}

	authorID, err := user.NewSQLiteUserRepository(db).CreateUser(context.Background(), "dave", "digest")
	require.NoError(t, err)

	return NewSQLitePostRepository(db, WithClock(clock.Now)), clock, authorID
}

func TestSQLitePostRepository_CreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, clock, author := setupPostRepo(t)

	created, err := repo.CreatePost(ctx, author, "Lost keys", "Near the library")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.True(t, created.Timestamp.Equal(clock.Now()))

	got, err := repo.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "dave", got.AuthorUsername)
	assert.Equal(t, "Lost keys", got.Title)
	assert.Equal(t, "Near the library", got.Content)
	assert.True(t, got.Timestamp.Equal(created.Timestamp))
}

func TestSQLitePostRepository_TimestampHasSecondResolution(t *testing.T) {
	t.Parallel()

	repo, clock, author := setupPostRepo(t)
	clock.Advance(750 * time.Millisecond)

	created, err := repo.CreatePost(context.Background(), author, "t", "c")
	require.NoError(t, err)
	assert.Zero(t, created.Timestamp.Nanosecond())
}

func TestSQLitePostRepository_ListNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, clock, author := setupPostRepo(t)

	p1, err := repo.CreatePost(ctx, author, "P1", "first")
	require.NoError(t, err)

	clock.Advance(time.Minute)

	p2, err := repo.CreatePost(ctx, author, "P2", "second")
	require.NoError(t, err)

	posts, err := repo.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, p2.ID, posts[0].ID)
	assert.Equal(t, p1.ID, posts[1].ID)
}

func TestSQLitePostRepository_SameSecondTieBreak(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, _, author := setupPostRepo(t)

	p1, err := repo.CreatePost(ctx, author, "P1", "first")
	require.NoError(t, err)
	p2, err := repo.CreatePost(ctx, author, "P2", "second")
	require.NoError(t, err)

	posts, err := repo.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, []int64{p2.ID, p1.ID}, []int64{posts[0].ID, posts[1].ID})
}

func TestSQLitePostRepository_UnknownAuthor(t *testing.T) {
	t.Parallel()

	repo, _, _ := setupPostRepo(t)

	_, err := repo.CreatePost(context.Background(), 777, "t", "c")
	require.ErrorIs(t, err, domain.ErrOwnerNotFound)
}

func TestSQLitePostRepository_DeleteIsUnconditional(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, _, author := setupPostRepo(t)

	created, err := repo.CreatePost(ctx, author, "t", "c")
	require.NoError(t, err)

	removed, err := repo.DeletePost(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.DeletePost(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = repo.GetPost(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrPostNotFound)

	posts, err := repo.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestSQLitePostRepository_Inactive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewSQLitePostRepository(testutil.ClosedDatabase(t))

	_, err := repo.CreatePost(ctx, 1, "t", "c")
	require.ErrorIs(t, err, domain.ErrStoreInactive)

	_, err = repo.ListPosts(ctx)
	require.ErrorIs(t, err, domain.ErrStoreInactive)

	_, err = repo.DeletePost(ctx, 1)
	require.ErrorIs(t, err, domain.ErrStoreInactive)
}
