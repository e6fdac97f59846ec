package domain

import (
	"errors"
	"time"
)

var (
	// ErrPostNotFound is returned when looking up a non-existent post.
	ErrPostNotFound = errors.New("post not found")
	// ErrEmptyPostTitle is returned when a post is created without a title.
	ErrEmptyPostTitle = errors.New("post title is empty")
	// ErrEmptyPostContent is returned when a post is created without content.
	ErrEmptyPostContent = errors.New("post content is empty")
)

// Post is a bulletin board entry visible to every user.
type Post struct {
	ID             int64     `json:"id" yaml:"id"`
	AuthorID       int64     `json:"authorId" yaml:"authorId"`
	AuthorUsername string    `json:"author,omitempty" yaml:"author,omitempty"` // Filled on listing
	Title          string    `json:"title" yaml:"title"`
	Content        string    `json:"content" yaml:"content"`
	Timestamp      time.Time `json:"timestamp" yaml:"timestamp"` // Second resolution, local clock
}
