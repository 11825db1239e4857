package repository

import (
	"context"
	"errors"

	"scribe/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrPostNotFound is returned when a post does not exist.
	ErrPostNotFound = errors.New("post not found")

	// ErrNotPostAuthor is returned when a mutation is attempted by an
	// identity other than the post's stored author.
	ErrNotPostAuthor = errors.New("caller is not the post author")
)

// PostPatch describes a partial update of a post. Nil fields are left untouched.
type PostPatch struct {
	Title    *string
	Text     *string
	Tags     *[]string
	ImageURL *string
}

// PostRepository defines the persistence operations for posts, including
// view-count mutation and tag aggregation.
type PostRepository interface {
	// Create persists a new post with a zero view count, assigning its ID
	// and creation timestamp.
	Create(ctx context.Context, post *entity.Post) error

	// FindByIDAndIncrementViews retrieves a post and bumps its view counter.
	// The increment is atomic with respect to concurrent calls on the same
	// post; no update may be lost.
	FindByIDAndIncrementViews(ctx context.Context, id uuid.UUID) (*entity.Post, error)

	// FindAll lists posts ordered by creation time, most recent first.
	// A non-empty tagFilter narrows the result to posts carrying that tag.
	FindAll(ctx context.Context, tagFilter string) ([]*entity.Post, error)

	// Update applies the patch when authorID matches the stored author.
	// Returns ErrPostNotFound or ErrNotPostAuthor otherwise.
	Update(ctx context.Context, id, authorID uuid.UUID, patch *PostPatch) (*entity.Post, error)

	// Delete removes the post under the same ownership protocol as Update
	// and returns the final state of the removed post.
	Delete(ctx context.Context, id, authorID uuid.UUID) (*entity.Post, error)

	// TagFrequencies returns up to limit tags ordered by occurrence count
	// descending, ties broken by first-seen tag order. The result reflects
	// all committed writes.
	TagFrequencies(ctx context.Context, limit int) ([]*entity.TagCount, error)
}
