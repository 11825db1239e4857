package usecase

import (
	"context"

	"scribe/internal/domain/entity"

	"github.com/google/uuid"
)

// CreatePostInput defines the data required to publish a post.
type CreatePostInput struct {
	Title    string
	Text     string
	Tags     []string
	ImageURL string
	AuthorID uuid.UUID
}

// UpdatePostInput defines a partial post update. Nil fields are left untouched.
type UpdatePostInput struct {
	Title    *string
	Text     *string
	Tags     *[]string
	ImageURL *string
}

// PostUsecase defines the interface for post-related business operations.
type PostUsecase interface {
	// CreatePost publishes a new post owned by input.AuthorID.
	CreatePost(ctx context.Context, input *CreatePostInput) (*entity.Post, error)

	// GetPost returns a single post, counting the read as one view.
	GetPost(ctx context.Context, id uuid.UUID) (*entity.Post, error)

	// ListPosts returns posts newest first, optionally narrowed to a tag.
	// Listing does not touch view counters.
	ListPosts(ctx context.Context, tagFilter string) ([]*entity.Post, error)

	// UpdatePost applies the patch when callerID authored the post.
	UpdatePost(ctx context.Context, id, callerID uuid.UUID, input *UpdatePostInput) (*entity.Post, error)

	// DeletePost removes the post when callerID authored it.
	DeletePost(ctx context.Context, id, callerID uuid.UUID) error

	// TopTags returns the most frequent tags across all posts. A
	// non-positive limit falls back to the configured default.
	TopTags(ctx context.Context, limit int) ([]*entity.TagCount, error)

	// ShareQR renders a PNG QR code pointing at the post's public URL.
	ShareQR(ctx context.Context, id uuid.UUID) ([]byte, error)
}
