package entity

import (
	"time"

	"github.com/google/uuid"
)

// Post is a published article. Only the author may mutate or delete it.
type Post struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"` // Required, non-empty.
	Text       string    `json:"text"`  // Required, non-empty.
	Tags       []string  `json:"tags"`  // Ordered, free-form labels; duplicates count as distinct occurrences.
	ImageURL   string    `json:"imageUrl,omitempty"`
	ViewsCount int64     `json:"viewsCount"` // Non-negative view counter, starts at zero.
	AuthorID   uuid.UUID `json:"authorId"`   // Immutable after creation.
	CreatedAt  time.Time `json:"createdAt"`  // Immutable after creation.
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TagCount is one entry of the derived tag-frequency aggregate.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}
