package service

import (
	"context"
)

// Post lifecycle event actions.
const (
	PostEventCreated = "post.created"
	PostEventDeleted = "post.deleted"
)

// PostEvent describes a post lifecycle change for downstream consumers
// (search indexers, feed fan-out, analytics).
type PostEvent struct {
	RequestID string   `json:"request_id,omitempty"` // For distributed tracing
	Action    string   `json:"action"`
	PostID    string   `json:"post_id"`
	AuthorID  string   `json:"author_id"`
	Tags      []string `json:"tags,omitempty"`
}

// EventPublisher defines the interface for publishing events to a message queue.
type EventPublisher interface {
	// PublishPostEvent publishes a post lifecycle event for async processing.
	PublishPostEvent(ctx context.Context, event *PostEvent) error

	// Close releases any resources held by the publisher.
	Close() error
}
