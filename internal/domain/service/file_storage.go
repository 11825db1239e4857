package service

import (
	"context"
	"io"
)

// FileStorage is the boundary contract for binary payloads (avatars, post
// images). The core treats the returned reference as an opaque string and
// never validates its reachability.
type FileStorage interface {
	// Save stores the payload and returns a stable reference string to be
	// kept as avatarUrl/imageUrl.
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)

	// Open streams a previously stored payload by its key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the underlying resource. Failures are best-effort
	// warnings for callers, never a reason to fail a post or user operation.
	Delete(ctx context.Context, key string) error
}
