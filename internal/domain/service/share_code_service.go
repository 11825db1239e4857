package service

import (
	"github.com/google/uuid"
)

// ShareCodeService generates scannable share codes for posts.
type ShareCodeService interface {
	// GeneratePostQR renders a PNG QR code pointing at the post's public URL.
	GeneratePostQR(postID uuid.UUID) ([]byte, error)
}
