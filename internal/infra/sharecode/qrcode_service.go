// Package sharecode renders scannable share codes for posts.
package sharecode

import (
	"fmt"
	"strings"

	"scribe/internal/domain/service"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

type qrcodeService struct {
	baseURL              string
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// NewQRCodeService creates a new QR code service instance. The generated
// codes encode the post's public URL under baseURL.
func NewQRCodeService(baseURL string, size int, errorCorrectionLevel string) service.ShareCodeService {
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	return &qrcodeService{
		baseURL:              strings.TrimRight(baseURL, "/"),
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// GeneratePostQR generates a PNG QR code pointing at the post's public URL
func (s *qrcodeService) GeneratePostQR(postID uuid.UUID) ([]byte, error) {
	postURL := fmt.Sprintf("%s/posts/%s", s.baseURL, postID)

	qrCode, err := qrcode.New(postURL, s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}
