package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const qrImageSize = 512

// ShareQR renders a PNG QR code pointing at the public listing page. Only
// live listings can be shared.
func (s *Service) ShareQR(ctx context.Context, viewerID string, id uuid.UUID) ([]byte, error) {
	property, err := s.Get(ctx, viewerID, id)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(s.ShareURL(property.ID), qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("encode share QR: %w", err)
	}
	return png, nil
}
