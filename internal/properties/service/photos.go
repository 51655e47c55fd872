package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"

	"rental_portal_backend/internal/properties/repository"
	"rental_portal_backend/internal/properties/transport"
	"rental_portal_backend/internal/storage"
	"rental_portal_backend/platform/apperr"
)

// photoMetadata holds EXIF data extracted from an uploaded photo.
type photoMetadata struct {
	TakenAt     *time.Time
	CameraModel string
}

// RequestPhotoUpload returns a presigned PUT URL for uploading one photo of
// the listing. The object is attached only after ConfirmPhotoUpload.
func (s *Service) RequestPhotoUpload(ctx context.Context, ownerID string, id uuid.UUID, req transport.RequestPhotoUploadRequest) (transport.PhotoUploadResponse, error) {
	property, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return transport.PhotoUploadResponse{}, err
	}
	if len(property.Photos) >= maxPhotos {
		return transport.PhotoUploadResponse{}, apperr.Validation("photo limit reached")
	}

	folder := ownerID + "/" + id.String()
	presigned, err := s.store.GenerateUploadURL(ctx, s.bucket, folder, req.FileName, req.ContentType, req.SizeBytes)
	if err != nil {
		return transport.PhotoUploadResponse{}, apperr.Wrap(apperr.KindValidation, "upload rejected", err)
	}

	return transport.PhotoUploadResponse{
		UploadURL: presigned.URL,
		FileKey:   presigned.FileKey,
		ExpiresAt: presigned.ExpiresAt,
	}, nil
}

// ConfirmPhotoUpload attaches an uploaded object to the listing. For images
// the object is inspected for EXIF metadata; extraction failures are
// tolerated since many uploads have their metadata stripped.
func (s *Service) ConfirmPhotoUpload(ctx context.Context, ownerID string, id uuid.UUID, req transport.ConfirmPhotoUploadRequest) (repository.Property, error) {
	property, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return repository.Property{}, err
	}
	if len(property.Photos) >= maxPhotos {
		return repository.Property{}, apperr.Validation("photo limit reached")
	}
	for _, photo := range property.Photos {
		if photo.FileKey == req.FileKey {
			return repository.Property{}, apperr.Conflict("photo already attached")
		}
	}

	photo := repository.Photo{
		FileKey:     req.FileKey,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		Position:    len(property.Photos),
	}

	if storage.IsImageContentType(req.ContentType) {
		if meta := s.extractMetadata(ctx, req.FileKey); meta != nil {
			photo.TakenAt = meta.TakenAt
			photo.CameraModel = meta.CameraModel
		}
	}

	property.Photos = append(property.Photos, photo)
	return s.repo.Update(ctx, property)
}

// PhotoDownloadURL returns a presigned GET URL for one photo of a live
// listing (or any photo for the owner).
func (s *Service) PhotoDownloadURL(ctx context.Context, viewerID string, id uuid.UUID, fileKey string) (transport.PhotoDownloadResponse, error) {
	property, err := s.Get(ctx, viewerID, id)
	if err != nil {
		return transport.PhotoDownloadResponse{}, err
	}

	found := false
	for _, photo := range property.Photos {
		if photo.FileKey == fileKey {
			found = true
			break
		}
	}
	if !found {
		return transport.PhotoDownloadResponse{}, apperr.NotFound("photo not found")
	}

	presigned, err := s.store.GenerateDownloadURL(ctx, s.bucket, fileKey)
	if err != nil {
		return transport.PhotoDownloadResponse{}, err
	}

	return transport.PhotoDownloadResponse{
		URL:       presigned.URL,
		FileKey:   presigned.FileKey,
		ExpiresAt: presigned.ExpiresAt,
	}, nil
}

// DeletePhoto detaches a photo from the listing and removes the object.
func (s *Service) DeletePhoto(ctx context.Context, ownerID string, id uuid.UUID, fileKey string) (repository.Property, error) {
	property, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return repository.Property{}, err
	}

	remaining := make([]repository.Photo, 0, len(property.Photos))
	found := false
	for _, photo := range property.Photos {
		if photo.FileKey == fileKey {
			found = true
			continue
		}
		photo.Position = len(remaining)
		remaining = append(remaining, photo)
	}
	if !found {
		return repository.Property{}, apperr.NotFound("photo not found")
	}
	property.Photos = remaining

	updated, err := s.repo.Update(ctx, property)
	if err != nil {
		return repository.Property{}, err
	}

	if err := s.store.DeleteObject(ctx, s.bucket, fileKey); err != nil {
		s.log.Error("failed to delete listing photo", "fileKey", fileKey, "error", err)
	}

	return updated, nil
}

func (s *Service) extractMetadata(ctx context.Context, fileKey string) *photoMetadata {
	reader, err := s.store.DownloadFile(ctx, s.bucket, fileKey)
	if err != nil {
		s.log.Error("failed to download photo for metadata", "fileKey", fileKey, "error", err)
		return nil
	}
	defer reader.Close()

	return decodePhotoMetadata(reader)
}

// decodePhotoMetadata reads EXIF tags from an image stream. It returns nil
// when the stream carries no parseable EXIF block.
func decodePhotoMetadata(r io.Reader) *photoMetadata {
	exifData, err := exif.Decode(r)
	if err != nil {
		return nil
	}

	meta := &photoMetadata{}
	if takenAt, err := exifData.DateTime(); err == nil {
		meta.TakenAt = &takenAt
	}
	if modelTag, err := exifData.Get(exif.Model); err == nil {
		if model, err := modelTag.StringVal(); err == nil {
			meta.CameraModel = model
		}
	}

	if meta.TakenAt == nil && meta.CameraModel == "" {
		return nil
	}
	return meta
}
