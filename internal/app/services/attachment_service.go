package services

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/budline/budline/internal/app/models"
	"github.com/budline/budline/internal/app/models/dto"
	"github.com/budline/budline/internal/pkg/apperrors"
	"github.com/budline/budline/internal/pkg/filestorage"
)

// maxUploadSize bounds a single attachment upload.
const maxUploadSize = 25 << 20 // 25 MiB

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"video/mp4":  true,
	"video/webm": true,
}

// AttachmentService defines the interface for media uploads
type AttachmentService interface {
	Upload(ctx context.Context, uploaderID int64, fileHeader *multipart.FileHeader) (*dto.AttachmentResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.AttachmentResponse, error)
}

// attachmentServiceImpl implements AttachmentService
type attachmentServiceImpl struct {
	attachmentStore attachmentStore
	storage         filestorage.Storage
	logger          zerolog.Logger
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(
	attachmentStore attachmentStore,
	storage filestorage.Storage,
	logger zerolog.Logger,
) AttachmentService {
	return &attachmentServiceImpl{
		attachmentStore: attachmentStore,
		storage:         storage,
		logger:          logger,
	}
}

// Upload stores a media file and records it. The returned id can be set as
// a message's direct attachment or referenced inline from message text.
func (s *attachmentServiceImpl) Upload(ctx context.Context, uploaderID int64, fileHeader *multipart.FileHeader) (*dto.AttachmentResponse, error) {
	if fileHeader.Size > maxUploadSize {
		return nil, apperrors.NewInvalidArgumentError("File exceeds the upload size limit")
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if !allowedMimeTypes[mimeType] {
		return nil, apperrors.NewInvalidArgumentError("Unsupported media type")
	}

	storageKey, err := s.storage.Save(fileHeader)
	if err != nil {
		s.logger.Error().Err(err).Str("fileName", fileHeader.Filename).Msg("Failed to store upload")
		return nil, err
	}

	attachment := &models.Attachment{
		ID:         uuid.New(),
		UploaderID: uploaderID,
		MimeType:   mimeType,
		FileName:   fileHeader.Filename,
		StorageKey: storageKey,
		FileSize:   fileHeader.Size,
	}

	if err := s.attachmentStore.Create(ctx, attachment); err != nil {
		// The record failed; don't leave the file orphaned
		if delErr := s.storage.Delete(storageKey); delErr != nil {
			s.logger.Warn().Err(delErr).Str("storageKey", storageKey).Msg("Failed to clean up orphaned upload")
		}
		return nil, err
	}

	s.logger.Info().
		Str("attachmentID", attachment.ID.String()).
		Int64("uploaderID", uploaderID).
		Str("mimeType", mimeType).
		Msg("Attachment uploaded")

	return s.response(attachment), nil
}

// Get retrieves attachment metadata with its resolved URL
func (s *attachmentServiceImpl) Get(ctx context.Context, id uuid.UUID) (*dto.AttachmentResponse, error) {
	attachment, err := s.attachmentStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.response(attachment), nil
}

func (s *attachmentServiceImpl) response(attachment *models.Attachment) *dto.AttachmentResponse {
	return &dto.AttachmentResponse{
		ID:        attachment.ID,
		MimeType:  attachment.MimeType,
		FileName:  attachment.FileName,
		FileSize:  attachment.FileSize,
		Width:     attachment.Width,
		Height:    attachment.Height,
		URL:       s.storage.ResolveURL(attachment.StorageKey),
		CreatedAt: attachment.CreatedAt,
	}
}
