package service

import (
	"context"
	"errors"
	"strings"

	"docdrive/internal/domain"
	"docdrive/internal/storage"
	apperrors "docdrive/pkg/errors"
)

// UploadService is the minimal upload flow feeding the extraction
// pipeline: validate, persist the record, store the blob under the derived
// key, then notify the extraction control plane. Validation failures
// propagate synchronously and leave no record behind.
type UploadService struct {
	repo      domain.FileRepository
	blobs     domain.BlobStorage
	validator *Validator
	notifier  domain.UploadNotifier
	logger    domain.Logger
}

// NewUploadService creates a new upload service.
func NewUploadService(
	repo domain.FileRepository,
	blobs domain.BlobStorage,
	validator *Validator,
	notifier domain.UploadNotifier,
	logger domain.Logger,
) *UploadService {
	return &UploadService{
		repo:      repo,
		blobs:     blobs,
		validator: validator,
		notifier:  notifier,
		logger:    logger,
	}
}

// Upload validates and stores one PDF file, returning the created record.
func (s *UploadService) Upload(ctx context.Context, rawName string, parentID *int64, ownerID int64, data []byte) (*domain.FileRecord, error) {
	if strings.TrimSpace(rawName) == "" {
		return nil, &domain.ValidationError{Field: "filename", Message: "No file selected"}
	}
	if !strings.HasSuffix(strings.ToLower(rawName), ".pdf") {
		return nil, &domain.ValidationError{Field: "filename", Message: "Only PDF files are allowed"}
	}

	name := s.validator.SanitizeFilename(rawName)
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		// Sanitization can eat the extension in pathological names.
		name += ".pdf"
	}

	if err := s.validator.ValidateSize(data); err != nil {
		return nil, err
	}
	if err := s.validator.ValidatePDF(data); err != nil {
		return nil, err
	}

	record := &domain.FileRecord{
		Name:     name,
		Kind:     domain.ItemKindFile,
		ParentID: parentID,
		OwnerID:  ownerID,
		Size:     int64(len(data)),
		MimeType: pdfMimeType,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		if errors.Is(err, domain.ErrDuplicateName) {
			return nil, &domain.ValidationError{
				Field:   "filename",
				Message: "A file with this name already exists in this folder",
			}
		}
		return nil, apperrors.NewInternalError("Failed to create file record", err)
	}

	key := storage.ObjectKey(record.ID, record.Name)
	if err := s.blobs.Put(ctx, key, data, pdfMimeType); err != nil {
		s.logger.Error("Failed to store uploaded blob, record has no content", err,
			"file_id", record.ID, "key", key)
		return nil, apperrors.NewStorageError("Failed to store file content", err)
	}

	if err := s.repo.UpdateStoragePath(ctx, record.ID, key); err != nil {
		s.logger.Error("Failed to persist storage path", err, "file_id", record.ID)
	} else {
		record.StoragePath = key
	}

	s.logger.Info("Uploaded file", "file_id", record.ID, "name", record.Name, "bytes", len(data))
	s.notifier.NotifyUploaded(ctx, record.ID, key)
	return record, nil
}
