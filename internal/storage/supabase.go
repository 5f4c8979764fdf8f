package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"docdrive/internal/domain"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseStorage stores blobs as objects in one configured Supabase
// storage bucket. Callers cannot tell a missing object from an unreachable
// backend on reads; both surface as domain.ErrBlobNotFound and the worker
// treats the attempt as failed either way.
type SupabaseStorage struct {
	client *storage_go.Client
	bucket string
	logger domain.Logger
}

// NewSupabaseStorage creates a cloud blob backend over the given bucket.
func NewSupabaseStorage(client *storage_go.Client, bucket string, logger domain.Logger) *SupabaseStorage {
	return &SupabaseStorage{
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

// Get downloads a blob from the bucket.
func (s *SupabaseStorage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.DownloadFile(s.bucket, key)
	if err != nil {
		s.logger.Warn("Failed to download blob from bucket", "bucket", s.bucket, "key", key, "error", err)
		return nil, domain.ErrBlobNotFound
	}
	return data, nil
}

// Put uploads a blob to the bucket.
func (s *SupabaseStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.UploadFile(s.bucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", key, err)
	}
	s.logger.Debug("Stored blob in bucket", "bucket", s.bucket, "key", key, "bytes", len(data))
	return nil
}

// Exists reports whether an object with the key's name is present in the
// key's folder. The storage API lists a folder; matching the object name
// happens client-side.
func (s *SupabaseStorage) Exists(ctx context.Context, key string) (bool, error) {
	objects, err := s.client.ListFiles(s.bucket, path.Dir(key), storage_go.FileSearchOptions{
		Limit: listPageSize,
	})
	if err != nil {
		return false, fmt.Errorf("failed to list bucket %s: %w", s.bucket, err)
	}
	return containsObject(objects, path.Base(key)), nil
}

const listPageSize = 100

func containsObject(objects []storage_go.FileObject, name string) bool {
	for _, obj := range objects {
		if obj.Name == name {
			return true
		}
	}
	return false
}

// Delete removes a blob from the bucket.
func (s *SupabaseStorage) Delete(ctx context.Context, key string) error {
	if _, err := s.client.RemoveFile(s.bucket, []string{key}); err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

// Kind identifies the backend variant.
func (s *SupabaseStorage) Kind() string { return "supabase" }

// Bucket returns the configured bucket name.
func (s *SupabaseStorage) Bucket() string { return s.bucket }
