package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"docdrive/internal/domain"
)

// LocalStorage stores blobs as files under a root directory. Keys map to
// paths below the root; the directory is created if absent.
type LocalStorage struct {
	root   string
	logger domain.Logger
}

// NewLocalStorage creates a local blob backend rooted at root.
func NewLocalStorage(root string, logger domain.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", root, err)
	}
	return &LocalStorage{
		root:   root,
		logger: logger,
	}, nil
}

func (s *LocalStorage) filePath(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Get reads a blob. A missing file reports domain.ErrBlobNotFound.
func (s *LocalStorage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return data, nil
}

// Put writes a blob, creating parent directories as needed.
func (s *LocalStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	p := s.filePath(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	s.logger.Debug("Stored blob on local disk", "key", key, "bytes", len(data))
	return nil
}

// Exists reports whether a blob is present.
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	if _, err := os.Stat(s.filePath(key)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat blob %s: %w", key, err)
	}
	return true, nil
}

// Delete removes a blob. A missing file reports domain.ErrBlobNotFound.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.filePath(key)); err != nil {
		if os.IsNotExist(err) {
			return domain.ErrBlobNotFound
		}
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

// Kind identifies the backend variant.
func (s *LocalStorage) Kind() string { return "local" }

// Bucket is empty for the local backend.
func (s *LocalStorage) Bucket() string { return "" }
