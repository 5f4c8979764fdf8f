package domain

import "context"

// BlobStorage is the uniform contract over blob backends. Keys are opaque
// slash-separated strings; the local backend maps them to paths under its
// root directory, the cloud backend to object names in one bucket.
type BlobStorage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error

	// Kind identifies the active backend variant for diagnostic reporting.
	Kind() string
	// Bucket returns the configured bucket name, empty for the local backend.
	Bucket() string
}
