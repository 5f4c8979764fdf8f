// Package storage provides the blob storage backends and the key
// derivation scheme shared by the upload and extraction paths.
package storage

import (
	"fmt"
	"path"

	"docdrive/internal/domain"
)

const keyPrefix = "uploads"

// ObjectKey derives the blob key for a file from its id and display name.
// The key keeps the original extension when the name has one, so tooling
// inspecting the bucket or upload directory can still tell file types
// apart. Derivation is deterministic: upload and later extraction agree on
// the same key from (id, name) alone.
func ObjectKey(id int64, name string) string {
	if ext := path.Ext(name); ext != "" {
		return fmt.Sprintf("%s/%d%s", keyPrefix, id, ext)
	}
	return fmt.Sprintf("%s/%d", keyPrefix, id)
}

// RecordKey returns the blob key for a record: the stored storage_path is
// authoritative when present, otherwise the key is derived from id and name.
func RecordKey(record *domain.FileRecord) string {
	if record.StoragePath != "" {
		return record.StoragePath
	}
	return ObjectKey(record.ID, record.Name)
}

// LegacyObjectKey is the bare-id key used before extension-aware keys.
// Readers fall back to it when the derived key misses; writers never use it.
func LegacyObjectKey(id int64) string {
	return fmt.Sprintf("%s/%d", keyPrefix, id)
}
