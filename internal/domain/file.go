package domain

import (
	"context"
	"time"
)

// ItemKind distinguishes files from folders in the filesystem tree.
type ItemKind string

const (
	ItemKindFile   ItemKind = "file"
	ItemKindFolder ItemKind = "folder"
)

// FileRecord is the persisted metadata row for an item in the user's
// filesystem tree, including the text-extraction status fields.
//
// Extraction status is three-state:
//   - ContentExtracted true: ContentText is non-empty, ExtractionError nil.
//   - ContentExtracted false, ExtractionError set: extraction attempted and failed.
//   - ContentExtracted false, ExtractionError nil: extraction not yet attempted.
type FileRecord struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Kind     ItemKind `json:"type"`
	ParentID *int64   `json:"parent_id,omitempty"`
	OwnerID  int64    `json:"owner_id"`

	MimeType    string `json:"mime_type"`
	Size        int64  `json:"size"`
	StoragePath string `json:"path,omitempty"`

	ContentText      *string `json:"-"`
	ContentExtracted bool    `json:"content_extracted"`
	ExtractionError  *string `json:"extraction_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasContent reports whether extracted text is present on the record.
func (f *FileRecord) HasContent() bool {
	return f.ContentText != nil && *f.ContentText != ""
}

// ExtractionUpdate is the atomic status mutation applied by the worker
// after an extraction attempt. Content is only written when non-nil so a
// failed re-extraction never clobbers previously extracted text.
type ExtractionUpdate struct {
	Extracted bool
	Error     *string
	Content   *string
}

// FileRepository defines persistence operations for file records.
// Updates are single-row atomic: a reader observes either the state before
// or after an update, never a partially applied one.
type FileRepository interface {
	Create(ctx context.Context, record *FileRecord) error
	GetByID(ctx context.Context, id int64) (*FileRecord, error)
	UpdateStoragePath(ctx context.Context, id int64, storagePath string) error
	UpdateExtraction(ctx context.Context, id int64, update ExtractionUpdate) error
	ResetExtraction(ctx context.Context, id int64) error
	ListFiles(ctx context.Context) ([]*FileRecord, error)
}
