package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"docdrive/internal/domain"

	"github.com/supabase-community/supabase-go"
)

const itemsTable = "filesystem_items"

// SupabaseFileRepository implements domain.FileRepository against the
// filesystem_items table via PostgREST. It is the record store for cloud
// deployments and runs with the service key, so no per-request tokens are
// involved.
type SupabaseFileRepository struct {
	client *supabase.Client
	logger domain.Logger
}

// NewSupabaseFileRepository creates a Supabase-backed file repository.
func NewSupabaseFileRepository(client *supabase.Client, logger domain.Logger) *SupabaseFileRepository {
	return &SupabaseFileRepository{
		client: client,
		logger: logger,
	}
}

// Create inserts a new record and assigns the id generated by the database.
func (r *SupabaseFileRepository) Create(ctx context.Context, record *domain.FileRecord) error {
	row := map[string]interface{}{
		"name":         record.Name,
		"kind":         string(record.Kind),
		"parent_id":    record.ParentID,
		"owner_id":     record.OwnerID,
		"size":         record.Size,
		"mime_type":    record.MimeType,
		"storage_path": record.StoragePath,
	}

	data, _, err := r.client.From(itemsTable).Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		if isDuplicateKeyError(err) {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("failed to create file record: %w", err)
	}

	var inserted []map[string]interface{}
	if err := json.Unmarshal(data, &inserted); err != nil {
		return fmt.Errorf("failed to unmarshal insert response: %w", err)
	}
	if len(inserted) == 0 {
		return fmt.Errorf("insert returned no rows")
	}
	record.ID = getInt64(inserted[0], "id")
	return nil
}

// GetByID loads one record, reporting domain.ErrFileNotFound for unknown ids.
func (r *SupabaseFileRepository) GetByID(ctx context.Context, id int64) (*domain.FileRecord, error) {
	data, _, err := r.client.From(itemsTable).
		Select("*", "", false).
		Eq("id", strconv.FormatInt(id, 10)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get file record: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrFileNotFound
	}

	return mapToRecord(rows[0]), nil
}

// UpdateStoragePath persists the resolved blob key on the record.
func (r *SupabaseFileRepository) UpdateStoragePath(ctx context.Context, id int64, storagePath string) error {
	row := map[string]interface{}{
		"storage_path": storagePath,
		"updated_at":   time.Now().UTC().Format(time.RFC3339),
	}
	if err := r.updateByID(id, row); err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			return err
		}
		return fmt.Errorf("failed to update storage path for %d: %w", id, err)
	}
	return nil
}

// UpdateExtraction applies an extraction-status update in one PostgREST
// call. content_text is left untouched unless the update carries content.
func (r *SupabaseFileRepository) UpdateExtraction(ctx context.Context, id int64, update domain.ExtractionUpdate) error {
	row := map[string]interface{}{
		"content_extracted": update.Extracted,
		"extraction_error":  update.Error,
		"updated_at":        time.Now().UTC().Format(time.RFC3339),
	}
	if update.Content != nil {
		row["content_text"] = *update.Content
	}

	if err := r.updateByID(id, row); err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			return err
		}
		return fmt.Errorf("failed to update extraction status for %d: %w", id, err)
	}
	return nil
}

// ResetExtraction returns the extraction fields to their initial state.
func (r *SupabaseFileRepository) ResetExtraction(ctx context.Context, id int64) error {
	row := map[string]interface{}{
		"content_extracted": false,
		"extraction_error":  nil,
		"content_text":      nil,
		"updated_at":        time.Now().UTC().Format(time.RFC3339),
	}
	if err := r.updateByID(id, row); err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			return err
		}
		return fmt.Errorf("failed to reset extraction for %d: %w", id, err)
	}
	return nil
}

// updateByID applies one update, requesting the changed rows back so an
// update that matched nothing reports domain.ErrFileNotFound. PostgREST
// treats a zero-row update as success, which would otherwise hide unknown
// ids from the cloud store while the SQLite store reports them.
func (r *SupabaseFileRepository) updateByID(id int64, row map[string]interface{}) error {
	data, _, err := r.client.From(itemsTable).
		Update(row, "representation", "").
		Eq("id", strconv.FormatInt(id, 10)).
		Execute()
	if err != nil {
		return err
	}
	return ensureUpdated(data)
}

// ensureUpdated inspects a returning=representation payload and reports
// domain.ErrFileNotFound when no row was touched.
func ensureUpdated(data []byte) error {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to unmarshal update response: %w", err)
	}
	if len(rows) == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

// isDuplicateKeyError recognizes the PostgREST rendering of a unique
// constraint violation (Postgres error code 23505).
func isDuplicateKeyError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}

// ListFiles returns every record with kind=file.
func (r *SupabaseFileRepository) ListFiles(ctx context.Context) ([]*domain.FileRecord, error) {
	data, _, err := r.client.From(itemsTable).
		Select("*", "", false).
		Eq("kind", string(domain.ItemKindFile)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list file records: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	records := make([]*domain.FileRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, mapToRecord(row))
	}
	return records, nil
}

// mapToRecord converts a PostgREST row to a FileRecord.
func mapToRecord(row map[string]interface{}) *domain.FileRecord {
	record := &domain.FileRecord{
		ID:               getInt64(row, "id"),
		Name:             getString(row, "name"),
		Kind:             domain.ItemKind(getString(row, "kind")),
		OwnerID:          getInt64(row, "owner_id"),
		Size:             getInt64(row, "size"),
		MimeType:         getString(row, "mime_type"),
		StoragePath:      getString(row, "storage_path"),
		ContentExtracted: getBool(row, "content_extracted"),
	}

	if val, ok := row["parent_id"]; ok && val != nil {
		parentID := getInt64(row, "parent_id")
		record.ParentID = &parentID
	}
	if s := getString(row, "content_text"); s != "" {
		record.ContentText = &s
	}
	if s := getString(row, "extraction_error"); s != "" {
		record.ExtractionError = &s
	}
	if t, err := time.Parse(time.RFC3339, getString(row, "created_at")); err == nil {
		record.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, getString(row, "updated_at")); err == nil {
		record.UpdatedAt = t
	}
	return record
}

// Helper functions for type conversion
func getString(row map[string]interface{}, key string) string {
	if val, ok := row[key]; ok && val != nil {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

func getInt64(row map[string]interface{}, key string) int64 {
	if val, ok := row[key]; ok && val != nil {
		switch v := val.(type) {
		case int64:
			return v
		case int:
			return int64(v)
		case float64:
			return int64(v)
		}
	}
	return 0
}

func getBool(row map[string]interface{}, key string) bool {
	if val, ok := row[key]; ok && val != nil {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}
