// Package repository provides the FileRecord stores: SQLite for local
// deployments and Supabase PostgREST for cloud deployments.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"docdrive/internal/domain"

	"github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS filesystem_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	parent_id INTEGER,
	owner_id INTEGER NOT NULL DEFAULT 0,
	size INTEGER NOT NULL DEFAULT 0,
	mime_type TEXT NOT NULL DEFAULT '',
	storage_path TEXT NOT NULL DEFAULT '',
	content_text TEXT,
	content_extracted INTEGER NOT NULL DEFAULT 0,
	extraction_error TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
-- COALESCE folds the NULL parent of root-level items into one value so
-- duplicates at the root are caught too (NULLs compare distinct in SQLite
-- unique indexes).
CREATE UNIQUE INDEX IF NOT EXISTS idx_items_name_parent_owner
	ON filesystem_items(name, COALESCE(parent_id, 0), owner_id);
`

// SQLiteFileRepository implements domain.FileRepository over a SQLite
// database file. It is the record store for local deployments.
type SQLiteFileRepository struct {
	db     *sql.DB
	logger domain.Logger
}

// NewSQLiteFileRepository opens (and if needed bootstraps) the database at
// dbPath.
func NewSQLiteFileRepository(dbPath string, logger domain.Logger) (*SQLiteFileRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}
	// One connection keeps writes serialized and makes :memory: databases
	// behave (each new pool connection would otherwise see a fresh schema).
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteFileRepository{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (r *SQLiteFileRepository) Close() error {
	return r.db.Close()
}

// Create inserts a new record and assigns its id.
func (r *SQLiteFileRepository) Create(ctx context.Context, record *domain.FileRecord) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO filesystem_items (name, kind, parent_id, owner_id, size, mime_type, storage_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.Name, string(record.Kind), record.ParentID, record.OwnerID,
		record.Size, record.MimeType, record.StoragePath,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("failed to insert file record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}
	record.ID = id
	record.CreatedAt = time.Now().UTC()
	record.UpdatedAt = record.CreatedAt
	return nil
}

// GetByID loads one record, reporting domain.ErrFileNotFound for unknown ids.
func (r *SQLiteFileRepository) GetByID(ctx context.Context, id int64) (*domain.FileRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, kind, parent_id, owner_id, size, mime_type, storage_path,
		        content_text, content_extracted, extraction_error, created_at, updated_at
		 FROM filesystem_items WHERE id = ?`, id)
	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load file record %d: %w", id, err)
	}
	return record, nil
}

// UpdateStoragePath persists the resolved blob key on the record.
func (r *SQLiteFileRepository) UpdateStoragePath(ctx context.Context, id int64, storagePath string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE filesystem_items SET storage_path = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		storagePath, id)
	if err != nil {
		return fmt.Errorf("failed to update storage path for %d: %w", id, err)
	}
	return checkAffected(result)
}

// UpdateExtraction applies an extraction-status update as a single
// statement. ContentText is only overwritten when the update carries new
// content, so a failed attempt leaves previously extracted text in place.
func (r *SQLiteFileRepository) UpdateExtraction(ctx context.Context, id int64, update domain.ExtractionUpdate) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE filesystem_items
		 SET content_extracted = ?,
		     extraction_error = ?,
		     content_text = COALESCE(?, content_text),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		update.Extracted, update.Error, update.Content, id)
	if err != nil {
		return fmt.Errorf("failed to update extraction status for %d: %w", id, err)
	}
	return checkAffected(result)
}

// ResetExtraction returns the extraction fields to their initial state so
// the file can be re-enqueued.
func (r *SQLiteFileRepository) ResetExtraction(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE filesystem_items
		 SET content_extracted = 0, extraction_error = NULL, content_text = NULL,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to reset extraction for %d: %w", id, err)
	}
	return checkAffected(result)
}

// ListFiles returns every record with kind=file, oldest first.
func (r *SQLiteFileRepository) ListFiles(ctx context.Context) ([]*domain.FileRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, kind, parent_id, owner_id, size, mime_type, storage_path,
		        content_text, content_extracted, extraction_error, created_at, updated_at
		 FROM filesystem_items WHERE kind = 'file' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list file records: %w", err)
	}
	defer rows.Close()

	var records []*domain.FileRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*domain.FileRecord, error) {
	var (
		record          domain.FileRecord
		kind            string
		parentID        sql.NullInt64
		contentText     sql.NullString
		extractionError sql.NullString
		createdAt       string
		updatedAt       string
	)
	err := row.Scan(&record.ID, &record.Name, &kind, &parentID, &record.OwnerID,
		&record.Size, &record.MimeType, &record.StoragePath,
		&contentText, &record.ContentExtracted, &extractionError,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	record.Kind = domain.ItemKind(kind)
	if parentID.Valid {
		record.ParentID = &parentID.Int64
	}
	if contentText.Valid {
		record.ContentText = &contentText.String
	}
	if extractionError.Valid {
		record.ExtractionError = &extractionError.String
	}
	record.CreatedAt = parseSQLiteTime(createdAt)
	record.UpdatedAt = parseSQLiteTime(updatedAt)
	return &record, nil
}

// parseSQLiteTime handles both the DATETIME default format and RFC3339.
func parseSQLiteTime(value string) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}
