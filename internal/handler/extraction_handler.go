package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"docdrive/internal/domain"
	"docdrive/internal/storage"
	apperrors "docdrive/pkg/errors"
)

const previewLength = 200

// ExtractionHandler exposes the extraction control plane: enqueueing,
// status lookups, health, and the synchronous diagnostic endpoints.
type ExtractionHandler struct {
	queue     domain.ExtractionQueue
	repo      domain.FileRepository
	blobs     domain.BlobStorage
	extractor domain.TextExtractor
	logger    domain.Logger
}

func NewExtractionHandler(
	queue domain.ExtractionQueue,
	repo domain.FileRepository,
	blobs domain.BlobStorage,
	extractor domain.TextExtractor,
	logger domain.Logger,
) *ExtractionHandler {
	return &ExtractionHandler{
		queue:     queue,
		repo:      repo,
		blobs:     blobs,
		extractor: extractor,
		logger:    logger,
	}
}

type enqueueRequest struct {
	FileID   *int64 `json:"file_id"`
	FilePath string `json:"file_path"`
	Force    bool   `json:"force"`
}

// Enqueue handles POST /extract. It accepts the job quickly and never
// blocks on extraction itself.
func (h *ExtractionHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.FileID == nil {
		writeError(w, http.StatusBadRequest, "file_id is required")
		return
	}
	fileID := *req.FileID

	if req.Force {
		if err := h.repo.ResetExtraction(r.Context(), fileID); err != nil {
			if errors.Is(err, domain.ErrFileNotFound) {
				writeError(w, http.StatusNotFound, "File not found")
				return
			}
			h.logger.Error("failed to reset extraction state", err, "file_id", fileID)
			writeError(w, http.StatusInternalServerError, "Failed to reset extraction state")
			return
		}
	}

	job := domain.ExtractionJob{FileID: fileID, StoragePath: req.FilePath}
	if err := h.queue.Enqueue(job); err != nil {
		h.logger.Warn("extraction queue rejected job", "file_id", fileID, "error", err.Error())
		qErr := apperrors.NewQueueSaturatedError("Queue is full")
		writeError(w, qErr.StatusCode, qErr.Message)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "queued",
		"file_id": fileID,
	})
}

// Health handles GET /health.
func (h *ExtractionHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"queue_size": h.queue.QueueDepth(),
	})
}

// Status handles GET /status/{id} and reports the extraction state of a
// single file record.
func (h *ExtractionHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid file id")
		return
	}

	record, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		h.logger.Error("failed to load file record", err, "file_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load file record")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"file_id":           record.ID,
		"file_name":         record.Name,
		"file_path":         record.StoragePath,
		"mime_type":         record.MimeType,
		"size":              record.Size,
		"content_extracted": record.ContentExtracted,
		"extraction_error":  record.ExtractionError,
		"has_content":       record.HasContent(),
	})
}

// TestExtract handles POST /test/extract/{id}: a synchronous extraction
// probe that touches storage and the PDF engine but persists nothing.
func (h *ExtractionHandler) TestExtract(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid file id")
		return
	}

	record, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		h.logger.Error("failed to load file record", err, "file_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load file record")
		return
	}
	if record.Kind != domain.ItemKindFile {
		writeError(w, http.StatusBadRequest, "Item is not a file")
		return
	}

	key := storage.RecordKey(record)
	exists, err := h.blobs.Exists(r.Context(), key)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":   "Storage access failed",
			"details": err.Error(),
		})
		return
	}
	if !exists {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"error":          "File does not exist in storage",
			"file_path":      key,
			"storage_type":   h.blobs.Kind(),
			"storage_bucket": h.blobs.Bucket(),
		})
		return
	}

	data, err := h.blobs.Get(r.Context(), key)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":   "Failed to read file content",
			"details": err.Error(),
		})
		return
	}

	if record.MimeType != "application/pdf" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":           "Unsupported file type",
			"mime_type":       record.MimeType,
			"supported_types": []string{"application/pdf"},
		})
		return
	}

	text, err := h.extractor.Extract(data)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":          "PDF extraction failed",
			"details":        err.Error(),
			"file_id":        id,
			"content_length": len(data),
		})
		return
	}

	preview := text
	if len(preview) > previewLength {
		preview = preview[:previewLength] + "..."
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":               true,
		"file_id":               id,
		"file_name":             record.Name,
		"file_path":             key,
		"content_length":        len(data),
		"extracted_text_length": len(text),
		"extracted_preview":     preview,
		"storage_type":          h.blobs.Kind(),
	})
}

// ListFiles handles GET /test/files: an inventory of every file record
// annotated with whether its blob is present in storage.
func (h *ExtractionHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.ListFiles(r.Context())
	if err != nil {
		h.logger.Error("failed to list file records", err)
		writeError(w, http.StatusInternalServerError, "Failed to list files")
		return
	}

	files := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		key := storage.RecordKey(record)
		exists, existsErr := h.blobs.Exists(r.Context(), key)
		if existsErr != nil {
			h.logger.Warn("storage existence check failed", "file_id", record.ID, "error", existsErr.Error())
			exists = false
		}
		files = append(files, map[string]interface{}{
			"id":                record.ID,
			"name":              record.Name,
			"mime_type":         record.MimeType,
			"size":              record.Size,
			"content_extracted": record.ContentExtracted,
			"extraction_error":  record.ExtractionError,
			"file_exists":       exists,
			"file_path":         key,
		})
	}

	resp := map[string]interface{}{
		"files":        files,
		"total_files":  len(files),
		"storage_type": h.blobs.Kind(),
	}
	if bucket := h.blobs.Bucket(); bucket != "" {
		resp["storage_bucket"] = bucket
	}
	writeJSON(w, http.StatusOK, resp)
}
