package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"docdrive/internal/domain"
	"docdrive/internal/service"
	apperrors "docdrive/pkg/errors"
)

const maxMultipartMemory = 32 << 20

// UploadHandler accepts multipart PDF uploads into the document store.
type UploadHandler struct {
	uploads *service.UploadService
	logger  domain.Logger
}

func NewUploadHandler(uploads *service.UploadService, logger domain.Logger) *UploadHandler {
	return &UploadHandler{uploads: uploads, logger: logger}
}

// Upload handles POST /filesystem/upload. The file travels in the "file"
// multipart field; parent_id and owner_id are optional form values.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read uploaded file", err)
		writeError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	var parentID *int64
	if raw := r.FormValue("parent_id"); raw != "" {
		id, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "Invalid parent_id")
			return
		}
		parentID = &id
	}

	var ownerID int64
	if raw := r.FormValue("owner_id"); raw != "" {
		ownerID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid owner_id")
			return
		}
	}

	record, err := h.uploads.Upload(r.Context(), header.Filename, parentID, ownerID, data)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, vErr.Message)
			return
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			h.logger.Error("upload failed", err, "file_name", header.Filename)
			writeError(w, apperrors.GetStatusCode(appErr), appErr.Message)
			return
		}
		h.logger.Error("upload failed", err, "file_name", header.Filename)
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	writeJSON(w, http.StatusCreated, record)
}
