package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"docdrive/internal/domain"
)

// Notifier tells the extraction control plane that a file finished
// uploading. It is strictly fire-and-forget: the upload already committed,
// so a failure to queue extraction is logged and swallowed, and the file
// can be re-enqueued later.
type Notifier struct {
	endpoint string
	client   *http.Client
	logger   domain.Logger
}

// NewNotifier creates a notifier targeting the control plane at endpoint.
// The timeout bounds the whole request.
func NewNotifier(endpoint string, timeout time.Duration, logger domain.Logger) *Notifier {
	return &Notifier{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type enqueueRequest struct {
	FileID   int64  `json:"file_id"`
	FilePath string `json:"file_path,omitempty"`
}

// NotifyUploaded enqueues extraction for a freshly uploaded file. Never
// returns an error: upload success is not contingent on extraction being
// queued.
func (n *Notifier) NotifyUploaded(ctx context.Context, fileID int64, storagePath string) {
	body, err := json.Marshal(enqueueRequest{FileID: fileID, FilePath: storagePath})
	if err != nil {
		n.logger.Error("Failed to encode extraction request", err, "file_id", fileID)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint+"/extract", bytes.NewReader(body))
	if err != nil {
		n.logger.Error("Failed to build extraction request", err, "file_id", fileID)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("Failed to notify extraction service", "file_id", fileID, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.logger.Warn("Extraction service rejected job", "file_id", fileID, "status", resp.StatusCode)
		return
	}
	n.logger.Info("File queued for extraction", "file_id", fileID)
}

// LocalNotifier feeds the in-process extraction queue directly. Used when
// uploads and extraction run in the same process and no control-plane URL
// is configured.
type LocalNotifier struct {
	queue  domain.ExtractionQueue
	logger domain.Logger
}

// NewLocalNotifier creates a notifier backed by the given queue.
func NewLocalNotifier(queue domain.ExtractionQueue, logger domain.Logger) *LocalNotifier {
	return &LocalNotifier{queue: queue, logger: logger}
}

// NotifyUploaded enqueues extraction in process, with the same
// fire-and-forget contract as the HTTP notifier.
func (n *LocalNotifier) NotifyUploaded(ctx context.Context, fileID int64, storagePath string) {
	err := n.queue.Enqueue(domain.ExtractionJob{FileID: fileID, StoragePath: storagePath})
	if err != nil {
		n.logger.Warn("Failed to queue extraction", "file_id", fileID, "error", err)
		return
	}
	n.logger.Info("File queued for extraction", "file_id", fileID)
}
