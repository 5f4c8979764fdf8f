package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"docdrive/internal/domain"
	"docdrive/internal/storage"
)

// ExtractionService owns the extraction job queue and its single worker.
// It is constructed once at process startup and handed to the control-plane
// layer; there is no package-level state.
//
// The single consumer makes the worker the only writer of extraction-status
// fields, so no two extraction attempts for the same file ever run
// concurrently and no locking is needed on those fields.
type ExtractionService struct {
	repo      domain.FileRepository
	blobs     domain.BlobStorage
	extractor domain.TextExtractor
	logger    domain.Logger

	jobs            chan domain.ExtractionJob
	enqueueTimeout  time.Duration
	shutdownTimeout time.Duration

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewExtractionService creates the extraction pipeline. capacity bounds the
// job queue; a rejected job can always be re-triggered later.
func NewExtractionService(
	repo domain.FileRepository,
	blobs domain.BlobStorage,
	extractor domain.TextExtractor,
	logger domain.Logger,
	capacity int,
	enqueueTimeout time.Duration,
	shutdownTimeout time.Duration,
) *ExtractionService {
	if capacity <= 0 {
		capacity = 1024
	}
	return &ExtractionService{
		repo:            repo,
		blobs:           blobs,
		extractor:       extractor,
		logger:          logger,
		jobs:            make(chan domain.ExtractionJob, capacity),
		enqueueTimeout:  enqueueTimeout,
		shutdownTimeout: shutdownTimeout,
	}
}

// Start launches the worker goroutine. Starting an already running service
// is a no-op.
func (s *ExtractionService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.worker(s.stop, s.done)
	s.logger.Info("Text extraction worker started")
}

// Stop signals the worker and waits for it up to the shutdown timeout. A
// job in flight past the timeout is abandoned; its record keeps its prior
// state because status commits are single atomic updates.
func (s *ExtractionService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
		s.logger.Info("Text extraction worker stopped")
	case <-time.After(s.shutdownTimeout):
		s.logger.Warn("Text extraction worker did not stop in time", "timeout", s.shutdownTimeout)
	}
}

// Enqueue pushes a job with a bounded wait. Returns domain.ErrQueueFull
// when the queue stays saturated for the whole wait and domain.ErrQueueClosed
// after Stop; callers treat both as a rejection and do not retry.
func (s *ExtractionService) Enqueue(job domain.ExtractionJob) error {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return domain.ErrQueueClosed
	}

	select {
	case s.jobs <- job:
		s.logger.Info("Added file to extraction queue", "file_id", job.FileID)
		return nil
	case <-time.After(s.enqueueTimeout):
		s.logger.Error("Extraction queue is full, dropping job", domain.ErrQueueFull, "file_id", job.FileID)
		return domain.ErrQueueFull
	}
}

// QueueDepth reports the number of queued jobs.
func (s *ExtractionService) QueueDepth() int {
	return len(s.jobs)
}

func (s *ExtractionService) worker(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	s.logger.Info("Text extraction worker loop started")

	for {
		select {
		case <-stop:
			return
		case job := <-s.jobs:
			s.safeProcess(job)
		}
	}
}

// safeProcess shields the worker loop: a panic while handling one file is
// logged and the loop moves on to the next job.
func (s *ExtractionService) safeProcess(job domain.ExtractionJob) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Recovered from panic in extraction worker",
				fmt.Errorf("panic: %v", r), "file_id", job.FileID)
		}
	}()
	s.process(context.Background(), job)
}

func (s *ExtractionService) process(ctx context.Context, job domain.ExtractionJob) {
	record, err := s.repo.GetByID(ctx, job.FileID)
	if err != nil {
		// Fire-and-forget: an unknown id is dropped without surfacing an
		// error to any caller.
		s.logger.Error("File not found in database, dropping job", err, "file_id", job.FileID)
		return
	}

	if record.Kind != domain.ItemKindFile {
		s.logger.Warn("Item is not a file, skipping extraction", "file_id", job.FileID)
		return
	}
	if record.ContentExtracted {
		s.logger.Info("File already has extracted content, skipping", "file_id", job.FileID)
		return
	}

	s.logger.Info("Processing file for text extraction", "file_id", job.FileID, "name", record.Name)

	data, err := s.readBlob(ctx, record, job.StoragePath)
	if err != nil {
		s.logger.Error("Failed to read file content", err, "file_id", job.FileID)
		s.persistFailure(ctx, job.FileID, "Failed to read file content")
		return
	}

	if record.MimeType != pdfMimeType {
		s.persistFailure(ctx, job.FileID, fmt.Sprintf("Unsupported file type: %s", record.MimeType))
		return
	}

	text, err := s.extractor.Extract(data)
	if err != nil {
		s.logger.Error("Failed to extract text from file", err, "file_id", job.FileID)
		s.persistFailure(ctx, job.FileID, err.Error())
		return
	}

	s.persistSuccess(ctx, job.FileID, text)
	s.logger.Info("Extracted text from file", "file_id", job.FileID, "chars", len(text))
}

// readBlob resolves the blob key and fetches the bytes. The hint from the
// job wins, then the stored storage_path, then the derived key with the
// legacy bare-id key as a last read-side fallback.
func (s *ExtractionService) readBlob(ctx context.Context, record *domain.FileRecord, hint string) ([]byte, error) {
	key := hint
	if key == "" {
		key = storage.RecordKey(record)
	}

	data, err := s.blobs.Get(ctx, key)
	if err == nil {
		return data, nil
	}

	if errors.Is(err, domain.ErrBlobNotFound) {
		if legacy := storage.LegacyObjectKey(record.ID); legacy != key {
			if data, legacyErr := s.blobs.Get(ctx, legacy); legacyErr == nil {
				s.logger.Warn("Blob found under legacy key", "file_id", record.ID, "key", legacy)
				return data, nil
			}
		}
	}
	return nil, err
}

func (s *ExtractionService) persistFailure(ctx context.Context, fileID int64, reason string) {
	err := s.repo.UpdateExtraction(ctx, fileID, domain.ExtractionUpdate{
		Extracted: false,
		Error:     &reason,
	})
	if err != nil {
		s.logger.Error("Failed to persist extraction failure", err, "file_id", fileID)
	}
}

func (s *ExtractionService) persistSuccess(ctx context.Context, fileID int64, text string) {
	err := s.repo.UpdateExtraction(ctx, fileID, domain.ExtractionUpdate{
		Extracted: true,
		Content:   &text,
	})
	if err != nil {
		s.logger.Error("Failed to persist extraction result", err, "file_id", fileID)
	}
}
