package domain

import "context"

// ExtractionJob is a transient request to extract text from one file.
// Jobs live only in the in-process queue and are lost on restart; that is
// acceptable because extraction is idempotent-by-skip and can always be
// re-triggered.
type ExtractionJob struct {
	FileID int64
	// StoragePath is an optional hint; when empty the worker derives the
	// blob key from the record's id and name.
	StoragePath string
}

// TextExtractor extracts plain text from raw document bytes.
type TextExtractor interface {
	// Extract returns the concatenated page text of the document, or an
	// error when the document has no pages or yields no text at all.
	Extract(data []byte) (string, error)
	// PageCount parses the document and returns its page count.
	PageCount(data []byte) (int, error)
}

// UploadNotifier is called by the upload path exactly once per committed
// upload, after both the record and the blob are durably persisted.
// Implementations absorb their own failures.
type UploadNotifier interface {
	NotifyUploaded(ctx context.Context, fileID int64, storagePath string)
}

// ExtractionQueue is the producer-side view of the extraction pipeline,
// consumed by the HTTP control plane.
type ExtractionQueue interface {
	// Enqueue pushes a job with a bounded wait. Returns ErrQueueFull when
	// the queue does not accept the job in time; callers do not retry.
	Enqueue(job ExtractionJob) error
	// QueueDepth reports the number of jobs waiting to be processed.
	QueueDepth() int
}
