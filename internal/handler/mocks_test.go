package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"docdrive/internal/domain"
)

func muxSetVars(r *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(r, vars)
}

type testLogger struct{}

func (l *testLogger) Info(msg string, args ...interface{})             {}
func (l *testLogger) Error(msg string, err error, args ...interface{}) {}
func (l *testLogger) Debug(msg string, args ...interface{})            {}
func (l *testLogger) Warn(msg string, args ...interface{})             {}

type mockQueue struct {
	enqueueErr error
	depth      int
	jobs       []domain.ExtractionJob
}

func (m *mockQueue) Enqueue(job domain.ExtractionJob) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *mockQueue) QueueDepth() int { return m.depth }

type mockRepo struct {
	records  map[int64]*domain.FileRecord
	resetIDs []int64
	listErr  error
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[int64]*domain.FileRecord)}
}

func (m *mockRepo) Create(ctx context.Context, record *domain.FileRecord) error {
	record.ID = int64(len(m.records) + 1)
	m.records[record.ID] = record
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id int64) (*domain.FileRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, domain.ErrFileNotFound
	}
	return record, nil
}

func (m *mockRepo) UpdateStoragePath(ctx context.Context, id int64, storagePath string) error {
	record, ok := m.records[id]
	if !ok {
		return domain.ErrFileNotFound
	}
	record.StoragePath = storagePath
	return nil
}

func (m *mockRepo) UpdateExtraction(ctx context.Context, id int64, update domain.ExtractionUpdate) error {
	record, ok := m.records[id]
	if !ok {
		return domain.ErrFileNotFound
	}
	record.ContentExtracted = update.Extracted
	record.ExtractionError = update.Error
	if update.Content != nil {
		record.ContentText = update.Content
	}
	return nil
}

func (m *mockRepo) ResetExtraction(ctx context.Context, id int64) error {
	record, ok := m.records[id]
	if !ok {
		return domain.ErrFileNotFound
	}
	m.resetIDs = append(m.resetIDs, id)
	record.ContentExtracted = false
	record.ExtractionError = nil
	record.ContentText = nil
	return nil
}

func (m *mockRepo) ListFiles(ctx context.Context) ([]*domain.FileRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	records := make([]*domain.FileRecord, 0, len(m.records))
	for id := int64(1); id <= int64(len(m.records)); id++ {
		if record, ok := m.records[id]; ok && record.Kind == domain.ItemKindFile {
			records = append(records, record)
		}
	}
	return records, nil
}

type mockBlobs struct {
	blobs     map[string][]byte
	existsErr error
}

func newMockBlobs() *mockBlobs {
	return &mockBlobs{blobs: make(map[string][]byte)}
}

func (m *mockBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := m.blobs[key]
	if !ok {
		return nil, domain.ErrBlobNotFound
	}
	return data, nil
}

func (m *mockBlobs) Put(ctx context.Context, key string, data []byte, contentType string) error {
	m.blobs[key] = data
	return nil
}

func (m *mockBlobs) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.blobs[key]
	return ok, nil
}

func (m *mockBlobs) Delete(ctx context.Context, key string) error {
	delete(m.blobs, key)
	return nil
}

func (m *mockBlobs) Kind() string   { return "local" }
func (m *mockBlobs) Bucket() string { return "" }

type mockExtractor struct {
	text string
	err  error
}

func (m *mockExtractor) Extract(data []byte) (string, error) { return m.text, m.err }
func (m *mockExtractor) PageCount(data []byte) (int, error)  { return 1, nil }

type mockNotifier struct {
	calls int
}

func (m *mockNotifier) NotifyUploaded(ctx context.Context, fileID int64, storagePath string) {
	m.calls++
}
