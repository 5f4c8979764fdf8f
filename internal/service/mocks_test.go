package service

import (
	"context"
	"sync"

	"docdrive/internal/domain"
)

type testLogger struct{}

func (l *testLogger) Info(msg string, args ...interface{})             {}
func (l *testLogger) Error(msg string, err error, args ...interface{}) {}
func (l *testLogger) Debug(msg string, args ...interface{})            {}
func (l *testLogger) Warn(msg string, args ...interface{})             {}

// mockFileRepository is an in-memory repository keyed by id. It records
// extraction updates so tests can assert on persisted state.
type mockFileRepository struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]*domain.FileRecord

	createErr error
	getErr    error
	updateErr error
}

func newMockFileRepository() *mockFileRepository {
	return &mockFileRepository{nextID: 1, records: make(map[int64]*domain.FileRecord)}
}

func (m *mockFileRepository) Create(ctx context.Context, record *domain.FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	record.ID = m.nextID
	m.nextID++
	clone := *record
	m.records[record.ID] = &clone
	return nil
}

func (m *mockFileRepository) GetByID(ctx context.Context, id int64) (*domain.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	record, ok := m.records[id]
	if !ok {
		return nil, domain.ErrFileNotFound
	}
	clone := *record
	return &clone, nil
}

func (m *mockFileRepository) UpdateStoragePath(ctx context.Context, id int64, storagePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	record, ok := m.records[id]
	if !ok {
		return domain.ErrFileNotFound
	}
	record.StoragePath = storagePath
	return nil
}

func (m *mockFileRepository) UpdateExtraction(ctx context.Context, id int64, update domain.ExtractionUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
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

func (m *mockFileRepository) ResetExtraction(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return domain.ErrFileNotFound
	}
	record.ContentExtracted = false
	record.ExtractionError = nil
	record.ContentText = nil
	return nil
}

func (m *mockFileRepository) ListFiles(ctx context.Context) ([]*domain.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]*domain.FileRecord, 0, len(m.records))
	for _, record := range m.records {
		if record.Kind != domain.ItemKindFile {
			continue
		}
		clone := *record
		records = append(records, &clone)
	}
	return records, nil
}

func (m *mockFileRepository) get(id int64) *domain.FileRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[id]
}

func (m *mockFileRepository) put(record *domain.FileRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.ID >= m.nextID {
		m.nextID = record.ID + 1
	}
	m.records[record.ID] = record
}

// mockBlobStorage keeps blobs in a map.
type mockBlobStorage struct {
	mu    sync.Mutex
	blobs map[string][]byte

	putErr    error
	existsErr error
}

func newMockBlobStorage() *mockBlobStorage {
	return &mockBlobStorage{blobs: make(map[string][]byte)}
}

func (m *mockBlobStorage) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, domain.ErrBlobNotFound
	}
	return data, nil
}

func (m *mockBlobStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.blobs[key] = data
	return nil
}

func (m *mockBlobStorage) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.blobs[key]
	return ok, nil
}

func (m *mockBlobStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return domain.ErrBlobNotFound
	}
	delete(m.blobs, key)
	return nil
}

func (m *mockBlobStorage) Kind() string   { return "mock" }
func (m *mockBlobStorage) Bucket() string { return "" }

// mockExtractor maps input bytes to canned results.
type mockExtractor struct {
	mu        sync.Mutex
	text      string
	err       error
	pages     int
	pagesErr  error
	extracted [][]byte
}

func (m *mockExtractor) Extract(data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extracted = append(m.extracted, data)
	return m.text, m.err
}

func (m *mockExtractor) PageCount(data []byte) (int, error) {
	return m.pages, m.pagesErr
}

// mockNotifier records notifications.
type mockNotifier struct {
	mu    sync.Mutex
	calls []int64
}

func (m *mockNotifier) NotifyUploaded(ctx context.Context, fileID int64, storagePath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fileID)
}

func (m *mockNotifier) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
