package config

import (
	"fmt"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"

	"docdrive/internal/domain"
	"docdrive/internal/repository"
	"docdrive/internal/service"
	"docdrive/internal/storage"
	"docdrive/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config            domain.Config
	Logger            domain.Logger
	FileRepository    domain.FileRepository
	BlobStorage       domain.BlobStorage
	Extractor         *service.PDFExtractor
	Validator         *service.Validator
	ExtractionService *service.ExtractionService
	Notifier          domain.UploadNotifier
	UploadService     *service.UploadService

	sqliteRepo *repository.SQLiteFileRepository
}

// NewContainer creates a new dependency injection container. The record
// store follows SUPABASE_URL and the blob store follows STORAGE_BUCKET, so
// a deployment can mix cloud records with local blobs during migration.
func NewContainer() (*Container, error) {
	cfg := NewConfig()
	appLogger := logger.NewLogger(cfg.GetLogLevel())

	c := &Container{
		Config: cfg,
		Logger: appLogger,
	}

	var supabaseClient *supabase.Client
	if cfg.GetSupabaseURL() != "" {
		client, err := supabase.NewClient(cfg.GetSupabaseURL(), cfg.GetSupabaseKey(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create supabase client: %w", err)
		}
		supabaseClient = client
	}

	if supabaseClient != nil {
		c.FileRepository = repository.NewSupabaseFileRepository(supabaseClient, appLogger)
		appLogger.Info("Using Supabase file repository")
	} else {
		sqliteRepo, err := repository.NewSQLiteFileRepository(cfg.GetDBPath(), appLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		c.sqliteRepo = sqliteRepo
		c.FileRepository = sqliteRepo
		appLogger.Info("Using SQLite file repository", "path", cfg.GetDBPath())
	}

	if bucket := cfg.GetStorageBucket(); bucket != "" {
		if cfg.GetSupabaseURL() == "" {
			return nil, fmt.Errorf("STORAGE_BUCKET requires SUPABASE_URL")
		}
		storageClient := storage_go.NewClient(cfg.GetSupabaseURL()+"/storage/v1", cfg.GetSupabaseKey(), nil)
		c.BlobStorage = storage.NewSupabaseStorage(storageClient, bucket, appLogger)
		appLogger.Info("Using Supabase blob storage", "bucket", bucket)
	} else {
		localStorage, err := storage.NewLocalStorage(cfg.GetUploadPath(), appLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		c.BlobStorage = localStorage
		appLogger.Info("Using local blob storage", "path", cfg.GetUploadPath())
	}

	c.Extractor = service.NewPDFExtractor(appLogger)
	c.Validator = service.NewValidator(cfg.GetMaxFileSize(), c.Extractor)

	c.ExtractionService = service.NewExtractionService(
		c.FileRepository,
		c.BlobStorage,
		c.Extractor,
		appLogger,
		cfg.GetQueueCapacity(),
		cfg.GetEnqueueTimeout(),
		cfg.GetShutdownTimeout(),
	)

	if url := cfg.GetExtractorURL(); url != "" {
		c.Notifier = service.NewNotifier(url, cfg.GetNotifyTimeout(), appLogger)
	} else {
		c.Notifier = service.NewLocalNotifier(c.ExtractionService, appLogger)
	}

	c.UploadService = service.NewUploadService(
		c.FileRepository,
		c.BlobStorage,
		c.Validator,
		c.Notifier,
		appLogger,
	)

	return c, nil
}

// Close releases resources held by the container.
func (c *Container) Close() error {
	if c.sqliteRepo != nil {
		return c.sqliteRepo.Close()
	}
	return nil
}
