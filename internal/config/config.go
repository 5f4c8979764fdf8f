package config

import (
	"os"
	"strconv"
	"time"

	"docdrive/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort      string
	UploadPath      string
	MaxFileSize     int64
	LogLevel        string
	StorageBucket   string
	SupabaseURL     string
	SupabaseKey     string
	DBPath          string
	ExtractorURL    string
	QueueCapacity   int
	EnqueueTimeout  time.Duration
	NotifyTimeout   time.Duration
	ShutdownTimeout time.Duration
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:      getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		UploadPath:      getEnvOrDefault("UPLOAD_PATH", "./uploads"),
		MaxFileSize:     getEnvInt64OrDefault("MAX_FILE_SIZE", 100*1024*1024), // 100MB default
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		StorageBucket:   getEnvOrDefault("STORAGE_BUCKET", ""),
		SupabaseURL:     getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:     getEnvOrDefault("SUPABASE_SERVICE_KEY", ""),
		DBPath:          getEnvOrDefault("DB_PATH", "./docdrive.db"),
		ExtractorURL:    getEnvOrDefault("EXTRACTOR_URL", ""),
		QueueCapacity:   getEnvIntOrDefault("QUEUE_CAPACITY", 1024),
		EnqueueTimeout:  getEnvDurationOrDefault("ENQUEUE_TIMEOUT", time.Second),
		NotifyTimeout:   getEnvDurationOrDefault("NOTIFY_TIMEOUT", 3*time.Second),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetUploadPath returns the local blob directory path
func (c *AppConfig) GetUploadPath() string {
	return c.UploadPath
}

// GetMaxFileSize returns the maximum allowed file size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetStorageBucket returns the cloud storage bucket; empty means local disk
func (c *AppConfig) GetStorageBucket() string {
	return c.StorageBucket
}

// GetSupabaseURL returns the Supabase project URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase service key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetDBPath returns the SQLite database path
func (c *AppConfig) GetDBPath() string {
	return c.DBPath
}

// GetExtractorURL returns the control-plane URL the upload notifier targets.
// Empty means self-notification through the in-process queue.
func (c *AppConfig) GetExtractorURL() string {
	return c.ExtractorURL
}

// GetQueueCapacity returns the extraction queue capacity
func (c *AppConfig) GetQueueCapacity() int {
	return c.QueueCapacity
}

// GetEnqueueTimeout returns the bounded wait for a queue slot
func (c *AppConfig) GetEnqueueTimeout() time.Duration {
	return c.EnqueueTimeout
}

// GetNotifyTimeout returns the upload notification request timeout
func (c *AppConfig) GetNotifyTimeout() time.Duration {
	return c.NotifyTimeout
}

// GetShutdownTimeout returns the graceful shutdown budget
func (c *AppConfig) GetShutdownTimeout() time.Duration {
	return c.ShutdownTimeout
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
